package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new PostgreSQL audit log repository. The log
// is append-only; there is no update or delete path.
func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			log_id, level, category, message, user_id, user_email, tenant_id,
			ip_address, user_agent, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query,
		event.LogID, event.Level, event.Category, event.Message,
		event.UserID, event.UserEmail, event.TenantID,
		event.IPAddress, event.UserAgent, metadata, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]*domain.AuditEvent, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `
		SELECT log_id, level, category, message, user_id, user_email,
			   tenant_id, ip_address, user_agent, metadata, created_at
		FROM audit_logs
		WHERE ($1 = '' OR level = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3::uuid IS NULL OR tenant_id = $3)
		ORDER BY created_at DESC
		LIMIT $4`

	rows, err := r.db.QueryxContext(ctx, query, filter.Level, filter.Category, filter.TenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var ev domain.AuditEvent
		var metadata []byte
		if err := rows.Scan(
			&ev.LogID, &ev.Level, &ev.Category, &ev.Message, &ev.UserID,
			&ev.UserEmail, &ev.TenantID, &ev.IPAddress, &ev.UserAgent,
			&metadata, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &ev.Metadata)
		}
		events = append(events, &ev)
	}

	return events, rows.Err()
}
