package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

type roleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new PostgreSQL role repository. Custom roles
// are an indexed collection keyed by (tenant_id, role_id).
func NewRoleRepository(db *sqlx.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (tenant_id, role_id, name, description, permissions, created_at, updated_at)
		VALUES (:tenant_id, :role_id, :name, :description, :permissions, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, role)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, tenantID uuid.UUID, roleID string) (*domain.Role, error) {
	query := `
		SELECT tenant_id, role_id, name, description, permissions, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND role_id = $2`

	var role domain.Role
	err := r.db.GetContext(ctx, &role, query, tenantID, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

func (r *roleRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Role, error) {
	query := `
		SELECT tenant_id, role_id, name, description, permissions, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1
		ORDER BY created_at`

	var roles []*domain.Role
	if err := r.db.SelectContext(ctx, &roles, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `
		UPDATE roles
		SET name = :name,
			description = :description,
			permissions = :permissions,
			updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND role_id = :role_id`

	result, err := r.db.NamedExecContext(ctx, query, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *roleRepository) Delete(ctx context.Context, tenantID uuid.UUID, roleID string) error {
	query := `DELETE FROM roles WHERE tenant_id = $1 AND role_id = $2`

	result, err := r.db.ExecContext(ctx, query, tenantID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
