package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

// AuditFilter narrows audit log queries. Zero values mean "any".
type AuditFilter struct {
	Level    string
	Category string
	TenantID *uuid.UUID
	Limit    int
}

type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuditEvent, error)
}
