package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

// RoleRepository persists tenant custom roles, keyed by (tenant_id, role_id).
// System roles are code-defined and never stored.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, tenantID uuid.UUID, roleID string) (*domain.Role, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, tenantID uuid.UUID, roleID string) error
}
