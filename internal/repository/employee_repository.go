package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error)

	// GetByEmail matches the stored email exactly.
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)

	// GetByEmailFold matches case-insensitively; the fallback probe for
	// historical records entered with inconsistent casing.
	GetByEmailFold(ctx context.Context, email string) (*domain.Employee, error)

	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Employee, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
	CountByRole(ctx context.Context, tenantID uuid.UUID, roleID string) (int, error)

	UpdateRole(ctx context.Context, tenantID, userID uuid.UUID, roleID string) error
	UpdateLocation(ctx context.Context, tenantID, userID, locationID uuid.UUID) error
	Delete(ctx context.Context, tenantID, userID uuid.UUID) error
}
