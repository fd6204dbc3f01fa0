package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	GetByID(ctx context.Context, locationID uuid.UUID) (*domain.Location, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Location, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}
