package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Payment, error)
}
