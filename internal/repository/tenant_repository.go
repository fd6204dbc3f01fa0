package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

// TenantRepository persists tenants. Every mutation is a single conditional
// UPDATE against one row (match-then-set); concurrent writers to the same
// tenant race at row granularity, last-writer-wins.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Tenant, error)
	ListByStatus(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Tenant, error)

	// SetStatus switches the stored lifecycle state.
	SetStatus(ctx context.Context, tenantID uuid.UUID, status domain.SubscriptionStatus) error

	// Activate flips a tenant to active with its agreed price.
	Activate(ctx context.Context, tenantID uuid.UUID, price float64, at time.Time) error

	// SetEndDate overwrites the subscription end date.
	SetEndDate(ctx context.Context, tenantID uuid.UUID, end time.Time) error

	// ExtendGrace writes the new end date plus the grace grant bookkeeping.
	ExtendGrace(ctx context.Context, tenantID uuid.UUID, newEnd time.Time, days int, grantedAt time.Time) error

	// ApplyPayment writes the post-payment state: plan, price, new end date,
	// active status, cleared grace and payment-notice flags.
	ApplyPayment(ctx context.Context, tenantID uuid.UUID, plan string, price float64, newEnd, paidAt time.Time, amount float64) error

	// SetPaymentNotice raises or clears the payment-notice flag.
	SetPaymentNotice(ctx context.Context, tenantID uuid.UUID, notified bool) error
}
