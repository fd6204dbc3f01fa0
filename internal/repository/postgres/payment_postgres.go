package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

type paymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id, invoice_number, tenant_id, plan, months, amount,
			currency, status, payment_method, created_at, processed_at
		) VALUES (
			:payment_id, :invoice_number, :tenant_id, :plan, :months, :amount,
			:currency, :status, :payment_method, :created_at, :processed_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Payment, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT payment_id, invoice_number, tenant_id, plan, months, amount,
			   currency, status, payment_method, created_at, processed_at
		FROM payments
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, tenantID, limit); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
