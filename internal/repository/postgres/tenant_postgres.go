package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

const tenantColumns = `
	tenant_id, owner_name, company_name, cui, service_name, address, phone,
	email, password_hash, subscription_status, subscription_plan,
	subscription_price, subscription_end_date, has_grace_period,
	grace_period_days, grace_period_extended_at, has_payment_notification,
	is_trial, trial_started_at, last_payment_date, last_payment_amount,
	activated_at, created_at, updated_at`

type tenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository creates a new PostgreSQL tenant repository.
func NewTenantRepository(db *sqlx.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (
			tenant_id, owner_name, company_name, cui, service_name, address,
			phone, email, password_hash, subscription_status, subscription_plan,
			subscription_price, subscription_end_date, has_grace_period,
			has_payment_notification, is_trial, trial_started_at, created_at,
			updated_at
		) VALUES (
			:tenant_id, :owner_name, :company_name, :cui, :service_name, :address,
			:phone, :email, :password_hash, :subscription_status, :subscription_plan,
			:subscription_price, :subscription_end_date, :has_grace_period,
			:has_payment_notification, :is_trial, :trial_started_at, :created_at,
			:updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, tenant)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

func (r *tenantRepository) GetByID(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = $1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by id: %w", err)
	}

	return &tenant, nil
}

func (r *tenantRepository) GetByEmail(ctx context.Context, email string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE email = $1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by email: %w", err)
	}

	return &tenant, nil
}

func (r *tenantRepository) ListByStatus(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subscription_status = $1 ORDER BY created_at DESC`

	var tenants []*domain.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, status); err != nil {
		return nil, fmt.Errorf("failed to list tenants by status: %w", err)
	}

	return tenants, nil
}

func (r *tenantRepository) SetStatus(ctx context.Context, tenantID uuid.UUID, status domain.SubscriptionStatus) error {
	query := `
		UPDATE tenants
		SET subscription_status = $2, updated_at = NOW()
		WHERE tenant_id = $1`

	return r.execOne(ctx, query, tenantID, status)
}

func (r *tenantRepository) Activate(ctx context.Context, tenantID uuid.UUID, price float64, at time.Time) error {
	query := `
		UPDATE tenants
		SET subscription_status = $2,
			subscription_price = $3,
			activated_at = $4,
			updated_at = NOW()
		WHERE tenant_id = $1`

	return r.execOne(ctx, query, tenantID, domain.SubscriptionActive, price, at)
}

func (r *tenantRepository) SetEndDate(ctx context.Context, tenantID uuid.UUID, end time.Time) error {
	query := `
		UPDATE tenants
		SET subscription_end_date = $2, updated_at = NOW()
		WHERE tenant_id = $1`

	return r.execOne(ctx, query, tenantID, end)
}

func (r *tenantRepository) ExtendGrace(ctx context.Context, tenantID uuid.UUID, newEnd time.Time, days int, grantedAt time.Time) error {
	query := `
		UPDATE tenants
		SET subscription_end_date = $2,
			has_grace_period = TRUE,
			grace_period_days = $3,
			grace_period_extended_at = $4,
			updated_at = NOW()
		WHERE tenant_id = $1`

	return r.execOne(ctx, query, tenantID, newEnd, days, grantedAt)
}

func (r *tenantRepository) ApplyPayment(ctx context.Context, tenantID uuid.UUID, plan string, price float64, newEnd, paidAt time.Time, amount float64) error {
	query := `
		UPDATE tenants
		SET subscription_plan = $2,
			subscription_price = $3,
			subscription_end_date = $4,
			subscription_status = $5,
			has_grace_period = FALSE,
			grace_period_days = NULL,
			grace_period_extended_at = NULL,
			has_payment_notification = FALSE,
			is_trial = FALSE,
			last_payment_date = $6,
			last_payment_amount = $7,
			updated_at = NOW()
		WHERE tenant_id = $1`

	return r.execOne(ctx, query, tenantID, plan, price, newEnd, domain.SubscriptionActive, paidAt, amount)
}

func (r *tenantRepository) SetPaymentNotice(ctx context.Context, tenantID uuid.UUID, notified bool) error {
	query := `
		UPDATE tenants
		SET has_payment_notification = $2, updated_at = NOW()
		WHERE tenant_id = $1`

	return r.execOne(ctx, query, tenantID, notified)
}

// execOne runs a single-row conditional update and maps a zero-row match to
// ErrNotFound.
func (r *tenantRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
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
