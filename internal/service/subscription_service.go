package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
	"github.com/fixdesk/servicedesk/pkg/email"
)

// Billing months are fixed-length. Payments and resets extend coverage
// in whole blocks of this many days.
const daysPerBillingMonth = 30

// A tenant counts as expiring soon when this many days or fewer remain.
const expiringSoonWindowDays = 5

// SubscriptionService owns the tenant lifecycle: pending approval,
// activation, expiry with grace, payments and administrative overrides.
type SubscriptionService struct {
	tenantRepo  repository.TenantRepository
	paymentRepo repository.PaymentRepository
	audit       *AuditService
	mailer      email.EmailService
	now         func() time.Time
}

func NewSubscriptionService(
	tenantRepo repository.TenantRepository,
	paymentRepo repository.PaymentRepository,
	audit *AuditService,
	mailer email.EmailService,
) *SubscriptionService {
	return &SubscriptionService{
		tenantRepo:  tenantRepo,
		paymentRepo: paymentRepo,
		audit:       audit,
		mailer:      mailer,
		now:         time.Now,
	}
}

// Evaluate derives the gating decision for a tenant at the given
// instant. It is pure: no clock, no storage, no mutation. The same
// tenant row and instant always produce the same decision.
func (s *SubscriptionService) Evaluate(t *domain.Tenant, now time.Time) domain.SubscriptionDecision {
	switch t.SubscriptionStatus {
	case domain.SubscriptionPending:
		return domain.SubscriptionDecision{Reason: domain.ReasonAwaitingApproval}
	case domain.SubscriptionSuspended:
		return domain.SubscriptionDecision{Reason: domain.ReasonSuspended}
	case domain.SubscriptionCancelled:
		return domain.SubscriptionDecision{Reason: domain.ReasonCancelled}
	}

	// Active. A tenant without an end date never expires; rows in that
	// state predate billing and stay usable rather than locking the
	// tenant out over missing data.
	if t.SubscriptionEndDate == nil {
		return domain.SubscriptionDecision{Allowed: true}
	}

	end := *t.SubscriptionEndDate
	if !now.After(end) {
		return domain.SubscriptionDecision{Allowed: true}
	}

	// Past the paid window. A granted grace period overrides expiry
	// outright; it holds until an admin extension or a payment rewrites
	// the row, not until some derived grace cutoff.
	if t.HasGracePeriod {
		return domain.SubscriptionDecision{Allowed: true, GraceApplies: true}
	}

	return domain.SubscriptionDecision{Reason: domain.ReasonExpired, IsExpired: true}
}

// SubscriptionStatusResponse is the tenant-facing view of their own
// subscription plus the limits their plan carries.
type SubscriptionStatusResponse struct {
	TenantID             uuid.UUID          `json:"tenant_id"`
	ServiceName          string             `json:"service_name"`
	Status               string             `json:"subscription_status"`
	Plan                 string             `json:"subscription_plan"`
	Price                float64            `json:"subscription_price"`
	EndDate              *time.Time         `json:"subscription_end_date,omitempty"`
	DaysUntilExpiry      *int               `json:"days_until_expiry,omitempty"`
	IsExpired            bool               `json:"is_expired"`
	IsExpiringSoon       bool               `json:"is_expiring_soon"`
	InGracePeriod        bool               `json:"in_grace_period"`
	IsTrial              bool               `json:"is_trial"`
	HasPaymentNotice     bool               `json:"has_payment_notification"`
	PlanLimits           domain.PlanLimits  `json:"plan_limits"`
}

// Status reports the subscription view for one tenant.
func (s *SubscriptionService) Status(ctx context.Context, tenantID uuid.UUID) (*SubscriptionStatusResponse, error) {
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("loading tenant: %w", err)
	}

	now := s.now().UTC()
	decision := s.Evaluate(t, now)
	plan := domain.PlanByName(t.SubscriptionPlan)

	resp := &SubscriptionStatusResponse{
		TenantID:         t.TenantID,
		ServiceName:      t.ServiceName,
		Status:           string(t.SubscriptionStatus),
		Plan:             t.SubscriptionPlan,
		Price:            t.SubscriptionPrice,
		EndDate:          t.SubscriptionEndDate,
		IsExpired:        decision.IsExpired,
		InGracePeriod:    decision.GraceApplies,
		IsTrial:          t.IsTrial,
		HasPaymentNotice: t.HasPaymentNotice,
		PlanLimits:       plan.Limits,
	}
	if t.SubscriptionEndDate != nil {
		days := int(t.SubscriptionEndDate.Sub(now).Hours() / 24)
		resp.DaysUntilExpiry = &days
		resp.IsExpiringSoon = days >= 0 && days <= expiringSoonWindowDays
	}
	return resp, nil
}

// Activate flips a pending tenant to active and stamps the approval.
// Subsequent activations of the same tenant are no-ops at the caller's
// risk; the row simply records the latest approval.
func (s *SubscriptionService) Activate(ctx context.Context, tenantID uuid.UUID, price float64) error {
	now := s.now().UTC()
	if err := s.tenantRepo.Activate(ctx, tenantID, price, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("activating tenant: %w", err)
	}
	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategorySubscription,
		Message:  "service activated",
		TenantID: &tenantID,
		Metadata: map[string]string{"price": fmt.Sprintf("%.2f", price)},
	})
	return nil
}

// SetStatus force-sets the stored status. Only the closed status set is
// accepted; anything else is a validation error before any write.
func (s *SubscriptionService) SetStatus(ctx context.Context, tenantID uuid.UUID, status string) error {
	if !domain.ValidSubscriptionStatus(status) {
		return &ValidationError{Field: "subscription_status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	if err := s.tenantRepo.SetStatus(ctx, tenantID, domain.SubscriptionStatus(status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("updating status: %w", err)
	}
	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditWarning,
		Category: domain.AuditCategorySubscription,
		Message:  "subscription status changed to " + status,
		TenantID: &tenantID,
	})
	return nil
}

// ExtendGrace pushes a tenant's cutoff out by the given number of days.
// The new end date is anchored on the later of now and the current end
// date, so extending an expired tenant restores access immediately.
// Calling it twice grants twice the days; it is deliberately not
// idempotent.
func (s *SubscriptionService) ExtendGrace(ctx context.Context, tenantID uuid.UUID, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, &ValidationError{Field: "grace_period_days", Message: "must be positive"}
	}
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, ErrTenantNotFound
		}
		return time.Time{}, fmt.Errorf("loading tenant: %w", err)
	}

	now := s.now().UTC()
	anchor := now
	if t.SubscriptionEndDate != nil && t.SubscriptionEndDate.After(now) {
		anchor = *t.SubscriptionEndDate
	}
	newEnd := anchor.AddDate(0, 0, days)

	if err := s.tenantRepo.ExtendGrace(ctx, tenantID, newEnd, days, now); err != nil {
		return time.Time{}, fmt.Errorf("extending grace: %w", err)
	}
	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategorySubscription,
		Message:  fmt.Sprintf("grace period extended by %d days", days),
		TenantID: &tenantID,
		Metadata: map[string]string{"new_end_date": newEnd.Format(time.RFC3339)},
	})
	return newEnd, nil
}

// PaymentReceipt is returned after a successful payment.
type PaymentReceipt struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Plan          string    `json:"plan"`
	Months        int       `json:"months"`
	Amount        float64   `json:"amount"`
	NewEndDate    time.Time `json:"new_end_date"`
}

// ApplyPayment credits months of coverage on a plan. Coverage extends
// from the current end date when the tenant is active and unexpired,
// otherwise from now, so lapsed tenants never pay for dead time. The
// payment clears any grace period and payment notice and forces the
// tenant active.
func (s *SubscriptionService) ApplyPayment(ctx context.Context, tenantID uuid.UUID, planName string, months int) (*PaymentReceipt, error) {
	if months <= 0 {
		return nil, &ValidationError{Field: "months", Message: "must be positive"}
	}
	if !domain.KnownPlan(planName) {
		return nil, &ValidationError{Field: "plan", Message: fmt.Sprintf("unknown plan %q", planName)}
	}
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("loading tenant: %w", err)
	}

	plan := domain.PlanByName(planName)
	now := s.now().UTC()

	anchor := now
	if t.SubscriptionStatus == domain.SubscriptionActive &&
		t.SubscriptionEndDate != nil && t.SubscriptionEndDate.After(now) {
		anchor = *t.SubscriptionEndDate
	}
	newEnd := anchor.AddDate(0, 0, months*daysPerBillingMonth)
	amount := plan.Price * float64(months)

	if err := s.tenantRepo.ApplyPayment(ctx, tenantID, plan.PlanID, plan.Price, newEnd, now, amount); err != nil {
		return nil, fmt.Errorf("applying payment: %w", err)
	}

	payment := &domain.Payment{
		PaymentID:     uuid.New(),
		InvoiceNumber: invoiceNumber(now),
		TenantID:      tenantID,
		Plan:          plan.PlanID,
		Months:        months,
		Amount:        amount,
		Currency:      "EUR",
		Status:        "completed",
		PaymentMethod: "manual",
		CreatedAt:     now,
		ProcessedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategoryPayment,
		Message:  fmt.Sprintf("payment of %.2f applied for %d month(s) on plan %s", amount, months, plan.PlanID),
		TenantID: &tenantID,
		Metadata: map[string]string{
			"invoice_number": payment.InvoiceNumber,
			"new_end_date":   newEnd.Format(time.RFC3339),
		},
	})

	return &PaymentReceipt{
		PaymentID:     payment.PaymentID,
		InvoiceNumber: payment.InvoiceNumber,
		Plan:          plan.PlanID,
		Months:        months,
		Amount:        amount,
		NewEndDate:    newEnd,
	}, nil
}

func invoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// PaymentHistory lists a tenant's payments, newest first.
func (s *SubscriptionService) PaymentHistory(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Payment, error) {
	return s.paymentRepo.ListByTenant(ctx, tenantID, limit)
}

// SetEndDate overwrites the subscription end date. Administrative
// escape hatch; it does not touch status, grace or notices.
func (s *SubscriptionService) SetEndDate(ctx context.Context, tenantID uuid.UUID, end time.Time) error {
	if err := s.tenantRepo.SetEndDate(ctx, tenantID, end); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("updating end date: %w", err)
	}
	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditWarning,
		Category: domain.AuditCategorySubscription,
		Message:  "subscription end date set to " + end.Format(time.RFC3339),
		TenantID: &tenantID,
	})
	return nil
}

// ResetSubscription restarts coverage from now for the given number of
// months on the tenant's current plan, clearing grace and notices. Used
// after an out-of-band payment settles a messy account.
func (s *SubscriptionService) ResetSubscription(ctx context.Context, tenantID uuid.UUID, months int) (time.Time, error) {
	if months <= 0 {
		return time.Time{}, &ValidationError{Field: "months", Message: "must be positive"}
	}
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, ErrTenantNotFound
		}
		return time.Time{}, fmt.Errorf("loading tenant: %w", err)
	}

	plan := domain.PlanByName(t.SubscriptionPlan)
	now := s.now().UTC()
	newEnd := now.AddDate(0, 0, months*daysPerBillingMonth)
	amount := plan.Price * float64(months)

	if err := s.tenantRepo.ApplyPayment(ctx, tenantID, plan.PlanID, plan.Price, newEnd, now, amount); err != nil {
		return time.Time{}, fmt.Errorf("resetting subscription: %w", err)
	}
	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditWarning,
		Category: domain.AuditCategorySubscription,
		Message:  fmt.Sprintf("subscription reset for %d month(s)", months),
		TenantID: &tenantID,
		Metadata: map[string]string{"new_end_date": newEnd.Format(time.RFC3339)},
	})
	return newEnd, nil
}

// ExpiringTenant is one row of the admin expiry report.
type ExpiringTenant struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	ServiceName     string    `json:"service_name"`
	Email           string    `json:"email"`
	Plan            string    `json:"subscription_plan"`
	EndDate         time.Time `json:"subscription_end_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	HasNotice       bool      `json:"has_payment_notification"`
}

// ExpiringSoon lists active tenants whose coverage ends within the
// warning window, soonest first.
func (s *SubscriptionService) ExpiringSoon(ctx context.Context) ([]ExpiringTenant, error) {
	tenants, err := s.tenantRepo.ListByStatus(ctx, domain.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("listing active tenants: %w", err)
	}

	now := s.now().UTC()
	out := make([]ExpiringTenant, 0)
	for _, t := range tenants {
		if t.SubscriptionEndDate == nil {
			continue
		}
		days := int(t.SubscriptionEndDate.Sub(now).Hours() / 24)
		if days < 0 || days > expiringSoonWindowDays {
			continue
		}
		out = append(out, ExpiringTenant{
			TenantID:        t.TenantID,
			ServiceName:     t.ServiceName,
			Email:           t.Email,
			Plan:            t.SubscriptionPlan,
			EndDate:         *t.SubscriptionEndDate,
			DaysUntilExpiry: days,
			HasNotice:       t.HasPaymentNotice,
		})
	}
	return out, nil
}

// SendPaymentNotice flags the tenant with a payment notice and, when a
// mailer is configured, emails the owner. A tenant still inside its paid
// window gets the expiry warning with the days remaining; a lapsed one
// gets the payment-due notice. A failed email does not undo the flag.
func (s *SubscriptionService) SendPaymentNotice(ctx context.Context, tenantID uuid.UUID) error {
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("loading tenant: %w", err)
	}
	if err := s.tenantRepo.SetPaymentNotice(ctx, tenantID, true); err != nil {
		return fmt.Errorf("setting payment notice: %w", err)
	}

	if s.mailer != nil && t.SubscriptionEndDate != nil {
		now := s.now().UTC()
		var mailErr error
		if days := int(t.SubscriptionEndDate.Sub(now).Hours() / 24); days >= 0 {
			mailErr = s.mailer.SendExpiryWarning(ctx, t.Email, t.OwnerName, days)
		} else {
			mailErr = s.mailer.SendPaymentNotice(ctx, t.Email, t.OwnerName, *t.SubscriptionEndDate)
		}
		if mailErr != nil {
			s.audit.Record(ctx, domain.AuditEvent{
				Level:    domain.AuditError,
				Category: domain.AuditCategoryPayment,
				Message:  "payment notice email failed: " + mailErr.Error(),
				TenantID: &tenantID,
			})
		}
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategoryPayment,
		Message:  "payment notice sent",
		TenantID: &tenantID,
	})
	return nil
}

// DismissPaymentNotice clears the tenant's payment notice flag.
func (s *SubscriptionService) DismissPaymentNotice(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.tenantRepo.SetPaymentNotice(ctx, tenantID, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("clearing payment notice: %w", err)
	}
	return nil
}
