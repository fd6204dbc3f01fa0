package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixdesk/servicedesk/internal/domain"
)

func newTestSubscriptionService(tenantRepo *fakeTenantRepo, paymentRepo *fakePaymentRepo, now time.Time) *SubscriptionService {
	svc := NewSubscriptionService(tenantRepo, paymentRepo, NewAuditService(newFakeAuditRepo(), nil), nil)
	svc.now = func() time.Time { return now }
	return svc
}

func seedTenant(t *testing.T, repo *fakeTenantRepo, mutate func(*domain.Tenant)) *domain.Tenant {
	t.Helper()
	now := time.Now().UTC()
	tenant := &domain.Tenant{
		TenantID:           uuid.New(),
		OwnerName:          "Ana Pop",
		ServiceName:        "Fix Central",
		Email:              "ana@fixcentral.ro",
		SubscriptionStatus: domain.SubscriptionActive,
		SubscriptionPlan:   "pro",
		SubscriptionPrice:  99,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if mutate != nil {
		mutate(tenant)
	}
	require.NoError(t, repo.Create(context.Background(), tenant))
	return tenant
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(newFakeTenantRepo(), newFakePaymentRepo(), now)

	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -10)
	graceDays := 14

	tests := []struct {
		name     string
		tenant   domain.Tenant
		allowed  bool
		reason   string
		expired  bool
		inGrace  bool
	}{
		{
			name:   "pending blocks with awaiting approval",
			tenant: domain.Tenant{SubscriptionStatus: domain.SubscriptionPending, SubscriptionEndDate: &future},
			reason: domain.ReasonAwaitingApproval,
		},
		{
			name:   "suspended blocks even with time left",
			tenant: domain.Tenant{SubscriptionStatus: domain.SubscriptionSuspended, SubscriptionEndDate: &future},
			reason: domain.ReasonSuspended,
		},
		{
			name:   "cancelled blocks",
			tenant: domain.Tenant{SubscriptionStatus: domain.SubscriptionCancelled, SubscriptionEndDate: &future},
			reason: domain.ReasonCancelled,
		},
		{
			name:    "active with time left allows",
			tenant:  domain.Tenant{SubscriptionStatus: domain.SubscriptionActive, SubscriptionEndDate: &future},
			allowed: true,
		},
		{
			name:    "active without end date allows",
			tenant:  domain.Tenant{SubscriptionStatus: domain.SubscriptionActive},
			allowed: true,
		},
		{
			name:    "active past end date blocks as expired",
			tenant:  domain.Tenant{SubscriptionStatus: domain.SubscriptionActive, SubscriptionEndDate: &past},
			reason:  domain.ReasonExpired,
			expired: true,
		},
		{
			name: "grace keeps an expired tenant open",
			tenant: domain.Tenant{
				SubscriptionStatus:  domain.SubscriptionActive,
				SubscriptionEndDate: &past,
				HasGracePeriod:      true,
				GracePeriodDays:     &graceDays,
			},
			allowed: true,
			inGrace: true,
		},
		{
			name: "grace holds long past the granted days",
			tenant: func() domain.Tenant {
				longPast := now.AddDate(0, 0, -30)
				days := 7
				return domain.Tenant{
					SubscriptionStatus:  domain.SubscriptionActive,
					SubscriptionEndDate: &longPast,
					HasGracePeriod:      true,
					GracePeriodDays:     &days,
				}
			}(),
			allowed: true,
			inGrace: true,
		},
		{
			name: "grace flag alone is enough without a day count",
			tenant: domain.Tenant{
				SubscriptionStatus:  domain.SubscriptionActive,
				SubscriptionEndDate: &past,
				HasGracePeriod:      true,
			},
			allowed: true,
			inGrace: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := svc.Evaluate(&tt.tenant, now)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
			assert.Equal(t, tt.expired, decision.IsExpired)
			assert.Equal(t, tt.inGrace, decision.GraceApplies)
		})
	}
}

func TestEvaluateExactBoundary(t *testing.T) {
	svc := newTestSubscriptionService(newFakeTenantRepo(), newFakePaymentRepo(), time.Now())
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tenant := domain.Tenant{SubscriptionStatus: domain.SubscriptionActive, SubscriptionEndDate: &end}

	// Exactly at the end instant the subscription is still valid.
	assert.True(t, svc.Evaluate(&tenant, end).Allowed)
	assert.False(t, svc.Evaluate(&tenant, end.Add(time.Second)).Allowed)
}

func TestExtendGraceCompounds(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), now)

	// Already expired: the anchor is now, not the stale end date.
	tenant := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		past := now.AddDate(0, 0, -10)
		tn.SubscriptionEndDate = &past
	})

	first, err := svc.ExtendGrace(context.Background(), tenant.TenantID, 7)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), first)

	// Second grant anchors on the end date just written, so two calls
	// yield fourteen days, not seven.
	second, err := svc.ExtendGrace(context.Background(), tenant.TenantID, 7)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 14), second)

	stored, err := tenantRepo.GetByID(context.Background(), tenant.TenantID)
	require.NoError(t, err)
	assert.True(t, stored.HasGracePeriod)
	require.NotNil(t, stored.GracePeriodDays)
	assert.Equal(t, 7, *stored.GracePeriodDays)
}

func TestExtendGraceRejectsNonPositiveDays(t *testing.T) {
	svc := newTestSubscriptionService(newFakeTenantRepo(), newFakePaymentRepo(), time.Now())
	_, err := svc.ExtendGrace(context.Background(), uuid.New(), 0)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestApplyPaymentExtendsFromCurrentEnd(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	paymentRepo := newFakePaymentRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(tenantRepo, paymentRepo, now)

	// Active with 40 days of coverage left: the payment stacks on top.
	end := now.AddDate(0, 0, 40)
	tenant := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		tn.SubscriptionEndDate = &end
		tn.HasPaymentNotice = true
		tn.IsTrial = true
	})

	receipt, err := svc.ApplyPayment(context.Background(), tenant.TenantID, "pro", 1)
	require.NoError(t, err)
	assert.Equal(t, end.AddDate(0, 0, 30), receipt.NewEndDate)
	assert.Equal(t, 99.0, receipt.Amount)
	assert.True(t, strings.HasPrefix(receipt.InvoiceNumber, "INV-20260315-"))

	stored, err := tenantRepo.GetByID(context.Background(), tenant.TenantID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, stored.SubscriptionStatus)
	assert.False(t, stored.HasPaymentNotice)
	assert.False(t, stored.HasGracePeriod)
	assert.False(t, stored.IsTrial)

	payments, err := svc.PaymentHistory(context.Background(), tenant.TenantID, 10)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 1, payments[0].Months)
	assert.Equal(t, now, payments[0].ProcessedAt)
}

func TestApplyPaymentLapsedStartsFromNow(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), now)

	// Expired a month ago: dead time is not billed.
	tenant := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		past := now.AddDate(0, 0, -30)
		tn.SubscriptionEndDate = &past
	})

	receipt, err := svc.ApplyPayment(context.Background(), tenant.TenantID, "pro", 3)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 90), receipt.NewEndDate)
	assert.Equal(t, 297.0, receipt.Amount)
}

func TestApplyPaymentRejectsUnknownPlan(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), time.Now())
	tenant := seedTenant(t, tenantRepo, nil)

	_, err := svc.ApplyPayment(context.Background(), tenant.TenantID, "platinum", 1)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "plan", validationErr.Field)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestSubscriptionService(newFakeTenantRepo(), newFakePaymentRepo(), time.Now())

	err := svc.SetStatus(context.Background(), uuid.New(), "frozen")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestStatusReportsExpiryWindow(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), now)

	tenant := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := now.AddDate(0, 0, 3)
		tn.SubscriptionEndDate = &end
	})

	resp, err := svc.Status(context.Background(), tenant.TenantID)
	require.NoError(t, err)
	require.NotNil(t, resp.DaysUntilExpiry)
	assert.Equal(t, 3, *resp.DaysUntilExpiry)
	assert.True(t, resp.IsExpiringSoon)
	assert.False(t, resp.IsExpired)
	assert.Equal(t, 5, resp.PlanLimits.Locations)
	assert.True(t, resp.PlanLimits.HasAI)
}

func TestStatusUnknownTenant(t *testing.T) {
	svc := newTestSubscriptionService(newFakeTenantRepo(), newFakePaymentRepo(), time.Now())
	_, err := svc.Status(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestExpiringSoonFiltersAndSkipsOpenEnded(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), now)

	soon := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := now.AddDate(0, 0, 2)
		tn.SubscriptionEndDate = &end
	})
	seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := now.AddDate(0, 0, 20)
		tn.SubscriptionEndDate = &end
		tn.Email = "far@fixcentral.ro"
	})
	seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		tn.SubscriptionEndDate = nil
		tn.Email = "openended@fixcentral.ro"
	})

	expiring, err := svc.ExpiringSoon(context.Background())
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.TenantID, expiring[0].TenantID)
	assert.Equal(t, 2, expiring[0].DaysUntilExpiry)
}

func TestResetSubscriptionRestartsFromNow(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), now)

	tenant := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := now.AddDate(0, 0, 40)
		tn.SubscriptionEndDate = &end
		tn.HasGracePeriod = true
		days := 14
		tn.GracePeriodDays = &days
	})

	newEnd, err := svc.ResetSubscription(context.Background(), tenant.TenantID, 2)
	require.NoError(t, err)
	// Reset ignores remaining coverage entirely.
	assert.Equal(t, now.AddDate(0, 0, 60), newEnd)

	stored, err := tenantRepo.GetByID(context.Background(), tenant.TenantID)
	require.NoError(t, err)
	assert.False(t, stored.HasGracePeriod)
}

type fakeMailer struct {
	notices  int
	warnings int
	lastDays int
}

func (m *fakeMailer) SendPaymentNotice(_ context.Context, _, _ string, _ time.Time) error {
	m.notices++
	return nil
}

func (m *fakeMailer) SendExpiryWarning(_ context.Context, _, _ string, daysLeft int) error {
	m.warnings++
	m.lastDays = daysLeft
	return nil
}

func TestSendPaymentNoticePicksEmailByWindow(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(tenantRepo, newFakePaymentRepo(), NewAuditService(newFakeAuditRepo(), nil), mailer)
	svc.now = func() time.Time { return now }

	// Still inside the paid window: warn with days remaining.
	inWindow := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := now.AddDate(0, 0, 4)
		tn.SubscriptionEndDate = &end
	})
	require.NoError(t, svc.SendPaymentNotice(context.Background(), inWindow.TenantID))
	assert.Equal(t, 1, mailer.warnings)
	assert.Equal(t, 4, mailer.lastDays)
	assert.Equal(t, 0, mailer.notices)

	// Lapsed: send the payment-due notice instead.
	lapsed := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := now.AddDate(0, 0, -4)
		tn.SubscriptionEndDate = &end
		tn.Email = "lapsed@fixcentral.ro"
	})
	require.NoError(t, svc.SendPaymentNotice(context.Background(), lapsed.TenantID))
	assert.Equal(t, 1, mailer.notices)
	assert.Equal(t, 1, mailer.warnings)
}

func TestPaymentNoticeRoundTrip(t *testing.T) {
	tenantRepo := newFakeTenantRepo()
	svc := newTestSubscriptionService(tenantRepo, newFakePaymentRepo(), time.Now().UTC())
	tenant := seedTenant(t, tenantRepo, func(tn *domain.Tenant) {
		end := time.Now().UTC().AddDate(0, 0, 5)
		tn.SubscriptionEndDate = &end
	})

	require.NoError(t, svc.SendPaymentNotice(context.Background(), tenant.TenantID))
	stored, _ := tenantRepo.GetByID(context.Background(), tenant.TenantID)
	assert.True(t, stored.HasPaymentNotice)

	require.NoError(t, svc.DismissPaymentNotice(context.Background(), tenant.TenantID))
	stored, _ = tenantRepo.GetByID(context.Background(), tenant.TenantID)
	assert.False(t, stored.HasPaymentNotice)
}
