package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/pkg/hash"
	"github.com/fixdesk/servicedesk/pkg/jwt"
)

type authFixture struct {
	svc          *AuthService
	adminRepo    *fakeAdminRepo
	tenantRepo   *fakeTenantRepo
	employeeRepo *fakeEmployeeRepo
	auditRepo    *fakeAuditRepo
	tokens       *jwt.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	adminRepo := newFakeAdminRepo()
	tenantRepo := newFakeTenantRepo()
	employeeRepo := newFakeEmployeeRepo()
	auditRepo := newFakeAuditRepo()

	tokens, err := jwt.NewTokenService([]byte("test-secret"), time.Hour, "servicedesk-test")
	require.NoError(t, err)

	audit := NewAuditService(auditRepo, nil)
	subscriptions := NewSubscriptionService(tenantRepo, newFakePaymentRepo(), audit, nil)
	svc := NewAuthService(adminRepo, tenantRepo, employeeRepo, subscriptions, tokens, audit)

	return &authFixture{
		svc:          svc,
		adminRepo:    adminRepo,
		tenantRepo:   tenantRepo,
		employeeRepo: employeeRepo,
		auditRepo:    auditRepo,
		tokens:       tokens,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := hash.HashPassword(password)
	require.NoError(t, err)
	return h
}

func (f *authFixture) seedActiveTenant(t *testing.T, email, password string) *domain.Tenant {
	t.Helper()
	end := time.Now().UTC().AddDate(0, 0, 30)
	tenant := &domain.Tenant{
		TenantID:            uuid.New(),
		OwnerName:           "Ana Pop",
		ServiceName:         "Fix Central",
		Email:               email,
		PasswordHash:        mustHash(t, password),
		SubscriptionStatus:  domain.SubscriptionActive,
		SubscriptionPlan:    "pro",
		SubscriptionEndDate: &end,
	}
	require.NoError(t, f.tenantRepo.Create(context.Background(), tenant))
	return tenant
}

func TestResolveOrderPrefersOwnerOverEmployee(t *testing.T) {
	f := newAuthFixture(t)
	email := "shared@fixcentral.ro"

	tenant := f.seedActiveTenant(t, email, "owner-pass")
	require.NoError(t, f.employeeRepo.Create(context.Background(), &domain.Employee{
		UserID:       uuid.New(),
		TenantID:     tenant.TenantID,
		LocationID:   uuid.New(),
		Email:        email,
		PasswordHash: mustHash(t, "staff-pass"),
		Role:         "Technician",
	}))

	principal, err := f.svc.ResolveByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, domain.KindTenantOwner, principal.Kind)
	assert.Equal(t, tenant.TenantID, principal.ID)
}

func TestResolveOrderPrefersAdminOverAll(t *testing.T) {
	f := newAuthFixture(t)
	email := "root@platform.ro"

	require.NoError(t, f.adminRepo.Create(context.Background(), &domain.AdminUser{
		AdminID:      uuid.New(),
		Email:        email,
		Name:         "Platform Root",
		PasswordHash: mustHash(t, "admin-pass"),
	}))
	f.seedActiveTenant(t, email, "owner-pass")

	principal, err := f.svc.ResolveByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, domain.KindAdmin, principal.Kind)
	assert.Nil(t, principal.TenantID)
}

func TestResolveEmployeeCaseInsensitiveFallback(t *testing.T) {
	f := newAuthFixture(t)
	tenant := f.seedActiveTenant(t, "owner@fixcentral.ro", "owner-pass")

	require.NoError(t, f.employeeRepo.Create(context.Background(), &domain.Employee{
		UserID:       uuid.New(),
		TenantID:     tenant.TenantID,
		LocationID:   uuid.New(),
		Email:        "Mihai.Ionescu@FixCentral.ro",
		PasswordHash: mustHash(t, "staff-pass"),
		Role:         "Technician",
	}))

	principal, err := f.svc.ResolveByEmail(context.Background(), "mihai.ionescu@fixcentral.ro")
	require.NoError(t, err)
	assert.Equal(t, domain.KindEmployee, principal.Kind)
	assert.Equal(t, "Technician", principal.Role)
}

func TestResolveUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.ResolveByEmail(context.Background(), "nobody@nowhere.ro")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLoginIssuesDecodableToken(t *testing.T) {
	f := newAuthFixture(t)
	tenant := f.seedActiveTenant(t, "owner@fixcentral.ro", "owner-pass")

	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "owner@fixcentral.ro",
		Password: "owner-pass",
	}, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindTenantOwner, resp.UserType)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := f.tokens.Decode(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, tenant.TenantID, claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenant.TenantID, *claims.TenantID)
	assert.Equal(t, domain.KindTenantOwner, claims.UserType)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedActiveTenant(t, "owner@fixcentral.ro", "owner-pass")

	_, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "owner@fixcentral.ro",
		Password: "not-the-password",
	}, RequestMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, f.auditRepo.messages(), "login failed: wrong password")
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@nowhere.ro",
		Password: "whatever",
	}, RequestMeta{})
	// Same error as a wrong password; the response must not leak
	// whether the account exists.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginVetoedBySubscription(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Tenant)
		reason string
	}{
		{
			name:   "pending tenant",
			mutate: func(tn *domain.Tenant) { tn.SubscriptionStatus = domain.SubscriptionPending },
			reason: domain.ReasonAwaitingApproval,
		},
		{
			name:   "suspended tenant",
			mutate: func(tn *domain.Tenant) { tn.SubscriptionStatus = domain.SubscriptionSuspended },
			reason: domain.ReasonSuspended,
		},
		{
			name: "expired tenant",
			mutate: func(tn *domain.Tenant) {
				past := time.Now().UTC().AddDate(0, 0, -10)
				tn.SubscriptionEndDate = &past
			},
			reason: domain.ReasonExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tenant := f.seedActiveTenant(t, "owner@fixcentral.ro", "owner-pass")
			tt.mutate(tenant)
			require.NoError(t, f.tenantRepo.Create(context.Background(), tenant))

			_, err := f.svc.Login(context.Background(), LoginRequest{
				Email:    "owner@fixcentral.ro",
				Password: "owner-pass",
			}, RequestMeta{})

			var subErr *SubscriptionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tt.reason, subErr.Reason)
		})
	}
}

func TestLoginAdminBypassesSubscription(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.adminRepo.Create(context.Background(), &domain.AdminUser{
		AdminID:      uuid.New(),
		Email:        "root@platform.ro",
		Name:         "Platform Root",
		PasswordHash: mustHash(t, "admin-pass"),
	}))

	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "root@platform.ro",
		Password: "admin-pass",
	}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.KindAdmin, resp.UserType)
	assert.Nil(t, resp.TenantID)
}

func TestLoginEmployeeInGraceSucceeds(t *testing.T) {
	f := newAuthFixture(t)
	tenant := f.seedActiveTenant(t, "owner@fixcentral.ro", "owner-pass")

	past := time.Now().UTC().AddDate(0, 0, -3)
	days := 7
	tenant.SubscriptionEndDate = &past
	tenant.HasGracePeriod = true
	tenant.GracePeriodDays = &days
	require.NoError(t, f.tenantRepo.Create(context.Background(), tenant))

	require.NoError(t, f.employeeRepo.Create(context.Background(), &domain.Employee{
		UserID:       uuid.New(),
		TenantID:     tenant.TenantID,
		LocationID:   uuid.New(),
		Email:        "staff@fixcentral.ro",
		PasswordHash: mustHash(t, "staff-pass"),
		Role:         "Receptie",
	}))

	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "staff@fixcentral.ro",
		Password: "staff-pass",
	}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.KindEmployee, resp.UserType)
	assert.Equal(t, "Receptie", resp.Role)
}
