package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

// In-memory repository fakes backing the service tests. They mirror the
// conditional-update semantics of the Postgres implementations: mutations
// against a missing row return repository.ErrNotFound.

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*domain.AdminUser
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*domain.AdminUser)}
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *admin
	r.admins[admin.Email] = &cp
	return nil
}

type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*domain.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[uuid.UUID]*domain.Tenant)}
}

func (r *fakeTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tenant
	r.tenants[tenant.TenantID] = &cp
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tenants[tenantID]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTenantRepo) GetByEmail(_ context.Context, email string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.Email == email {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTenantRepo) ListByStatus(_ context.Context, status domain.SubscriptionStatus) ([]*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Tenant
	for _, t := range r.tenants {
		if t.SubscriptionStatus == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTenantRepo) SetStatus(_ context.Context, tenantID uuid.UUID, status domain.SubscriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return repository.ErrNotFound
	}
	t.SubscriptionStatus = status
	return nil
}

func (r *fakeTenantRepo) Activate(_ context.Context, tenantID uuid.UUID, price float64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return repository.ErrNotFound
	}
	t.SubscriptionStatus = domain.SubscriptionActive
	t.SubscriptionPrice = price
	t.ActivatedAt = &at
	return nil
}

func (r *fakeTenantRepo) SetEndDate(_ context.Context, tenantID uuid.UUID, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return repository.ErrNotFound
	}
	t.SubscriptionEndDate = &end
	return nil
}

func (r *fakeTenantRepo) ExtendGrace(_ context.Context, tenantID uuid.UUID, newEnd time.Time, days int, grantedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return repository.ErrNotFound
	}
	t.SubscriptionEndDate = &newEnd
	t.HasGracePeriod = true
	t.GracePeriodDays = &days
	t.GraceExtendedAt = &grantedAt
	return nil
}

func (r *fakeTenantRepo) ApplyPayment(_ context.Context, tenantID uuid.UUID, plan string, price float64, newEnd, paidAt time.Time, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return repository.ErrNotFound
	}
	t.SubscriptionStatus = domain.SubscriptionActive
	t.SubscriptionPlan = plan
	t.SubscriptionPrice = price
	t.SubscriptionEndDate = &newEnd
	t.HasGracePeriod = false
	t.GracePeriodDays = nil
	t.GraceExtendedAt = nil
	t.HasPaymentNotice = false
	t.IsTrial = false
	t.LastPaymentDate = &paidAt
	t.LastPaymentAmount = &amount
	return nil
}

func (r *fakeTenantRepo) SetPaymentNotice(_ context.Context, tenantID uuid.UUID, notified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return repository.ErrNotFound
	}
	t.HasPaymentNotice = notified
	return nil
}

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	employees map[uuid.UUID]*domain.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[uuid.UUID]*domain.Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *employee
	r.employees[employee.UserID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.employees[userID]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEmployeeRepo) GetByEmailFold(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if strings.EqualFold(e.Email, email) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEmployeeRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Employee
	for _, e := range r.employees {
		if e.TenantID == tenantID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) CountByTenant(_ context.Context, tenantID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.employees {
		if e.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEmployeeRepo) CountByRole(_ context.Context, tenantID uuid.UUID, roleID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.employees {
		if e.TenantID == tenantID && e.Role == roleID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEmployeeRepo) UpdateRole(_ context.Context, tenantID, userID uuid.UUID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[userID]
	if !ok || e.TenantID != tenantID {
		return repository.ErrNotFound
	}
	e.Role = roleID
	return nil
}

func (r *fakeEmployeeRepo) UpdateLocation(_ context.Context, tenantID, userID, locationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[userID]
	if !ok || e.TenantID != tenantID {
		return repository.ErrNotFound
	}
	e.LocationID = locationID
	return nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, tenantID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[userID]
	if !ok || e.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(r.employees, userID)
	return nil
}

type roleKey struct {
	tenantID uuid.UUID
	roleID   string
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[roleKey]*domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[roleKey]*domain.Role)}
}

func (r *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *role
	r.roles[roleKey{role.TenantID, role.RoleID}] = &cp
	return nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, tenantID uuid.UUID, roleID string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[roleKey{tenantID, roleID}]; ok {
		cp := *role
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRoleRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Role
	for k, role := range r.roles {
		if k.tenantID == tenantID {
			cp := *role
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) Update(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := roleKey{role.TenantID, role.RoleID}
	if _, ok := r.roles[k]; !ok {
		return repository.ErrNotFound
	}
	cp := *role
	r.roles[k] = &cp
	return nil
}

func (r *fakeRoleRepo) Delete(_ context.Context, tenantID uuid.UUID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := roleKey{tenantID, roleID}
	if _, ok := r.roles[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.roles, k)
	return nil
}

type fakeLocationRepo struct {
	mu        sync.Mutex
	locations map[uuid.UUID]*domain.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[uuid.UUID]*domain.Location)}
}

func (r *fakeLocationRepo) Create(_ context.Context, location *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *location
	r.locations[location.LocationID] = &cp
	return nil
}

func (r *fakeLocationRepo) GetByID(_ context.Context, locationID uuid.UUID) (*domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locations[locationID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLocationRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Location
	for _, l := range r.locations {
		if l.TenantID == tenantID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) CountByTenant(_ context.Context, tenantID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, l := range r.locations {
		if l.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *payment
	r.payments = append(r.payments, &cp)
	return nil
}

func (r *fakePaymentRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, limit int) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].TenantID == tenantID {
			cp := *r.payments[i]
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter) ([]*domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		ev := r.events[i]
		if filter.Level != "" && ev.Level != filter.Level {
			continue
		}
		if filter.Category != "" && ev.Category != filter.Category {
			continue
		}
		if filter.TenantID != nil && (ev.TenantID == nil || *ev.TenantID != *filter.TenantID) {
			continue
		}
		cp := *ev
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Message
	}
	return out
}
