package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
	"github.com/fixdesk/servicedesk/pkg/hash"
)

// TenantService handles tenant onboarding and the tenant-scoped staff
// and location directories, enforcing plan limits on each write.
type TenantService struct {
	tenantRepo   repository.TenantRepository
	employeeRepo repository.EmployeeRepository
	locationRepo repository.LocationRepository
	roles        *RoleService
	audit        *AuditService
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	employeeRepo repository.EmployeeRepository,
	locationRepo repository.LocationRepository,
	roles *RoleService,
	audit *AuditService,
) *TenantService {
	return &TenantService{
		tenantRepo:   tenantRepo,
		employeeRepo: employeeRepo,
		locationRepo: locationRepo,
		roles:        roles,
		audit:        audit,
	}
}

// RegisterRequest is the self-service onboarding payload.
type RegisterRequest struct {
	OwnerName   string `json:"owner_name" validate:"required,min=2,max=100"`
	CompanyName string `json:"company_name" validate:"required,min=2,max=200"`
	CUI         string `json:"cui" validate:"max=50"`
	ServiceName string `json:"service_name" validate:"required,min=2,max=200"`
	Address     string `json:"address" validate:"max=500"`
	Phone       string `json:"phone" validate:"max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// Register creates a tenant in pending state with a trial window. The
// tenant stays unusable until a platform admin activates it; the trial
// clock starts at registration regardless.
func (s *TenantService) Register(ctx context.Context, req RegisterRequest) (*domain.Tenant, error) {
	if _, err := s.tenantRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	trialEnd := now.AddDate(0, 0, domain.TrialDays)
	tenant := &domain.Tenant{
		TenantID:            uuid.New(),
		OwnerName:           req.OwnerName,
		CompanyName:         req.CompanyName,
		CUI:                 req.CUI,
		ServiceName:         req.ServiceName,
		Address:             req.Address,
		Phone:               req.Phone,
		Email:               req.Email,
		PasswordHash:        passwordHash,
		SubscriptionStatus:  domain.SubscriptionPending,
		SubscriptionPlan:    "trial",
		SubscriptionPrice:   0,
		SubscriptionEndDate: &trialEnd,
		IsTrial:             true,
		TrialStartedAt:      &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("creating tenant: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:     domain.AuditInfo,
		Category:  domain.AuditCategoryAuth,
		Message:   "service registered: " + req.ServiceName,
		TenantID:  &tenant.TenantID,
		UserEmail: req.Email,
	})
	return tenant, nil
}

// Get loads one tenant.
func (s *TenantService) Get(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("loading tenant: %w", err)
	}
	return t, nil
}

// ListByStatus lists tenants in one lifecycle state, for admin review.
func (s *TenantService) ListByStatus(ctx context.Context, status string) ([]*domain.Tenant, error) {
	if !domain.ValidSubscriptionStatus(status) {
		return nil, &ValidationError{Field: "subscription_status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return s.tenantRepo.ListByStatus(ctx, domain.SubscriptionStatus(status))
}

// CreateEmployeeRequest is the staff-creation payload.
type CreateEmployeeRequest struct {
	Name       string    `json:"name" validate:"required,min=2,max=100"`
	Email      string    `json:"email" validate:"required,email"`
	Password   string    `json:"password" validate:"required,min=8"`
	Role       string    `json:"role" validate:"required"`
	LocationID uuid.UUID `json:"location_id" validate:"required"`
}

// CreateEmployee adds a staff account under the tenant. The employee
// count is capped by the plan, the email must be unused across every
// account store, the role must exist for the tenant, and the location
// must belong to it.
func (s *TenantService) CreateEmployee(ctx context.Context, tenantID uuid.UUID, req CreateEmployeeRequest) (*domain.Employee, error) {
	tenant, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	plan := domain.PlanByName(tenant.SubscriptionPlan)
	count, err := s.employeeRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("counting employees: %w", err)
	}
	if count >= plan.Limits.Employees {
		return nil, &PlanLimitError{Resource: "employees", Plan: plan.PlanID, Limit: plan.Limits.Employees}
	}

	if taken, err := s.emailTaken(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	exists, err := s.roles.RoleExists(ctx, tenantID, req.Role)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", req.Role)}
	}

	location, err := s.locationRepo.GetByID(ctx, req.LocationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("loading location: %w", err)
	}
	if location.TenantID != tenantID {
		return nil, ErrLocationNotFound
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	employee := &domain.Employee{
		UserID:       uuid.New(),
		TenantID:     tenantID,
		LocationID:   req.LocationID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("creating employee: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategorySettings,
		Message:  "employee created: " + req.Email,
		TenantID: &tenantID,
	})
	return employee, nil
}

// ListEmployees returns the tenant's staff directory.
func (s *TenantService) ListEmployees(ctx context.Context, tenantID uuid.UUID) ([]*domain.Employee, error) {
	return s.employeeRepo.ListByTenant(ctx, tenantID)
}

// UpdateEmployeeRole reassigns an employee to a different role, which
// must exist for the tenant.
func (s *TenantService) UpdateEmployeeRole(ctx context.Context, tenantID, userID uuid.UUID, roleID string) error {
	exists, err := s.roles.RoleExists(ctx, tenantID, roleID)
	if err != nil {
		return err
	}
	if !exists {
		return &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", roleID)}
	}
	if err := s.employeeRepo.UpdateRole(ctx, tenantID, userID, roleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("updating employee role: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategoryAuthz,
		Message:  "employee role changed to " + roleID,
		UserID:   &userID,
		TenantID: &tenantID,
	})
	return nil
}

// UpdateEmployeeLocation moves an employee to a different location of
// the same tenant.
func (s *TenantService) UpdateEmployeeLocation(ctx context.Context, tenantID, userID, locationID uuid.UUID) error {
	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("loading location: %w", err)
	}
	if location.TenantID != tenantID {
		return ErrLocationNotFound
	}
	if err := s.employeeRepo.UpdateLocation(ctx, tenantID, userID, locationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("updating employee location: %w", err)
	}
	return nil
}

// DeleteEmployee removes a staff account. Outstanding tokens for the
// account stay valid until they expire; deletion only stops new logins.
func (s *TenantService) DeleteEmployee(ctx context.Context, tenantID, userID uuid.UUID) error {
	if err := s.employeeRepo.Delete(ctx, tenantID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("deleting employee: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditWarning,
		Category: domain.AuditCategorySettings,
		Message:  "employee deleted",
		UserID:   &userID,
		TenantID: &tenantID,
	})
	return nil
}

// CreateLocationRequest is the location-creation payload.
type CreateLocationRequest struct {
	LocationName string `json:"location_name" validate:"required,min=2,max=200"`
	Address      string `json:"address" validate:"max=500"`
}

// CreateLocation adds a service location, capped by the plan.
func (s *TenantService) CreateLocation(ctx context.Context, tenantID uuid.UUID, req CreateLocationRequest) (*domain.Location, error) {
	tenant, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	plan := domain.PlanByName(tenant.SubscriptionPlan)
	count, err := s.locationRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("counting locations: %w", err)
	}
	if count >= plan.Limits.Locations {
		return nil, &PlanLimitError{Resource: "locations", Plan: plan.PlanID, Limit: plan.Limits.Locations}
	}

	location := &domain.Location{
		LocationID:   uuid.New(),
		TenantID:     tenantID,
		LocationName: req.LocationName,
		Address:      req.Address,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	return location, nil
}

// ListLocations returns the tenant's locations.
func (s *TenantService) ListLocations(ctx context.Context, tenantID uuid.UUID) ([]*domain.Location, error) {
	return s.locationRepo.ListByTenant(ctx, tenantID)
}

// emailTaken probes every account store for the address, matching the
// login resolver's view of uniqueness.
func (s *TenantService) emailTaken(ctx context.Context, email string) (bool, error) {
	if _, err := s.tenantRepo.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("checking tenant emails: %w", err)
	}
	if _, err := s.employeeRepo.GetByEmailFold(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("checking employee emails: %w", err)
	}
	return false, nil
}
