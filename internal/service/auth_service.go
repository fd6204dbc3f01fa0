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
	"github.com/fixdesk/servicedesk/pkg/jwt"
)

// AuthService resolves emails to principals and runs the login flow.
type AuthService struct {
	adminRepo     repository.AdminRepository
	tenantRepo    repository.TenantRepository
	employeeRepo  repository.EmployeeRepository
	subscriptions *SubscriptionService
	tokens        *jwt.TokenService
	audit         *AuditService
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	tenantRepo repository.TenantRepository,
	employeeRepo repository.EmployeeRepository,
	subscriptions *SubscriptionService,
	tokens *jwt.TokenService,
	audit *AuditService,
) *AuthService {
	return &AuthService{
		adminRepo:     adminRepo,
		tenantRepo:    tenantRepo,
		employeeRepo:  employeeRepo,
		subscriptions: subscriptions,
		tokens:        tokens,
		audit:         audit,
	}
}

// ResolveByEmail probes the three account stores in fixed priority
// order: platform admins, tenant owners, then employees. The employee
// probe tries an exact email match first and falls back to a
// case-insensitive one. An email present in several stores resolves to
// the highest-priority kind; the collision is silent.
func (s *AuthService) ResolveByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return admin.Principal(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("probing admins: %w", err)
	}

	tenant, err := s.tenantRepo.GetByEmail(ctx, email)
	if err == nil {
		return tenant.OwnerPrincipal(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("probing tenants: %w", err)
	}

	employee, err := s.employeeRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		employee, err = s.employeeRepo.GetByEmailFold(ctx, email)
	}
	if err == nil {
		return employee.Principal(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("probing employees: %w", err)
	}

	return nil, ErrAccountNotFound
}

// LoginRequest is the credential pair presented at the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse is the successful authentication payload.
type LoginResponse struct {
	Token       string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int64                `json:"expires_in"`
	UserID      uuid.UUID            `json:"user_id"`
	UserType    domain.PrincipalKind `json:"user_type"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	TenantID    *uuid.UUID           `json:"tenant_id,omitempty"`
	Role        string               `json:"role,omitempty"`
	LocationID  *uuid.UUID           `json:"location_id,omitempty"`
}

// RequestMeta carries the connection attributes recorded on audit events.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Login authenticates a credential pair and issues a token. Unknown
// emails and wrong passwords both surface as ErrInvalidCredentials so
// the response does not reveal whether the account exists. Tenant-scoped
// principals are additionally vetoed by the subscription state of their
// tenant, with the veto reason exposed; admins bypass that check.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*LoginResponse, error) {
	principal, err := s.ResolveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.recordLogin(ctx, domain.AuditWarning, "login failed: account not found", req.Email, nil, nil, meta)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !hash.VerifyPassword(req.Password, principal.PasswordHash) {
		s.recordLogin(ctx, domain.AuditWarning, "login failed: wrong password", principal.Email, &principal.ID, principal.TenantID, meta)
		return nil, ErrInvalidCredentials
	}

	if principal.TenantID != nil {
		tenant, err := s.tenantRepo.GetByID(ctx, *principal.TenantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.recordLogin(ctx, domain.AuditError, "login failed: tenant record missing", principal.Email, &principal.ID, principal.TenantID, meta)
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("loading tenant: %w", err)
		}
		decision := s.subscriptions.Evaluate(tenant, time.Now().UTC())
		if !decision.Allowed {
			s.recordLogin(ctx, domain.AuditWarning, "login vetoed: "+decision.Reason, principal.Email, &principal.ID, principal.TenantID, meta)
			return nil, &SubscriptionError{Reason: decision.Reason}
		}
	}

	token, err := s.tokens.Issue(domain.FromPrincipal(principal))
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.recordLogin(ctx, domain.AuditInfo, "login succeeded", principal.Email, &principal.ID, principal.TenantID, meta)

	return &LoginResponse{
		Token:      token,
		TokenType:  "bearer",
		ExpiresIn:  int64(s.tokens.Expiry().Seconds()),
		UserID:     principal.ID,
		UserType:   principal.Kind,
		Name:       principal.DisplayName,
		Email:      principal.Email,
		TenantID:   principal.TenantID,
		Role:       principal.Role,
		LocationID: principal.LocationID,
	}, nil
}

func (s *AuthService) recordLogin(ctx context.Context, level, message, email string, userID, tenantID *uuid.UUID, meta RequestMeta) {
	s.audit.Record(ctx, domain.AuditEvent{
		Level:     level,
		Category:  domain.AuditCategoryAuth,
		Message:   message,
		UserID:    userID,
		UserEmail: email,
		TenantID:  tenantID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
}
