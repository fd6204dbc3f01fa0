package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

// RoleService resolves principals to permission sets and manages tenant
// custom roles. A custom role sharing an id with a system role replaces
// it verbatim; resolution never merges the two definitions.
type RoleService struct {
	roleRepo     repository.RoleRepository
	employeeRepo repository.EmployeeRepository
	audit        *AuditService
}

func NewRoleService(roleRepo repository.RoleRepository, employeeRepo repository.EmployeeRepository, audit *AuditService) *RoleService {
	return &RoleService{
		roleRepo:     roleRepo,
		employeeRepo: employeeRepo,
		audit:        audit,
	}
}

// CapabilitiesOf resolves the effective permission set of a principal.
// Admins and tenant owners hold every permission unconditionally.
// Employees resolve through their role name: custom role first, system
// role second, and an unknown role yields the empty set rather than an
// error so a deleted role locks the employee out instead of breaking
// requests.
func (s *RoleService) CapabilitiesOf(ctx context.Context, p *domain.Principal) (domain.PermissionSet, error) {
	switch p.Kind {
	case domain.KindAdmin, domain.KindTenantOwner:
		return domain.FullPermissionSet(), nil
	}

	if p.TenantID == nil || p.Role == "" {
		return domain.PermissionSet{}, nil
	}

	custom, err := s.roleRepo.GetByID(ctx, *p.TenantID, p.Role)
	if err == nil {
		return custom.PermissionSet(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading role %q: %w", p.Role, err)
	}

	if sys, ok := domain.SystemRoles[p.Role]; ok {
		return domain.NewPermissionSet(sys.Permissions...), nil
	}
	return domain.PermissionSet{}, nil
}

// Has reports whether the principal holds one permission.
func (s *RoleService) Has(ctx context.Context, p *domain.Principal, perm domain.Permission) (bool, error) {
	set, err := s.CapabilitiesOf(ctx, p)
	if err != nil {
		return false, err
	}
	return set.Has(perm), nil
}

// RoleResponse is one role in a tenant's listing, system or custom.
type RoleResponse struct {
	RoleID      string              `json:"role_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions []domain.Permission `json:"permissions"`
	IsSystem    bool                `json:"is_system"`
	UserCount   int                 `json:"user_count"`
}

// ListRoles returns the tenant's full role catalog: the built-in system
// roles followed by the tenant's custom roles, each with the number of
// employees currently assigned to it. A custom role that shadows a
// system role id appears once, with the custom definition.
func (s *RoleService) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]RoleResponse, error) {
	custom, err := s.roleRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	customByID := make(map[string]*domain.Role, len(custom))
	for _, r := range custom {
		customByID[r.RoleID] = r
	}

	out := make([]RoleResponse, 0, len(domain.SystemRoleIDs)+len(custom))
	for _, id := range domain.SystemRoleIDs {
		if _, shadowed := customByID[id]; shadowed {
			continue
		}
		sys := domain.SystemRoles[id]
		count, err := s.employeeRepo.CountByRole(ctx, tenantID, id)
		if err != nil {
			return nil, fmt.Errorf("counting users of role %q: %w", id, err)
		}
		out = append(out, RoleResponse{
			RoleID:      sys.RoleID,
			Name:        sys.Name,
			Description: sys.Description,
			Permissions: sys.Permissions,
			IsSystem:    true,
			UserCount:   count,
		})
	}
	for _, r := range custom {
		count, err := s.employeeRepo.CountByRole(ctx, tenantID, r.RoleID)
		if err != nil {
			return nil, fmt.Errorf("counting users of role %q: %w", r.RoleID, err)
		}
		set := r.PermissionSet()
		out = append(out, RoleResponse{
			RoleID:      r.RoleID,
			Name:        r.Name,
			Description: r.Description,
			Permissions: set.List(),
			IsSystem:    false,
			UserCount:   count,
		})
	}
	return out, nil
}

// CreateRoleRequest carries a new custom role definition.
type CreateRoleRequest struct {
	RoleID      string   `json:"role_id" validate:"required,min=2,max=100"`
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"required"`
}

// CreateRole stores a new custom role for the tenant. The id must not
// collide with a system role or an existing custom role, and every
// permission tag must belong to the closed permission set.
func (s *RoleService) CreateRole(ctx context.Context, tenantID uuid.UUID, req CreateRoleRequest) (*domain.Role, error) {
	if domain.IsSystemRole(req.RoleID) {
		return nil, &RoleConflictError{Kind: RoleConflictImmutable, RoleID: req.RoleID}
	}
	if err := validatePermissionTags(req.Permissions); err != nil {
		return nil, err
	}
	if _, err := s.roleRepo.GetByID(ctx, tenantID, req.RoleID); err == nil {
		return nil, &RoleConflictError{Kind: RoleConflictDuplicate, RoleID: req.RoleID}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking role %q: %w", req.RoleID, err)
	}

	now := time.Now().UTC()
	role := &domain.Role{
		TenantID:    tenantID,
		RoleID:      req.RoleID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: pq.StringArray(req.Permissions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("creating role: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategoryAuthz,
		Message:  "custom role created: " + req.RoleID,
		TenantID: &tenantID,
	})
	return role, nil
}

// UpdateRoleRequest carries replacement fields for a custom role.
type UpdateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"required"`
}

// UpdateRole replaces a custom role's definition. System roles are
// immutable through this path.
func (s *RoleService) UpdateRole(ctx context.Context, tenantID uuid.UUID, roleID string, req UpdateRoleRequest) (*domain.Role, error) {
	if domain.IsSystemRole(roleID) {
		return nil, &RoleConflictError{Kind: RoleConflictImmutable, RoleID: roleID}
	}
	if err := validatePermissionTags(req.Permissions); err != nil {
		return nil, err
	}
	role, err := s.roleRepo.GetByID(ctx, tenantID, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("loading role %q: %w", roleID, err)
	}

	role.Name = req.Name
	role.Description = req.Description
	role.Permissions = pq.StringArray(req.Permissions)
	role.UpdatedAt = time.Now().UTC()
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditInfo,
		Category: domain.AuditCategoryAuthz,
		Message:  "custom role updated: " + roleID,
		TenantID: &tenantID,
	})
	return role, nil
}

// DeleteRole removes a custom role. System roles cannot be deleted, and
// neither can a role still assigned to any employee.
func (s *RoleService) DeleteRole(ctx context.Context, tenantID uuid.UUID, roleID string) error {
	if domain.IsSystemRole(roleID) {
		return &RoleConflictError{Kind: RoleConflictImmutable, RoleID: roleID}
	}
	count, err := s.employeeRepo.CountByRole(ctx, tenantID, roleID)
	if err != nil {
		return fmt.Errorf("counting users of role %q: %w", roleID, err)
	}
	if count > 0 {
		return &RoleConflictError{Kind: RoleConflictInUse, RoleID: roleID}
	}
	if err := s.roleRepo.Delete(ctx, tenantID, roleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("deleting role: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Level:    domain.AuditWarning,
		Category: domain.AuditCategoryAuthz,
		Message:  "custom role deleted: " + roleID,
		TenantID: &tenantID,
	})
	return nil
}

// RoleExists reports whether roleID names a system role or one of the
// tenant's custom roles. Used when assigning roles to employees.
func (s *RoleService) RoleExists(ctx context.Context, tenantID uuid.UUID, roleID string) (bool, error) {
	if domain.IsSystemRole(roleID) {
		return true, nil
	}
	_, err := s.roleRepo.GetByID(ctx, tenantID, roleID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking role %q: %w", roleID, err)
}

func validatePermissionTags(tags []string) error {
	for _, tag := range tags {
		if !domain.ValidPermission(tag) {
			return &ValidationError{Field: "permissions", Message: fmt.Sprintf("unknown permission %q", tag)}
		}
	}
	return nil
}
