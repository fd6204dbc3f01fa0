package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. All are terminal for the current
// request; nothing is retried internally.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrLocationNotFound   = errors.New("location not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrEmailTaken         = errors.New("email already registered")
)

// SubscriptionError rejects tenant-scoped traffic with a stable
// caller-facing reason ("awaiting approval", "suspended", "cancelled",
// "subscription expired").
type SubscriptionError struct {
	Reason string
}

func (e *SubscriptionError) Error() string {
	return e.Reason
}

// Role conflict kinds.
const (
	RoleConflictDuplicate = "duplicate"
	RoleConflictImmutable = "immutable"
	RoleConflictInUse     = "in-use"
)

// RoleConflictError rejects a role write that collides with an existing
// role, a system role, or a role still referenced by employees.
type RoleConflictError struct {
	Kind   string
	RoleID string
}

func (e *RoleConflictError) Error() string {
	switch e.Kind {
	case RoleConflictDuplicate:
		return fmt.Sprintf("role %q already exists", e.RoleID)
	case RoleConflictImmutable:
		return fmt.Sprintf("role %q is a system role and cannot be modified", e.RoleID)
	case RoleConflictInUse:
		return fmt.Sprintf("role %q is still assigned to employees", e.RoleID)
	}
	return fmt.Sprintf("role conflict: %s", e.RoleID)
}

// ValidationError rejects a write whose field value falls outside the
// closed contract (unknown permission tag, unknown status, unknown plan).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PlanLimitError rejects provisioning beyond the tenant's plan limits.
type PlanLimitError struct {
	Resource string
	Plan     string
	Limit    int
}

func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("plan %s allows at most %d %s", e.Plan, e.Limit, e.Resource)
}
