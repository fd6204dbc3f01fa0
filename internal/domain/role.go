package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Role is a named permission set owned by a tenant. System roles live in the
// code-defined registry below and are never stored.
type Role struct {
	TenantID    uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	RoleID      string         `json:"role_id" db:"role_id" validate:"required,min=2,max=100"`
	Name        string         `json:"name" db:"name" validate:"required,min=2,max=100"`
	Description string         `json:"description" db:"description" validate:"max=500"`
	Permissions pq.StringArray `json:"permissions" db:"permissions"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// PermissionSet converts the stored tags to a resolved set. Tags are
// validated at write time, so no filtering happens here.
func (r *Role) PermissionSet() PermissionSet {
	s := make(PermissionSet, len(r.Permissions))
	for _, tag := range r.Permissions {
		s[Permission(tag)] = struct{}{}
	}
	return s
}

// SystemRole is an immutable, code-defined role available to every tenant.
type SystemRole struct {
	RoleID      string
	Name        string
	Description string
	Permissions []Permission
}

// SystemRoles is the fixed registry of built-in roles, keyed by role id.
// These cannot be created, edited, or deleted through the role endpoints.
var SystemRoles = map[string]SystemRole{
	"Receptie": {
		RoleID:      "Receptie",
		Name:        "Recepție",
		Description: "Front-desk staff: manages clients and creates tickets",
		Permissions: []Permission{
			PermViewTickets, PermCreateTickets, PermEditTickets,
			PermViewClients, PermCreateClients, PermEditClients,
			PermUseAI,
		},
	},
	"Technician": {
		RoleID:      "Technician",
		Name:        "Tehnician",
		Description: "Service technician: repairs devices and updates tickets",
		Permissions: []Permission{
			PermViewTickets, PermEditTickets,
			PermViewClients,
			PermUseAI,
		},
	},
	"Manager": {
		RoleID:      "Manager",
		Name:        "Manager",
		Description: "Service manager: full access to every feature",
		Permissions: []Permission{
			PermViewTickets, PermCreateTickets, PermEditTickets, PermDeleteTickets, PermAssignTickets,
			PermViewClients, PermCreateClients, PermEditClients, PermDeleteClients,
			PermViewEmployees, PermCreateEmployees, PermEditEmployees, PermDeleteEmployees,
			PermViewLocations, PermCreateLocations, PermEditLocations, PermDeleteLocations,
			PermViewRoles, PermEditRoles,
			PermViewSettings, PermEditSettings,
			PermUseAI, PermConfigureAI,
			PermViewReports, PermExportReports,
			PermViewFinancial, PermEditFinancial,
		},
	},
}

// SystemRoleIDs lists the registry keys in a stable order.
var SystemRoleIDs = []string{"Receptie", "Technician", "Manager"}

// IsSystemRole reports whether id collides with the built-in registry.
func IsSystemRole(id string) bool {
	_, ok := SystemRoles[id]
	return ok
}
