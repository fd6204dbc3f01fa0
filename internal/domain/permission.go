package domain

// Permission is one atomic capability tag. The set is closed: role writes
// reject tags that are not part of it.
type Permission string

const (
	// Tickets
	PermViewTickets   Permission = "view_tickets"
	PermCreateTickets Permission = "create_tickets"
	PermEditTickets   Permission = "edit_tickets"
	PermDeleteTickets Permission = "delete_tickets"
	PermAssignTickets Permission = "assign_tickets"

	// Clients
	PermViewClients   Permission = "view_clients"
	PermCreateClients Permission = "create_clients"
	PermEditClients   Permission = "edit_clients"
	PermDeleteClients Permission = "delete_clients"

	// Employees
	PermViewEmployees   Permission = "view_employees"
	PermCreateEmployees Permission = "create_employees"
	PermEditEmployees   Permission = "edit_employees"
	PermDeleteEmployees Permission = "delete_employees"

	// Locations
	PermViewLocations   Permission = "view_locations"
	PermCreateLocations Permission = "create_locations"
	PermEditLocations   Permission = "edit_locations"
	PermDeleteLocations Permission = "delete_locations"

	// Roles
	PermViewRoles   Permission = "view_roles"
	PermCreateRoles Permission = "create_roles"
	PermEditRoles   Permission = "edit_roles"
	PermDeleteRoles Permission = "delete_roles"

	// Settings
	PermViewSettings Permission = "view_settings"
	PermEditSettings Permission = "edit_settings"

	// AI
	PermUseAI       Permission = "use_ai"
	PermConfigureAI Permission = "configure_ai"

	// Reports
	PermViewReports   Permission = "view_reports"
	PermExportReports Permission = "export_reports"

	// Financial
	PermViewFinancial Permission = "view_financial"
	PermEditFinancial Permission = "edit_financial"
)

// AllPermissions lists every capability in declaration order. Removing an
// entry is a breaking change; additions are safe.
var AllPermissions = []Permission{
	PermViewTickets, PermCreateTickets, PermEditTickets, PermDeleteTickets, PermAssignTickets,
	PermViewClients, PermCreateClients, PermEditClients, PermDeleteClients,
	PermViewEmployees, PermCreateEmployees, PermEditEmployees, PermDeleteEmployees,
	PermViewLocations, PermCreateLocations, PermEditLocations, PermDeleteLocations,
	PermViewRoles, PermCreateRoles, PermEditRoles, PermDeleteRoles,
	PermViewSettings, PermEditSettings,
	PermUseAI, PermConfigureAI,
	PermViewReports, PermExportReports,
	PermViewFinancial, PermEditFinancial,
}

var permissionSet = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(AllPermissions))
	for _, p := range AllPermissions {
		m[p] = struct{}{}
	}
	return m
}()

// ValidPermission reports whether tag belongs to the closed enumeration.
func ValidPermission(tag string) bool {
	_, ok := permissionSet[Permission(tag)]
	return ok
}

// PermissionGroup is the UI-facing grouping of the enumeration by domain.
type PermissionGroup struct {
	Key         string       `json:"key"`
	Permissions []Permission `json:"permissions"`
}

// PermissionGroups returns the capability tags grouped by domain, in a fixed
// order.
func PermissionGroups() []PermissionGroup {
	return []PermissionGroup{
		{Key: "tickets", Permissions: []Permission{PermViewTickets, PermCreateTickets, PermEditTickets, PermDeleteTickets, PermAssignTickets}},
		{Key: "clients", Permissions: []Permission{PermViewClients, PermCreateClients, PermEditClients, PermDeleteClients}},
		{Key: "employees", Permissions: []Permission{PermViewEmployees, PermCreateEmployees, PermEditEmployees, PermDeleteEmployees}},
		{Key: "locations", Permissions: []Permission{PermViewLocations, PermCreateLocations, PermEditLocations, PermDeleteLocations}},
		{Key: "roles", Permissions: []Permission{PermViewRoles, PermCreateRoles, PermEditRoles, PermDeleteRoles}},
		{Key: "settings", Permissions: []Permission{PermViewSettings, PermEditSettings}},
		{Key: "ai", Permissions: []Permission{PermUseAI, PermConfigureAI}},
		{Key: "reports", Permissions: []Permission{PermViewReports, PermExportReports}},
		{Key: "financial", Permissions: []Permission{PermViewFinancial, PermEditFinancial}},
	}
}

// PermissionSet is a resolved capability set for one principal.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given tags.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// FullPermissionSet returns a set containing the whole enumeration.
func FullPermissionSet() PermissionSet {
	return NewPermissionSet(AllPermissions...)
}

// Has reports membership.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// List returns the set's tags in enumeration order.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for _, p := range AllPermissions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}
