package domain

// Role is the single place actor permissions come from. Exactly one role
// per actor; it is carried by identity data and never inferred from ticket
// fields.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleTechnician    Role = "TECHNICIAN"
	RoleRequester     Role = "REQUESTER"
)

// CanManageTickets reports whether the role may change ticket lifecycle
// state. Requesters may only comment and rate.
func (r Role) CanManageTickets() bool {
	return r == RoleAdministrator || r == RoleTechnician
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleTechnician, RoleRequester:
		return true
	}
	return false
}

// ParseRole maps a role name to its enum value.
func ParseRole(name string) (Role, bool) {
	role := Role(name)
	return role, role.Valid()
}

// Actor is the user performing coordinator operations.
type Actor struct {
	ID     string
	Name   string
	Role   Role
	Active bool
}
