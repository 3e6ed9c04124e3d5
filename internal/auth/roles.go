package auth

import "github.com/spec-kit/helpdesk-client/internal/domain"

// Legacy identity backends expose roles as numeric ids. The mapping lives
// here so nothing else hardcodes the numbers.
var roleByID = map[int]domain.Role{
	1: domain.RoleAdministrator,
	2: domain.RoleTechnician,
	3: domain.RoleRequester,
}

var idByRole = map[domain.Role]int{
	domain.RoleAdministrator: 1,
	domain.RoleTechnician:    2,
	domain.RoleRequester:     3,
}

// RoleFromID maps a numeric role id, defaulting to requester for unknown
// ids.
func RoleFromID(id int) domain.Role {
	if role, ok := roleByID[id]; ok {
		return role
	}
	return domain.RoleRequester
}

// RoleID maps a role back to its numeric id.
func RoleID(role domain.Role) int {
	if id, ok := idByRole[role]; ok {
		return id
	}
	return idByRole[domain.RoleRequester]
}
