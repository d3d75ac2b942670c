package domain

import "fmt"

// Role enumerates the fixed account roles.
type Role string

const (
	RoleStudent     Role = "Student"
	RoleFaculty     Role = "Faculty"
	RoleContributor Role = "Contributor"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleFaculty, RoleContributor}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleContributor:
		return true
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}
