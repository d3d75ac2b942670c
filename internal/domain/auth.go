package domain

import "time"

// Identity is the authenticated caller resolved from a valid token.
type Identity struct {
	Username  string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// Is reports whether the identity carries the given role.
func (i *Identity) Is(role Role) bool {
	return i != nil && i.Role == role
}
