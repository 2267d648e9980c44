package auth

import (
	"errors"
	"fmt"
)

// ErrUnknownRole is returned when a role id is outside the known set
var ErrUnknownRole = errors.New("unknown role")

// Role is the caller's account role
type Role int

const (
	RoleRegular Role = 1 // Can only read their own statistics
	RoleAdmin   Role = 2 // Can read statistics for any subject
)

// ParseRoleID converts the integer role id carried in tokens into a Role
func ParseRoleID(id int) (Role, error) {
	switch Role(id) {
	case RoleRegular, RoleAdmin:
		return Role(id), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownRole, id)
	}
}

// ID returns the integer role id
func (r Role) ID() int {
	return int(r)
}

// IsAdmin reports whether the role is the administrator role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "regular"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// AuthContext holds authenticated caller information
type AuthContext struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the caller holds the administrator role
func (ac *AuthContext) IsAdmin() bool {
	return ac != nil && ac.Role.IsAdmin()
}
