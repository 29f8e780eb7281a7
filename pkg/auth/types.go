package auth

import (
	"context"
	"time"
)

// Role represents an account role. The analytics surface only authorizes
// admins; no other roles are defined.
type Role string

const (
	RoleAdmin Role = "admin"
)

// Identity is a resolved admin principal. Accounts are provisioned
// externally; this package only reads them and touches the last-login
// timestamp.
type Identity struct {
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserDirectory resolves principals by username. FindByUsername returns
// (nil, nil) when no account matches; errors are reserved for lookup
// failures.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*Identity, error)
	TouchLastLogin(ctx context.Context, username string) error
}
