// Package users provides the SQL-backed user directory consumed by the
// access gate.
package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/epiwatch/epiwatch/pkg/auth"
)

// Directory reads admin accounts from the users table. Accounts are
// provisioned externally; the directory never creates or deletes them.
type Directory struct {
	db *sql.DB
}

// NewDirectory creates a directory backed by db.
func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

// FindByUsername resolves an account by exact username. Returns (nil, nil)
// when no account matches.
func (d *Directory) FindByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	query := `
		SELECT username, email, role, is_active, created_at, last_login
		FROM users
		WHERE username = $1
	`

	var (
		identity  auth.Identity
		role      string
		lastLogin sql.NullTime
	)
	err := d.db.QueryRowContext(ctx, query, username).Scan(
		&identity.Username,
		&identity.Email,
		&role,
		&identity.IsActive,
		&identity.CreatedAt,
		&lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	identity.Role = auth.Role(role)
	if lastLogin.Valid {
		identity.LastLoginAt = &lastLogin.Time
	}
	return &identity, nil
}

// TouchLastLogin records the current time as the user's last successful
// authentication. Concurrent touches for the same user are commutative, so
// no locking is needed.
func (d *Directory) TouchLastLogin(ctx context.Context, username string) error {
	query := `UPDATE users SET last_login = NOW() WHERE username = $1`

	if _, err := d.db.ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("failed to update last login for %q: %w", username, err)
	}
	return nil
}
