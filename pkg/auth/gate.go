package auth

import (
	"context"

	"github.com/epiwatch/epiwatch/pkg/apierr"
	"github.com/epiwatch/epiwatch/pkg/observability"
)

// Gate authorizes tokens against the user directory. Every analytics
// operation passes through Authorize before any store access happens.
type Gate struct {
	codec  *TokenCodec
	users  UserDirectory
	logger *observability.Logger
}

// NewGate creates an access gate. A nil logger falls back to a no-op
// logger.
func NewGate(codec *TokenCodec, users UserDirectory, logger *observability.Logger) *Gate {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Gate{
		codec:  codec,
		users:  users,
		logger: logger,
	}
}

// Authorize resolves a token to an admin identity. The checks run in a
// fixed order and the first failure is terminal:
//
//	verify signature and expiry  -> Unauthorized
//	resolve subject to identity  -> Unauthorized (same as a bad token)
//	identity must be active      -> Forbidden
//	identity must be admin       -> Forbidden
//
// On success the identity's last-login timestamp is updated best-effort.
func (g *Gate) Authorize(ctx context.Context, token string) (*Identity, error) {
	claims, err := g.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	identity, err := g.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, apierr.Store(err)
	}
	if identity == nil {
		return nil, apierr.Unauthorized("user not found")
	}

	if !identity.IsActive {
		return nil, apierr.Forbidden("account is disabled")
	}
	if !identity.IsAdmin() {
		return nil, apierr.Forbidden("admin access required")
	}

	if err := g.users.TouchLastLogin(ctx, identity.Username); err != nil {
		g.logger.WithError(err).
			WithField("username", identity.Username).
			Warn("failed to record last login")
	}

	return identity, nil
}
