package repositories

import (
	"context"
	"time"
)

// RefreshSessionStore keeps refresh sessions keyed by the hash of the opaque token
type RefreshSessionStore interface {
	Save(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error

	// Lookup returns the session's user id, or domain.ErrUnauthorized when the
	// token is unknown, revoked or expired
	Lookup(ctx context.Context, tokenHash string) (string, error)

	// Revoke deletes a session. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, tokenHash string) error
}
