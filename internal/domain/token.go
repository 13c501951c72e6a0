package domain

import (
	"context"
	"time"
)

// AuthToken is a long-lived API credential. The plaintext is generated once
// and never stored; only its hash is kept. Revocation is a soft flag so the
// row remains as an audit record.
type AuthToken struct {
	ID        int64
	TokenName string
	TokenHash string
	Revoked   bool
	UserID    int64
	Created   time.Time
}

// TokenRepository defines the port for API token persistence.
// Lookups return (nil, nil) when no row matches.
type TokenRepository interface {
	Create(ctx context.Context, userID int64, name, hash string) (*AuthToken, error)
	GetByID(ctx context.Context, id int64) (*AuthToken, error)
	// FindActiveByHash returns the token with the given hash joined with its
	// owning user, filtering revoked tokens.
	FindActiveByHash(ctx context.Context, hash string) (*AuthToken, *User, error)
	HashExists(ctx context.Context, hash string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]AuthToken, error)
	Revoke(ctx context.Context, id int64) error
}
