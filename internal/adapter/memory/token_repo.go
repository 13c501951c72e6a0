package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// TokenRepo implements domain.TokenRepository in memory.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo creates a TokenRepo backed by the given DB.
func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Create inserts a new token row holding only the hash.
func (r *TokenRepo) Create(ctx context.Context, userID int64, name, hash string) (*domain.AuthToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tokenIDCounter++
	t := domain.AuthToken{
		ID:        r.db.tokenIDCounter,
		TokenName: name,
		TokenHash: hash,
		UserID:    userID,
		Created:   time.Now().UTC(),
	}
	r.db.tokens = append(r.db.tokens, t)
	return &t, nil
}

// GetByID retrieves a token by id, revoked or not.
func (r *TokenRepo) GetByID(ctx context.Context, id int64) (*domain.AuthToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.tokens {
		if r.db.tokens[i].ID == id {
			t := r.db.tokens[i]
			return &t, nil
		}
	}
	return nil, nil
}

// FindActiveByHash returns the unrevoked token with the given hash along
// with its owning user.
func (r *TokenRepo) FindActiveByHash(ctx context.Context, hash string) (*domain.AuthToken, *domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.tokens {
		if r.db.tokens[i].TokenHash != hash || r.db.tokens[i].Revoked {
			continue
		}
		t := r.db.tokens[i]
		for j := range r.db.users {
			if r.db.users[j].ID == t.UserID {
				u := r.db.users[j]
				return &t, &u, nil
			}
		}
		return nil, nil, nil
	}
	return nil, nil, nil
}

// HashExists reports whether any token row carries the hash.
func (r *TokenRepo) HashExists(ctx context.Context, hash string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.tokens {
		if r.db.tokens[i].TokenHash == hash {
			return true, nil
		}
	}
	return false, nil
}

// ListByUser returns all of a user's tokens, newest first.
func (r *TokenRepo) ListByUser(ctx context.Context, userID int64) ([]domain.AuthToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.AuthToken
	for i := range r.db.tokens {
		if r.db.tokens[i].UserID == userID {
			out = append(out, r.db.tokens[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

// Revoke soft-revokes a token, keeping the record around.
func (r *TokenRepo) Revoke(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.tokens {
		if r.db.tokens[i].ID == id {
			r.db.tokens[i].Revoked = true
			return nil
		}
	}
	return nil
}
