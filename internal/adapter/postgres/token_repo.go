package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

const tokenColumns = "id, token_name, token_hash, revoked, user_id, created"

// TokenRepo implements domain.TokenRepository on top of DB.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo creates a TokenRepo backed by the given DB.
func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func scanToken(row *sql.Row) (*domain.AuthToken, error) {
	var t domain.AuthToken
	err := row.Scan(&t.ID, &t.TokenName, &t.TokenHash, &t.Revoked, &t.UserID, &t.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new token row holding only the hash.
func (r *TokenRepo) Create(ctx context.Context, userID int64, name, hash string) (*domain.AuthToken, error) {
	return scanToken(r.db.sql.QueryRowContext(ctx,
		`INSERT INTO auth_tokens (token_name, token_hash, user_id)
		 VALUES ($1, $2, $3) RETURNING `+tokenColumns,
		name, hash, userID))
}

// GetByID retrieves a token by id, revoked or not.
func (r *TokenRepo) GetByID(ctx context.Context, id int64) (*domain.AuthToken, error) {
	return scanToken(r.db.sql.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM auth_tokens WHERE id = $1", id))
}

// FindActiveByHash returns the unrevoked token with the given hash joined
// with its owning user, or (nil, nil, nil) on miss.
func (r *TokenRepo) FindActiveByHash(ctx context.Context, hash string) (*domain.AuthToken, *domain.User, error) {
	var t domain.AuthToken
	var u domain.User
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT t.id, t.token_name, t.token_hash, t.revoked, t.user_id, t.created,
		        u.id, u.name, u.username, u.email, COALESCE(u.password, ''), u.banned, u.permissions, u.created
		 FROM auth_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.token_hash = $1 AND t.revoked = FALSE`,
		hash,
	).Scan(
		&t.ID, &t.TokenName, &t.TokenHash, &t.Revoked, &t.UserID, &t.Created,
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Banned, &u.Permissions, &u.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &t, &u, nil
}

// HashExists reports whether any token row carries the hash.
func (r *TokenRepo) HashExists(ctx context.Context, hash string) (bool, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM auth_tokens WHERE token_hash = $1", hash).Scan(&count)
	return count > 0, err
}

// ListByUser returns all of a user's tokens, newest first.
func (r *TokenRepo) ListByUser(ctx context.Context, userID int64) ([]domain.AuthToken, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+tokenColumns+" FROM auth_tokens WHERE user_id = $1 ORDER BY created DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.AuthToken
	for rows.Next() {
		var t domain.AuthToken
		if err := rows.Scan(&t.ID, &t.TokenName, &t.TokenHash, &t.Revoked, &t.UserID, &t.Created); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Revoke soft-revokes a token, keeping the row as an audit record.
func (r *TokenRepo) Revoke(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "UPDATE auth_tokens SET revoked = TRUE WHERE id = $1", id)
	return err
}
