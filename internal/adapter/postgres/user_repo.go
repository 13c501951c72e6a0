package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

const userColumns = "id, name, username, email, COALESCE(password, ''), banned, permissions, created"

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Banned, &u.Permissions, &u.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by id.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// GetByLogin retrieves a user by username or email.
func (d *DB) GetByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1 OR email = $1", usernameOrEmail))
}

// Create inserts a new user. A duplicate username or email surfaces as
// (nil, nil) so the caller can report a conflict.
func (d *DB) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO users (name, username, email, password, permissions)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING `+userColumns,
		nu.Name, nu.Username, nu.Email, nu.PasswordHash, nu.Permissions)
	u, err := scanUser(row)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return nil, nil
	}
	return u, err
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// LoginTaken reports whether the username or email is already registered.
func (d *DB) LoginTaken(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2",
		username, email).Scan(&count)
	return count > 0, err
}
