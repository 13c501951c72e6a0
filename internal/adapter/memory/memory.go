// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// DB implements in-memory storage for all repositories.
type DB struct {
	mu     sync.Mutex
	users  []domain.User
	tokens []domain.AuthToken
	pastes []domain.Paste
	images []domain.Image

	userIDCounter  int64
	tokenIDCounter int64
	pasteIDCounter int64
	imageIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.TokenRepository = (*TokenRepo)(nil)
var _ domain.PasteRepository = (*PasteRepo)(nil)
var _ domain.ImageRepository = (*ImageRepo)(nil)

// --- UserRepository ---

// GetByID retrieves a user by id.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].ID == id {
			u := db.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// GetByLogin retrieves a user by username or email.
func (db *DB) GetByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Username == usernameOrEmail || db.users[i].Email == usernameOrEmail {
			u := db.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// Create inserts a new user. A duplicate username or email yields (nil, nil),
// matching the unique constraint behavior of the SQL adapter.
func (db *DB) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Username == nu.Username || db.users[i].Email == nu.Email {
			return nil, nil
		}
	}

	db.userIDCounter++
	u := domain.User{
		ID:           db.userIDCounter,
		Name:         nu.Name,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Permissions:  nu.Permissions,
		Created:      time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return &u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// LoginTaken reports whether the username or email is already registered.
func (db *DB) LoginTaken(ctx context.Context, username, email string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Username == username || db.users[i].Email == email {
			return true, nil
		}
	}
	return false, nil
}

// SetBanned flips a user's banned flag. Test helper.
func (db *DB) SetBanned(id int64, banned bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].ID == id {
			db.users[i].Banned = banned
			return
		}
	}
}
