// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents a registered account in the system.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string // empty for SSO-provisioned accounts
	Banned       bool
	Permissions  Permissions
	Created      time.Time
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Permissions  Permissions
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByLogin(ctx context.Context, usernameOrEmail string) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)
	Count(ctx context.Context) (int, error)
	LoginTaken(ctx context.Context, username, email string) (bool, error)
}
