// Package session implements server-side login sessions: an immutable record
// keyed by a short opaque id, behind a store contract with two interchangeable
// backends. The volatile backend keeps sessions in process memory and loses
// them on restart; the persistent backend keeps them in an embedded bbolt
// database. Sessions are disposable, bounded-lifetime state in both cases:
// recovery from a corrupted persistent store is deleting the file and
// restarting, not repair.
package session

import (
	"context"
	"fmt"
	"time"
)

// Session is a server-issued proof of login. Records are immutable: created
// once on login, removed on logout, never updated in place.
type Session struct {
	UserID    int64     `json:"user_id"`
	SessionID string    `json:"session_id"`
	Created   time.Time `json:"created"`
	Expires   time.Time `json:"expires"`
}

// Expired reports whether the session's expiry has passed. Stores never
// filter by expiry; callers decide validity with this.
func (s *Session) Expired() bool {
	return time.Now().After(s.Expires)
}

func newSession(userID int64, sessionID string, lifetime time.Duration) Session {
	now := time.Now().UTC()
	return Session{
		UserID:    userID,
		SessionID: sessionID,
		Created:   now,
		Expires:   now.Add(lifetime),
	}
}

// Store is the shared contract both backends satisfy, so callers stay
// backend-agnostic. The volatile backend never returns an error; the
// persistent backend surfaces failures as *StorageError.
type Store interface {
	// CreateSession issues a session for the user. The id is generated and
	// inserted inside one critical section, so concurrent creations can
	// never collide.
	CreateSession(ctx context.Context, userID int64, lifetime time.Duration) (*Session, error)
	// GetSession returns the session or (nil, nil) when absent. Expired
	// sessions are still returned; expiry is the caller's concern.
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	// DeleteSession removes the session and returns the removed record, or
	// (nil, nil) when absent, so logout is idempotent.
	DeleteSession(ctx context.Context, sessionID string) (*Session, error)
	// PurgeExpired removes every session past its expiry and reports how
	// many were removed.
	PurgeExpired(ctx context.Context) (int, error)
	Close() error
}

// StorageError wraps a persistent-backend failure: I/O, corruption or a
// bbolt-internal error. It is fatal for the triggering request but not for
// the process. If it persists, delete the session database and restart.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
