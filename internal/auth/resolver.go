package auth

import (
	"context"
	"fmt"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/session"
)

// Resolver performs the store and database lookups that turn a RawCredential
// into an Authentication. Handlers invoke it lazily, at most once per
// request; requests whose handlers never ask for identity cost nothing
// beyond header parsing.
type Resolver struct {
	sessions  session.Store
	users     domain.UserRepository
	tokens    domain.TokenRepository
	anonymous domain.Permissions
}

// NewResolver creates a resolver over the given stores. anonymous is the
// permission set handed to Optional callers when no identity resolves.
func NewResolver(sessions session.Store, users domain.UserRepository, tokens domain.TokenRepository, anonymous domain.Permissions) *Resolver {
	return &Resolver{
		sessions:  sessions,
		users:     users,
		tokens:    tokens,
		anonymous: anonymous,
	}
}

// Required resolves the credential attached to ctx and fails with
// ErrUnauthenticated when there is none or it does not resolve. Any other
// error is a storage failure.
func (r *Resolver) Required(ctx context.Context) (*Authentication, error) {
	return r.resolve(ctx, RawCredentialFromContext(ctx))
}

// Optional resolves the credential attached to ctx; a missing or
// non-resolving credential yields an anonymous identity instead of an error.
// Only storage failures are reported.
func (r *Resolver) Optional(ctx context.Context) (Optional, error) {
	a, err := r.resolve(ctx, RawCredentialFromContext(ctx))
	if err == ErrUnauthenticated {
		return Optional{Anonymous: r.anonymous}, nil
	}
	if err != nil {
		return Optional{}, err
	}
	return Optional{Auth: a, Anonymous: r.anonymous}, nil
}

func (r *Resolver) resolve(ctx context.Context, raw *RawCredential) (*Authentication, error) {
	if raw == nil {
		return nil, ErrUnauthenticated
	}
	switch raw.Kind {
	case SessionCookie:
		return r.resolveSession(ctx, raw.Value)
	case BearerToken:
		return r.resolveToken(ctx, raw.Value)
	default:
		return nil, fmt.Errorf("unknown credential kind %d", raw.Kind)
	}
}

func (r *Resolver) resolveSession(ctx context.Context, sessionID string) (*Authentication, error) {
	sess, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// The store does not filter by time; an expired session is treated
	// exactly like a missing one here.
	if sess == nil || sess.Expired() {
		return nil, ErrUnauthenticated
	}
	user, err := r.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Banned {
		return nil, ErrUnauthenticated
	}
	return &Authentication{User: *user, Session: sess}, nil
}

func (r *Resolver) resolveToken(ctx context.Context, plaintext string) (*Authentication, error) {
	token, user, err := r.tokens.FindActiveByHash(ctx, HashToken(plaintext))
	if err != nil {
		return nil, err
	}
	if token == nil || user == nil || user.Banned {
		return nil, ErrUnauthenticated
	}
	return &Authentication{User: *user, Token: token}, nil
}
