// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/random"
	"github.com/wyatt-herkamp/nitro-share/internal/session"
)

var (
	// ErrInvalidCredentials indicates that the provided login or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrRegistrationClosed indicates that the deployment does not accept new accounts.
	ErrRegistrationClosed = errors.New("registration is closed")
	// ErrLoginTaken indicates that the username or email is already registered.
	ErrLoginTaken = errors.New("username or email already taken")
	// ErrSessionRequired indicates an operation reserved for session-authenticated callers.
	ErrSessionRequired = errors.New("session authentication required")
	// ErrTokenNotFound indicates that the token does not exist or belongs to someone else.
	ErrTokenNotFound = errors.New("token not found")
	// ErrPermissionDenied indicates that the caller lacks the permission for the operation.
	ErrPermissionDenied = errors.New("permission denied")
)

// apiTokenLength is the length of generated API token plaintexts.
const apiTokenLength = 32

// AuthService handles accounts, logins, and API tokens.
type AuthService struct {
	users    domain.UserRepository
	tokens   domain.TokenRepository
	sessions session.Store
	lifetime time.Duration

	allowRegistration bool
}

// NewAuthService creates a new authentication service. lifetime is the
// duration of sessions it creates.
func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, sessions session.Store, lifetime time.Duration, allowRegistration bool) *AuthService {
	return &AuthService{
		users:             users,
		tokens:            tokens,
		sessions:          sessions,
		lifetime:          lifetime,
		allowRegistration: allowRegistration,
	}
}

// Register creates a new account. The first account on a fresh deployment is
// granted the full admin permission set.
func (s *AuthService) Register(ctx context.Context, name, username, email, password string) (*domain.User, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationClosed
	}
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	taken, err := s.users.LoginTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	perms, err := s.permissionsForNewUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, domain.NewUser{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Permissions:  perms,
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Lost a race against a concurrent registration.
		return nil, ErrLoginTaken
	}
	return user, nil
}

// LoginTaken reports whether a username or email is already in use. Backs
// the pre-registration availability check.
func (s *AuthService) LoginTaken(ctx context.Context, username, email string) (bool, error) {
	return s.users.LoginTaken(ctx, username, email)
}

// Login authenticates by username or email and creates a session.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, *session.Session, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.Banned || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.CreateSession(ctx, user.ID, s.lifetime)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// LoginSSO signs in a user verified by the identity provider, provisioning
// an account on first sight. SSO accounts carry no password hash and can
// only sign in through the provider.
func (s *AuthService) LoginSSO(ctx context.Context, name, username, email string) (*domain.User, *session.Session, error) {
	user, err := s.users.GetByLogin(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		perms, err := s.permissionsForNewUser(ctx)
		if err != nil {
			return nil, nil, err
		}
		user, err = s.users.Create(ctx, domain.NewUser{
			Name:        name,
			Username:    username,
			Email:       email,
			Permissions: perms,
		})
		if err != nil {
			return nil, nil, err
		}
		if user == nil {
			return nil, nil, ErrLoginTaken
		}
	}
	if user.Banned {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.CreateSession(ctx, user.ID, s.lifetime)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Logout deletes the caller's session. Deleting an already-gone session is
// not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	_, err := s.sessions.DeleteSession(ctx, sessionID)
	return err
}

// CreateToken mints a new API token for the caller. Only session-authenticated
// callers may mint tokens; a token must not be able to create more tokens.
// The plaintext is returned exactly once and never stored.
func (s *AuthService) CreateToken(ctx context.Context, a *auth.Authentication, name string) (string, *domain.AuthToken, error) {
	if !a.BySession() {
		return "", nil, ErrSessionRequired
	}
	if !a.Permissions().User.CreateAuthToken {
		return "", nil, ErrPermissionDenied
	}

	var plaintext, hash string
	for {
		plaintext = random.Alphanumeric(apiTokenLength)
		hash = auth.HashToken(plaintext)
		exists, err := s.tokens.HashExists(ctx, hash)
		if err != nil {
			return "", nil, err
		}
		if !exists {
			break
		}
	}

	token, err := s.tokens.Create(ctx, a.UserID(), name, hash)
	if err != nil {
		return "", nil, err
	}
	return plaintext, token, nil
}

// ListTokens returns the caller's tokens, revoked ones included.
func (s *AuthService) ListTokens(ctx context.Context, a *auth.Authentication) ([]domain.AuthToken, error) {
	return s.tokens.ListByUser(ctx, a.UserID())
}

// RevokeToken revokes one of the caller's tokens. Tokens belonging to other
// users are reported as not found rather than forbidden.
func (s *AuthService) RevokeToken(ctx context.Context, a *auth.Authentication, id int64) error {
	token, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if token == nil || token.UserID != a.UserID() {
		return ErrTokenNotFound
	}
	return s.tokens.Revoke(ctx, id)
}

func (s *AuthService) permissionsForNewUser(ctx context.Context) (domain.Permissions, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return domain.Permissions{}, err
	}
	if n == 0 {
		return domain.AdminPermissions(), nil
	}
	return domain.DefaultPermissions(), nil
}
