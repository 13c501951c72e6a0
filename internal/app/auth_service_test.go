package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/adapter/memory"
	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/session"
)

func newTestAuthService(t *testing.T, allowRegistration bool) (*AuthService, *memory.DB, session.Store) {
	t.Helper()
	db := memory.New()
	store := session.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	svc := NewAuthService(db, memory.NewTokenRepo(db), store, time.Hour, allowRegistration)
	return svc, db, store
}

func TestRegister_FirstUserGetsAdmin(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Register first: %v", err)
	}
	if !first.Permissions.Admin {
		t.Fatalf("first user should be admin, got %+v", first.Permissions)
	}

	second, err := svc.Register(ctx, "Bob", "bob", "bob@example.com", "secret")
	if err != nil {
		t.Fatalf("Register second: %v", err)
	}
	if second.Permissions.Admin {
		t.Fatalf("second user should not be admin")
	}
	if !second.Permissions.Paste.Create {
		t.Fatalf("second user should have default permissions, got %+v", second.Permissions)
	}
}

func TestRegister_Closed(t *testing.T) {
	svc, _, _ := newTestAuthService(t, false)

	_, err := svc.Register(context.Background(), "Alice", "alice", "alice@example.com", "secret")
	if !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("expected ErrRegistrationClosed, got %v", err)
	}
}

func TestRegister_LoginTaken(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "Other", "alice", "other@example.com", "secret")
	if !errors.Is(err, ErrLoginTaken) {
		t.Fatalf("expected ErrLoginTaken for duplicate username, got %v", err)
	}
	_, err = svc.Register(ctx, "Other", "other", "alice@example.com", "secret")
	if !errors.Is(err, ErrLoginTaken) {
		t.Fatalf("expected ErrLoginTaken for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, db, _ := newTestAuthService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// By username and by email.
	for _, login := range []string{"alice", "alice@example.com"} {
		got, sess, err := svc.Login(ctx, login, "secret")
		if err != nil {
			t.Fatalf("Login(%q): %v", login, err)
		}
		if got.ID != user.ID {
			t.Fatalf("Login(%q): got user %d, want %d", login, got.ID, user.ID)
		}
		if sess == nil || len(sess.SessionID) != 7 {
			t.Fatalf("Login(%q): bad session %+v", login, sess)
		}
	}

	if _, _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown login: expected ErrInvalidCredentials, got %v", err)
	}

	db.SetBanned(user.ID, true)
	if _, _, err := svc.Login(ctx, "alice", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("banned user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginSSO_ProvisionsAccount(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)
	ctx := context.Background()

	user, sess, err := svc.LoginSSO(ctx, "Carol", "carol", "carol@example.com")
	if err != nil {
		t.Fatalf("LoginSSO: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatalf("SSO account should have no password hash")
	}
	if sess == nil {
		t.Fatalf("expected session")
	}
	if !user.Permissions.Admin {
		t.Fatalf("first account via SSO should still be admin")
	}

	// A second SSO login reuses the account.
	again, _, err := svc.LoginSSO(ctx, "Carol", "carol", "carol@example.com")
	if err != nil {
		t.Fatalf("LoginSSO again: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same account, got %d and %d", user.ID, again.ID)
	}

	// Password login is impossible for SSO accounts.
	if _, _, err := svc.Login(ctx, "carol", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("password login on SSO account: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, store := newTestAuthService(t, true)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, sess, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, sess.SessionID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	got, err := store.GetSession(ctx, sess.SessionID)
	if err != nil || got != nil {
		t.Fatalf("session should be gone, got %v, %+v", err, got)
	}
	if err := svc.Logout(ctx, sess.SessionID); err != nil {
		t.Fatalf("second Logout should be a no-op, got %v", err)
	}
}

func sessionAuth(user *domain.User, sess *session.Session) *auth.Authentication {
	return &auth.Authentication{User: *user, Session: sess}
}

func TestCreateToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, sess, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	plaintext, token, err := svc.CreateToken(ctx, sessionAuth(user, sess), "ci")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if len(plaintext) != apiTokenLength {
		t.Fatalf("plaintext length = %d, want %d", len(plaintext), apiTokenLength)
	}
	if token.TokenHash != auth.HashToken(plaintext) {
		t.Fatalf("stored hash does not match plaintext")
	}
	if token.TokenHash == plaintext {
		t.Fatalf("plaintext must never be stored")
	}

	// A token-authenticated caller cannot mint more tokens.
	tokenCaller := &auth.Authentication{User: *user, Token: token}
	if _, _, err := svc.CreateToken(ctx, tokenCaller, "escalate"); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

func TestRevokeToken_OtherUsersTokenHidden(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Register alice: %v", err)
	}
	bob, err := svc.Register(ctx, "Bob", "bob", "bob@example.com", "secret")
	if err != nil {
		t.Fatalf("Register bob: %v", err)
	}

	_, aliceSess, _ := svc.Login(ctx, "alice", "secret")
	_, bobSess, _ := svc.Login(ctx, "bob", "secret")

	_, token, err := svc.CreateToken(ctx, sessionAuth(alice, aliceSess), "ci")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if err := svc.RevokeToken(ctx, sessionAuth(bob, bobSess), token.ID); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound for foreign token, got %v", err)
	}
	if err := svc.RevokeToken(ctx, sessionAuth(alice, aliceSess), token.ID); err != nil {
		t.Fatalf("owner revoke: %v", err)
	}

	list, err := svc.ListTokens(ctx, sessionAuth(alice, aliceSess))
	if err != nil || len(list) != 1 || !list[0].Revoked {
		t.Fatalf("ListTokens after revoke: %v, %+v", err, list)
	}
}
