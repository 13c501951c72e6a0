package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/wyatt-herkamp/nitro-share/internal/app"
	"github.com/wyatt-herkamp/nitro-share/internal/config"
	"github.com/wyatt-herkamp/nitro-share/internal/session"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Name, req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, app.ErrRegistrationClosed):
		writeError(w, http.StatusForbidden, err)
		return
	case errors.Is(err, app.ErrLoginTaken):
		writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}

// handleRegisterCheck lets a signup form ask about availability before
// submitting.
func (s *Server) handleRegisterCheck(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	email := r.URL.Query().Get("email")
	if username == "" && email == "" {
		writeError(w, http.StatusBadRequest, errors.New("username or email required"))
		return
	}

	taken, err := s.auth.LoginTaken(r.Context(), username, email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"taken": taken})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, sess, err := s.auth.Login(r.Context(), req.Login, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	a, err := s.resolver.Required(r.Context())
	if err == nil && a.BySession() {
		if err := s.auth.Logout(r.Context(), a.Session.SessionID); err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("internal error"))
			return
		}
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(a.User))
}

// handleSession reports the caller's session. The response is cacheable
// until the session itself expires.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if !a.BySession() {
		writeError(w, http.StatusBadRequest, app.ErrSessionRequired)
		return
	}
	writeJSONCached(w, r, a.Session, a.Session.Expires)
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("token name required"))
		return
	}

	plaintext, token, err := s.auth.CreateToken(r.Context(), a, req.Name)
	switch {
	case errors.Is(err, app.ErrSessionRequired):
		writeError(w, http.StatusForbidden, err)
		return
	case errors.Is(err, app.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	// The only response that ever carries the plaintext.
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      plaintext,
		"token_name": token.TokenName,
		"id":         token.ID,
	})
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	tokens, err := s.auth.ListTokens(r.Context(), a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	out := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, toTokenResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid token id"))
		return
	}

	err = s.auth.RevokeToken(r.Context(), a, id)
	if errors.Is(err, app.ErrTokenNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    sess.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.Expires,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// SSO holds the verified OIDC provider and the oauth2 client settings.
type SSO struct {
	Provider *oidc.Provider
	OAuth2   oauth2.Config
}

// NewSSO discovers the provider from the issuer URL.
func NewSSO(ctx context.Context, cfg config.OIDCConfig) (*SSO, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}
	return &SSO{
		Provider: provider,
		OAuth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeError(w, http.StatusNotFound, errors.New("sso disabled"))
		return
	}

	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.sso.OAuth2.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeError(w, http.StatusNotFound, errors.New("sso disabled"))
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		writeError(w, http.StatusBadRequest, errors.New("invalid state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.sso.OAuth2.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to exchange token"))
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("no id_token"))
		return
	}

	idToken, err := s.sso.Provider.Verifier(&oidc.Config{ClientID: s.sso.OAuth2.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to verify token"))
		return
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		Sub               string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to parse claims"))
		return
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Email
	}
	if username == "" {
		username = claims.Sub
	}

	_, sess, err := s.auth.LoginSSO(r.Context(), claims.Name, username, claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("login failed"))
		return
	}

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusFound)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
