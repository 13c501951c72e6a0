// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"github.com/wyatt-herkamp/nitro-share/internal/app"
	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/config"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	pastes   *app.PasteService
	images   *app.ImageService
	resolver *auth.Resolver

	session config.SessionConfig
	site    config.SiteConfig
	sso     *SSO
}

// New creates a Server wired to the given application services. sso may be
// nil when the deployment has no identity provider configured.
func New(as *app.AuthService, ps *app.PasteService, is *app.ImageService, resolver *auth.Resolver, session config.SessionConfig, site config.SiteConfig, sso *SSO) *Server {
	return &Server{
		auth:     as,
		pastes:   ps,
		images:   is,
		resolver: resolver,
		session:  session,
		site:     site,
		sso:      sso,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("GET /config", s.handleConfig)

	api.HandleFunc("POST /register", s.handleRegister)
	api.HandleFunc("GET /register/check", s.handleRegisterCheck)
	api.HandleFunc("POST /login", s.handleLogin)
	api.HandleFunc("POST /logout", s.handleLogout)
	api.HandleFunc("GET /me", s.handleMe)
	api.HandleFunc("GET /session", s.handleSession)

	api.HandleFunc("POST /tokens", s.handleCreateToken)
	api.HandleFunc("GET /tokens", s.handleListTokens)
	api.HandleFunc("DELETE /tokens/{id}", s.handleRevokeToken)

	api.HandleFunc("POST /pastes", s.handleCreatePaste)
	api.HandleFunc("GET /pastes", s.handleListPastes)
	api.HandleFunc("GET /paste/{slug}", s.handleGetPaste)
	api.HandleFunc("GET /paste/{slug}/raw", s.handleGetPasteRaw)
	api.HandleFunc("DELETE /paste/{slug}", s.handleDeletePaste)

	api.HandleFunc("POST /images", s.handleUploadImage)
	api.HandleFunc("GET /images", s.handleListImages)
	api.HandleFunc("GET /image/{id}", s.handleGetImage)
	api.HandleFunc("DELETE /image/{id}", s.handleDeleteImage)

	api.HandleFunc("GET /sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /sso/callback", s.handleSSOCallback)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(s.credentialMiddleware(root))
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"site_name":          s.site.Name,
		"allow_registration": s.site.AllowRegistration,
		"sso_enabled":        s.sso != nil,
	})
}
