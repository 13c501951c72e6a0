// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// Session backend names accepted in NITRO_SESSION_BACKEND.
const (
	SessionBackendMemory = "memory"
	SessionBackendBolt   = "bolt"
)

// SessionConfig controls the session store and how credentials reach it.
type SessionConfig struct {
	Backend  string // memory | bolt
	BoltPath string
	// CookieName is both the cookie the middleware reads and the header
	// scheme accepted when AllowInHeader is set.
	CookieName    string
	AllowInHeader bool
	Lifetime      time.Duration
	SweepInterval time.Duration
}

// SiteConfig holds deployment-wide rules.
type SiteConfig struct {
	Name              string
	AllowRegistration bool
	// Anonymous is the permission set unauthenticated requests operate
	// under.
	Anonymous domain.Permissions
}

// OIDCConfig holds the optional SSO provider settings. SSO is enabled only
// when Issuer is set.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO login should be offered.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != ""
}

// Config is the full server configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	ImageDir    string
	Session     SessionConfig
	Site        SiteConfig
	OIDC        OIDCConfig
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:        env("NITRO_ADDR", ":5312"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ImageDir:    env("NITRO_IMAGE_DIR", "images"),
		Session: SessionConfig{
			Backend:       env("NITRO_SESSION_BACKEND", SessionBackendMemory),
			BoltPath:      env("NITRO_SESSION_DB", "sessions.db"),
			CookieName:    env("NITRO_SESSION_COOKIE", "session"),
			AllowInHeader: envBool("NITRO_SESSION_IN_HEADER", true),
			Lifetime:      24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Site: SiteConfig{
			Name:              env("NITRO_SITE_NAME", "Nitro Share"),
			AllowRegistration: envBool("NITRO_ALLOW_REGISTRATION", true),
			Anonymous:         domain.AnonymousPermissions(),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("NITRO_OIDC_ISSUER"),
			ClientID:     os.Getenv("NITRO_OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("NITRO_OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("NITRO_OIDC_REDIRECT_URL"),
		},
	}

	if v := os.Getenv("NITRO_SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("NITRO_SESSION_LIFETIME: %w", err)
		}
		cfg.Session.Lifetime = d
	}
	if v := os.Getenv("NITRO_SESSION_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("NITRO_SESSION_SWEEP_INTERVAL: %w", err)
		}
		cfg.Session.SweepInterval = d
	}

	switch cfg.Session.Backend {
	case SessionBackendMemory, SessionBackendBolt:
	default:
		return Config{}, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
	if cfg.Session.Lifetime <= 0 {
		return Config{}, fmt.Errorf("session lifetime must be positive, got %v", cfg.Session.Lifetime)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "":
		return fallback
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
