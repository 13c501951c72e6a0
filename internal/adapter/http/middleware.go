package adapthttp

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/auth"
)

// credentialMiddleware extracts request credentials without verifying them.
// It never talks to the session store or the database; handlers that need an
// identity resolve the attached credential lazily, so requests to routes that
// ignore identity cost no lookup at all.
//
// Precedence: the Authorization header wins over the session cookie. A
// present but malformed header is a client error, not an anonymous request.
func (s *Server) credentialMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS preflights carry no credentials worth parsing.
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if header := r.Header.Get("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) < 2 {
				writeError(w, http.StatusBadRequest, errors.New("malformed Authorization header"))
				return
			}
			scheme, value := parts[0], parts[1]

			var raw auth.RawCredential
			switch {
			case scheme == "Bearer":
				raw = auth.RawCredential{Kind: auth.BearerToken, Value: value}
			case s.session.AllowInHeader && scheme == s.session.CookieName:
				raw = auth.RawCredential{Kind: auth.SessionCookie, Value: value}
			default:
				writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported authorization scheme %q", scheme))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithRawCredential(r.Context(), &raw)))
			return
		}

		if cookie, err := r.Cookie(s.session.CookieName); err == nil && cookie.Value != "" {
			raw := auth.RawCredential{Kind: auth.SessionCookie, Value: cookie.Value}
			next.ServeHTTP(w, r.WithContext(auth.WithRawCredential(r.Context(), &raw)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs method, path, status, and duration per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// requireAuth resolves the request's credential, writing the error response
// itself when resolution fails. The bool reports whether to continue.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (*auth.Authentication, bool) {
	a, err := s.resolver.Required(r.Context())
	if errors.Is(err, auth.ErrUnauthenticated) {
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthenticated)
		return nil, false
	}
	if err != nil {
		log.Printf("auth resolution: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return nil, false
	}
	return a, true
}

// optionalAuth resolves the request's credential, falling back to the
// anonymous identity. Only storage failures end the request.
func (s *Server) optionalAuth(w http.ResponseWriter, r *http.Request) (auth.Optional, bool) {
	viewer, err := s.resolver.Optional(r.Context())
	if err != nil {
		log.Printf("auth resolution: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return auth.Optional{}, false
	}
	return viewer, true
}
