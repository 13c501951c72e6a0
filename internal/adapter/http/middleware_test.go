package adapthttp

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/config"
)

func extractionServer(allowInHeader bool) *Server {
	return &Server{session: config.SessionConfig{
		CookieName:    "session",
		AllowInHeader: allowInHeader,
	}}
}

func TestCredentialMiddleware_Extraction(t *testing.T) {
	cases := []struct {
		name          string
		allowInHeader bool
		header        string
		cookie        string
		wantStatus    int
		wantKind      auth.CredentialKind
		wantValue     string
		wantNone      bool
	}{
		{
			name:       "bearer token",
			header:     "Bearer abc123",
			wantStatus: http.StatusOK,
			wantKind:   auth.BearerToken,
			wantValue:  "abc123",
		},
		{
			name:          "session scheme in header",
			allowInHeader: true,
			header:        "session xyz789",
			wantStatus:    http.StatusOK,
			wantKind:      auth.SessionCookie,
			wantValue:     "xyz789",
		},
		{
			name:       "session scheme disabled",
			header:     "session xyz789",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown scheme",
			header:     "Bogus x",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "header without space",
			header:     "Bearerabc123",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "cookie",
			cookie:     "xyz",
			wantStatus: http.StatusOK,
			wantKind:   auth.SessionCookie,
			wantValue:  "xyz",
		},
		{
			name:       "no credential",
			wantStatus: http.StatusOK,
			wantNone:   true,
		},
		{
			// Header wins over cookie; the cookie must not be consulted.
			name:       "header beats cookie",
			header:     "Bearer tok",
			cookie:     "sess",
			wantStatus: http.StatusOK,
			wantKind:   auth.BearerToken,
			wantValue:  "tok",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *auth.RawCredential
			invoked := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				invoked = true
				got = auth.RawCredentialFromContext(r.Context())
			})

			s := extractionServer(tc.allowInHeader)
			req := httptest.NewRequest(http.MethodGet, "/api/paste/abc", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			s.credentialMiddleware(next).ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				if invoked {
					t.Fatalf("next handler must not run on a rejected header")
				}
				return
			}
			if !invoked {
				t.Fatalf("next handler not invoked")
			}
			if tc.wantNone {
				if got != nil {
					t.Fatalf("expected no credential, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected credential, got none")
			}
			if got.Kind != tc.wantKind || got.Value != tc.wantValue {
				t.Fatalf("credential = %+v, want kind %d value %q", got, tc.wantKind, tc.wantValue)
			}
		})
	}
}

func TestCredentialMiddleware_UnknownSchemeNamed(t *testing.T) {
	s := extractionServer(false)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bogus value")
	w := httptest.NewRecorder()
	s.credentialMiddleware(next).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Bogus") {
		t.Fatalf("error should name the rejected scheme, got %s", w.Body.String())
	}
}

func TestCredentialMiddleware_SkipsPreflight(t *testing.T) {
	s := extractionServer(false)
	invoked := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { invoked = true })

	// A malformed header that would 400 on any other method.
	req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	req.Header.Set("Authorization", "garbage")
	w := httptest.NewRecorder()
	s.credentialMiddleware(next).ServeHTTP(w, req)

	if !invoked {
		t.Fatalf("preflight should pass through untouched")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	s := &Server{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})
	handler := s.loggingMiddleware(next)

	var buf bytes.Buffer
	originalOutput := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(originalOutput)

	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTeapot)
	}
	logOutput := buf.String()
	if !strings.Contains(logOutput, "GET") || !strings.Contains(logOutput, "/test-path") || !strings.Contains(logOutput, "418") {
		t.Fatalf("log output missing expected fields: %s", logOutput)
	}
}
