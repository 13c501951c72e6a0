package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/zeebo/blake3"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// etagFor derives a strong validator from the response body.
func etagFor(body []byte) string {
	sum := blake3.Sum256(body)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:16]))
}

// writeCached serves body with an ETag validator and, when expires is
// non-zero, an Expires header. Matching If-None-Match requests get 304 with
// no body.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, body []byte, expires time.Time) {
	etag := etagFor(body)
	w.Header().Set("ETag", etag)
	if !expires.IsZero() {
		w.Header().Set("Expires", expires.UTC().Format(http.TimeFormat))
	}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeJSONCached is writeCached for JSON payloads.
func writeJSONCached(w http.ResponseWriter, r *http.Request, v any, expires time.Time) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeCached(w, r, "application/json; charset=utf-8", body, expires)
}

// Response shapes. Domain entities carry fields that must never leave the
// server, the password hash above all, so handlers map to these instead of
// encoding entities directly.

type userResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Permissions domain.Permissions `json:"permissions"`
	Created     time.Time          `json:"created"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Email:       u.Email,
		Permissions: u.Permissions,
		Created:     u.Created,
	}
}

type tokenResponse struct {
	ID        int64     `json:"id"`
	TokenName string    `json:"token_name"`
	Revoked   bool      `json:"revoked"`
	Created   time.Time `json:"created"`
}

func toTokenResponse(t domain.AuthToken) tokenResponse {
	return tokenResponse{ID: t.ID, TokenName: t.TokenName, Revoked: t.Revoked, Created: t.Created}
}

type pasteResponse struct {
	Slug        string            `json:"slug"`
	UserID      int64             `json:"user_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	ContentType string            `json:"content_type"`
	Content     string            `json:"content"`
	Visibility  domain.Visibility `json:"visibility"`
	LastUpdated time.Time         `json:"last_updated"`
	Created     time.Time         `json:"created"`
}

func toPasteResponse(p domain.Paste) pasteResponse {
	return pasteResponse{
		Slug:        p.Slug,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		ContentType: p.ContentType,
		Content:     p.Content,
		Visibility:  p.Visibility,
		LastUpdated: p.LastUpdated,
		Created:     p.Created,
	}
}

type imageResponse struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Name        string            `json:"name"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Visibility  domain.Visibility `json:"visibility"`
	Created     time.Time         `json:"created"`
}

func toImageResponse(img domain.Image) imageResponse {
	return imageResponse{
		ID:          img.ID,
		UserID:      img.UserID,
		Name:        img.Name,
		ContentType: img.ContentType,
		Size:        img.Size,
		Visibility:  img.Visibility,
		Created:     img.Created,
	}
}
