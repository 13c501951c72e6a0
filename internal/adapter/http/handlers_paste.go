package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/app"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// publicContentTTL caps how long shared content responses may be cached.
const publicContentTTL = 5 * time.Minute

func (s *Server) handleCreatePaste(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Tags        []string          `json:"tags"`
		ContentType string            `json:"content_type"`
		Content     string            `json:"content"`
		Visibility  domain.Visibility `json:"visibility"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := s.pastes.Create(r.Context(), a, domain.NewPaste{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		ContentType: req.ContentType,
		Content:     req.Content,
		Visibility:  req.Visibility,
	})
	switch {
	case errors.Is(err, app.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err)
		return
	case errors.Is(err, app.ErrEmptyContent), errors.Is(err, app.ErrInvalidVisibility):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, toPasteResponse(*p))
}

func (s *Server) handleGetPaste(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.optionalAuth(w, r)
	if !ok {
		return
	}

	p, err := s.pastes.Get(r.Context(), viewer, r.PathValue("slug"))
	if errors.Is(err, app.ErrPasteNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSONCached(w, r, toPasteResponse(*p), contentExpiry(p.Visibility))
}

// handleGetPasteRaw serves the paste body alone under its own content type.
func (s *Server) handleGetPasteRaw(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.optionalAuth(w, r)
	if !ok {
		return
	}

	p, err := s.pastes.Get(r.Context(), viewer, r.PathValue("slug"))
	if errors.Is(err, app.ErrPasteNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeCached(w, r, p.ContentType, []byte(p.Content), contentExpiry(p.Visibility))
}

func (s *Server) handleListPastes(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	pastes, err := s.pastes.ListMine(r.Context(), a, intQuery(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	out := make([]pasteResponse, 0, len(pastes))
	for _, p := range pastes {
		out = append(out, toPasteResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePaste(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	err := s.pastes.Delete(r.Context(), a, r.PathValue("slug"))
	if errors.Is(err, app.ErrPasteNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// contentExpiry returns an Expires value for shared content. Private content
// gets none, keeping it out of shared caches.
func contentExpiry(v domain.Visibility) time.Time {
	if v.RequiresAuth() {
		return time.Time{}
	}
	return time.Now().Add(publicContentTTL)
}
