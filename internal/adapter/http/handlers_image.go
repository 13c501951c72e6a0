package adapthttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wyatt-herkamp/nitro-share/internal/app"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// maxImageUpload bounds the in-memory part of multipart parsing.
const maxImageUpload = 32 << 20

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("file field required"))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	var vis domain.Visibility
	if raw := r.FormValue("visibility"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &vis); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid visibility"))
			return
		}
	}

	contentType := header.Header.Get("Content-Type")
	img, err := s.images.Upload(r.Context(), a, name, contentType, file, vis)
	switch {
	case errors.Is(err, app.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err)
		return
	case errors.Is(err, app.ErrUnsupportedImageType), errors.Is(err, app.ErrInvalidVisibility):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, toImageResponse(*img))
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.optionalAuth(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid image id"))
		return
	}

	img, f, err := s.images.Get(r.Context(), viewer, id)
	if errors.Is(err, app.ErrImageNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", img.ContentType)
	if exp := contentExpiry(img.Visibility); !exp.IsZero() {
		w.Header().Set("Expires", exp.UTC().Format(http.TimeFormat))
	}
	// ServeContent handles range requests and If-Modified-Since.
	http.ServeContent(w, r, img.Name, img.Created, f)
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	images, err := s.images.ListMine(r.Context(), a, intQuery(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	out := make([]imageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, toImageResponse(img))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	a, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid image id"))
		return
	}

	err = s.images.Delete(r.Context(), a, id)
	if errors.Is(err, app.ErrImageNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
