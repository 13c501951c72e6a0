package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// PasteRepo implements domain.PasteRepository in memory.
type PasteRepo struct {
	db *DB
}

// NewPasteRepo creates a PasteRepo backed by the given DB.
func NewPasteRepo(db *DB) *PasteRepo {
	return &PasteRepo{db: db}
}

// Create inserts a paste under the given slug.
func (r *PasteRepo) Create(ctx context.Context, np domain.NewPaste, slug string) (*domain.Paste, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	r.db.pasteIDCounter++
	p := domain.Paste{
		ID:          r.db.pasteIDCounter,
		Slug:        slug,
		UserID:      np.UserID,
		Name:        np.Name,
		Description: np.Description,
		Tags:        np.Tags,
		ContentType: np.ContentType,
		Content:     np.Content,
		Visibility:  np.Visibility,
		LastUpdated: now,
		Created:     now,
	}
	r.db.pastes = append(r.db.pastes, p)
	return &p, nil
}

// GetBySlug retrieves a paste by its public slug.
func (r *PasteRepo) GetBySlug(ctx context.Context, slug string) (*domain.Paste, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.pastes {
		if r.db.pastes[i].Slug == slug {
			p := r.db.pastes[i]
			return &p, nil
		}
	}
	return nil, nil
}

// SlugExists reports whether a paste already uses the slug.
func (r *PasteRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.pastes {
		if r.db.pastes[i].Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// ListByUser returns a user's pastes, newest first, up to limit.
func (r *PasteRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Paste, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Paste
	for i := range r.db.pastes {
		if r.db.pastes[i].UserID == userID {
			out = append(out, r.db.pastes[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a paste by id.
func (r *PasteRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.pastes {
		if r.db.pastes[i].ID == id {
			r.db.pastes = append(r.db.pastes[:i], r.db.pastes[i+1:]...)
			return nil
		}
	}
	return nil
}
