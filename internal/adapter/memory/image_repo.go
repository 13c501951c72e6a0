package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

// ImageRepo implements domain.ImageRepository in memory.
type ImageRepo struct {
	db *DB
}

// NewImageRepo creates an ImageRepo backed by the given DB.
func NewImageRepo(db *DB) *ImageRepo {
	return &ImageRepo{db: db}
}

// Create records an uploaded image.
func (r *ImageRepo) Create(ctx context.Context, ni domain.NewImage) (*domain.Image, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.imageIDCounter++
	img := domain.Image{
		ID:          r.db.imageIDCounter,
		UserID:      ni.UserID,
		Name:        ni.Name,
		FileName:    ni.FileName,
		ContentType: ni.ContentType,
		Size:        ni.Size,
		Visibility:  ni.Visibility,
		Created:     time.Now().UTC(),
	}
	r.db.images = append(r.db.images, img)
	return &img, nil
}

// GetByID retrieves an image record by id.
func (r *ImageRepo) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.images {
		if r.db.images[i].ID == id {
			img := r.db.images[i]
			return &img, nil
		}
	}
	return nil, nil
}

// ListByUser returns a user's images, newest first, up to limit.
func (r *ImageRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Image, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Image
	for i := range r.db.images {
		if r.db.images[i].UserID == userID {
			out = append(out, r.db.images[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes an image record by id.
func (r *ImageRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.images {
		if r.db.images[i].ID == id {
			r.db.images = append(r.db.images[:i], r.db.images[i+1:]...)
			return nil
		}
	}
	return nil
}
