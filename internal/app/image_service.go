package app

import (
	"context"
	"errors"
	"io"
	"mime"
	"strings"

	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/storage"
)

var (
	// ErrImageNotFound covers both missing images and images the caller may
	// not see.
	ErrImageNotFound = errors.New("image not found")
	// ErrUnsupportedImageType indicates a content type outside image/*.
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// ImageService handles uploads and visibility-checked serving of images.
type ImageService struct {
	images domain.ImageRepository
	files  storage.FileStore
}

// NewImageService creates a new image service.
func NewImageService(images domain.ImageRepository, files storage.FileStore) *ImageService {
	return &ImageService{images: images, files: files}
}

// Upload stores the image bytes and records the metadata.
func (s *ImageService) Upload(ctx context.Context, a *auth.Authentication, name, contentType string, r io.Reader, vis domain.Visibility) (*domain.Image, error) {
	if !a.Permissions().Image.Create {
		return nil, ErrPermissionDenied
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedImageType
	}
	if vis.Kind == "" {
		vis = domain.PublicVisibility()
	}
	if !vis.Valid() {
		return nil, ErrInvalidVisibility
	}

	fileName, size, err := s.files.Save(r, extensionFor(contentType))
	if err != nil {
		return nil, err
	}

	img, err := s.images.Create(ctx, domain.NewImage{
		UserID:      a.UserID(),
		Name:        name,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		Visibility:  vis,
	})
	if err != nil {
		// The bytes are orphaned without a record; clean them up.
		_ = s.files.Remove(fileName)
		return nil, err
	}
	return img, nil
}

// Get returns the image record and an open reader over its bytes if the
// viewer may see it. The caller owns closing the reader.
func (s *ImageService) Get(ctx context.Context, viewer auth.Optional, id int64) (*domain.Image, io.ReadSeekCloser, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if img == nil || !s.canView(viewer, img) {
		return nil, nil, ErrImageNotFound
	}
	f, err := s.files.Open(img.FileName)
	if err != nil {
		return nil, nil, err
	}
	return img, f, nil
}

// ListMine returns the caller's own images.
func (s *ImageService) ListMine(ctx context.Context, a *auth.Authentication, limit int) ([]domain.Image, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.images.ListByUser(ctx, a.UserID(), limit)
}

// Delete removes an image record and its bytes. Allowed for the owner and
// for image admins.
func (s *ImageService) Delete(ctx context.Context, a *auth.Authentication, id int64) error {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrImageNotFound
	}
	if img.UserID != a.UserID() && !a.Permissions().IsImageAdmin() {
		return ErrImageNotFound
	}
	if err := s.images.Delete(ctx, img.ID); err != nil {
		return err
	}
	return s.files.Remove(img.FileName)
}

func (s *ImageService) canView(viewer auth.Optional, img *domain.Image) bool {
	perms := viewer.Permissions()
	if perms.IsImageAdmin() {
		return true
	}
	if img.Visibility.Kind == domain.VisibilityPublic && viewer.UserID() != img.UserID && !perms.Image.ViewPublic {
		return false
	}
	return img.Visibility.VisibleToUser(img.UserID, viewer.UserID())
}

func extensionFor(contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
