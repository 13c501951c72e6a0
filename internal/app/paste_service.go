package app

import (
	"context"
	"errors"

	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/random"
)

var (
	// ErrPasteNotFound covers both missing pastes and pastes the caller may
	// not see, so existence of private content never leaks.
	ErrPasteNotFound = errors.New("paste not found")
	// ErrInvalidVisibility indicates an unknown visibility kind.
	ErrInvalidVisibility = errors.New("invalid visibility")
	// ErrEmptyContent indicates a paste with no content.
	ErrEmptyContent = errors.New("paste content must not be empty")
)

// slugLength is the length of generated paste slugs.
const slugLength = 7

// PasteService handles creation and visibility-checked retrieval of pastes.
type PasteService struct {
	pastes domain.PasteRepository
}

// NewPasteService creates a new paste service.
func NewPasteService(pastes domain.PasteRepository) *PasteService {
	return &PasteService{pastes: pastes}
}

// Create stores a new paste under a freshly generated slug.
func (s *PasteService) Create(ctx context.Context, a *auth.Authentication, np domain.NewPaste) (*domain.Paste, error) {
	if !a.Permissions().Paste.Create {
		return nil, ErrPermissionDenied
	}
	if np.Content == "" {
		return nil, ErrEmptyContent
	}
	if np.Visibility.Kind == "" {
		np.Visibility = domain.PublicVisibility()
	}
	if !np.Visibility.Valid() {
		return nil, ErrInvalidVisibility
	}
	if np.ContentType == "" {
		np.ContentType = "text/plain"
	}
	np.UserID = a.UserID()

	for {
		slug := random.Alphanumeric(slugLength)
		exists, err := s.pastes.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		p, err := s.pastes.Create(ctx, np, slug)
		if err != nil {
			return nil, err
		}
		if p == nil {
			// Slug raced with a concurrent insert; generate another.
			continue
		}
		return p, nil
	}
}

// Get returns the paste behind slug if the viewer may see it. Invisible and
// missing pastes are indistinguishable to the caller.
func (s *PasteService) Get(ctx context.Context, viewer auth.Optional, slug string) (*domain.Paste, error) {
	p, err := s.pastes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPasteNotFound
	}
	if !s.canView(viewer, p) {
		return nil, ErrPasteNotFound
	}
	return p, nil
}

// ListMine returns the caller's own pastes.
func (s *PasteService) ListMine(ctx context.Context, a *auth.Authentication, limit int) ([]domain.Paste, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.pastes.ListByUser(ctx, a.UserID(), limit)
}

// Delete removes a paste. Allowed for the owner and for paste admins.
func (s *PasteService) Delete(ctx context.Context, a *auth.Authentication, slug string) error {
	p, err := s.pastes.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPasteNotFound
	}
	if p.UserID != a.UserID() && !a.Permissions().IsPasteAdmin() {
		return ErrPasteNotFound
	}
	return s.pastes.Delete(ctx, p.ID)
}

func (s *PasteService) canView(viewer auth.Optional, p *domain.Paste) bool {
	perms := viewer.Permissions()
	if perms.IsPasteAdmin() {
		return true
	}
	if p.Visibility.Kind == domain.VisibilityPublic && viewer.UserID() != p.UserID && !perms.Paste.ViewPublic {
		return false
	}
	return p.Visibility.VisibleToUser(p.UserID, viewer.UserID())
}
