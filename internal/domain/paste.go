package domain

import (
	"context"
	"time"
)

// Paste is a shared text snippet. Slug is the short public identifier used in
// URLs; ID is the internal primary key.
type Paste struct {
	ID          int64
	Slug        string
	UserID      int64
	Name        string
	Description string
	Tags        []string
	ContentType string
	Content     string
	Visibility  Visibility
	LastUpdated time.Time
	Created     time.Time
}

// NewPaste carries the fields needed to create a paste.
type NewPaste struct {
	UserID      int64
	Name        string
	Description string
	Tags        []string
	ContentType string
	Content     string
	Visibility  Visibility
}

// PasteRepository defines the port for paste persistence.
// Lookups return (nil, nil) when no row matches.
type PasteRepository interface {
	Create(ctx context.Context, p NewPaste, slug string) (*Paste, error)
	GetBySlug(ctx context.Context, slug string) (*Paste, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]Paste, error)
	Delete(ctx context.Context, id int64) error
}
