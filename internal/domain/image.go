package domain

import (
	"context"
	"time"
)

// Image is an uploaded picture. FileName is the name under which the bytes
// live in the file store, not the name the uploader gave it.
type Image struct {
	ID          int64
	UserID      int64
	Name        string
	FileName    string
	ContentType string
	Size        int64
	Visibility  Visibility
	Created     time.Time
}

// NewImage carries the fields needed to record an upload.
type NewImage struct {
	UserID      int64
	Name        string
	FileName    string
	ContentType string
	Size        int64
	Visibility  Visibility
}

// ImageRepository defines the port for image metadata persistence.
// Lookups return (nil, nil) when no row matches.
type ImageRepository interface {
	Create(ctx context.Context, img NewImage) (*Image, error)
	GetByID(ctx context.Context, id int64) (*Image, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]Image, error)
	Delete(ctx context.Context, id int64) error
}
