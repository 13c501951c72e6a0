package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

const imageColumns = "id, user_id, name, file_name, content_type, size, visibility, created"

// ImageRepo implements domain.ImageRepository on top of DB.
type ImageRepo struct {
	db *DB
}

// NewImageRepo creates an ImageRepo backed by the given DB.
func NewImageRepo(db *DB) *ImageRepo {
	return &ImageRepo{db: db}
}

func scanImage(row *sql.Row) (*domain.Image, error) {
	var img domain.Image
	err := row.Scan(&img.ID, &img.UserID, &img.Name, &img.FileName,
		&img.ContentType, &img.Size, &img.Visibility, &img.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Create records an uploaded image.
func (r *ImageRepo) Create(ctx context.Context, ni domain.NewImage) (*domain.Image, error) {
	return scanImage(r.db.sql.QueryRowContext(ctx,
		`INSERT INTO images (user_id, name, file_name, content_type, size, visibility)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+imageColumns,
		ni.UserID, ni.Name, ni.FileName, ni.ContentType, ni.Size, ni.Visibility))
}

// GetByID retrieves an image record by id.
func (r *ImageRepo) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	return scanImage(r.db.sql.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE id = $1", id))
}

// ListByUser returns a user's images, newest first, up to limit.
func (r *ImageRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Image, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE user_id = $1 ORDER BY created DESC LIMIT $2",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Image, 0, limit)
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.UserID, &img.Name, &img.FileName,
			&img.ContentType, &img.Size, &img.Visibility, &img.Created); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// Delete removes an image record by id.
func (r *ImageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM images WHERE id = $1", id)
	return err
}
