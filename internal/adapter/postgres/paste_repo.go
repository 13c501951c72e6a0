package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

const pasteColumns = "id, slug, user_id, name, description, tags, content_type, content, visibility, last_updated, created"

// PasteRepo implements domain.PasteRepository on top of DB.
type PasteRepo struct {
	db *DB
}

// NewPasteRepo creates a PasteRepo backed by the given DB.
func NewPasteRepo(db *DB) *PasteRepo {
	return &PasteRepo{db: db}
}

func scanPaste(row *sql.Row) (*domain.Paste, error) {
	var p domain.Paste
	err := row.Scan(&p.ID, &p.Slug, &p.UserID, &p.Name, &p.Description,
		pq.Array(&p.Tags), &p.ContentType, &p.Content, &p.Visibility, &p.LastUpdated, &p.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a paste under the given slug.
func (r *PasteRepo) Create(ctx context.Context, np domain.NewPaste, slug string) (*domain.Paste, error) {
	if np.Tags == nil {
		// pq.Array encodes a nil slice as NULL, and the column is NOT NULL.
		np.Tags = []string{}
	}
	return scanPaste(r.db.sql.QueryRowContext(ctx,
		`INSERT INTO pastes (slug, user_id, name, description, tags, content_type, content, visibility)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+pasteColumns,
		slug, np.UserID, np.Name, np.Description, pq.Array(np.Tags),
		np.ContentType, np.Content, np.Visibility))
}

// GetBySlug retrieves a paste by its public slug.
func (r *PasteRepo) GetBySlug(ctx context.Context, slug string) (*domain.Paste, error) {
	return scanPaste(r.db.sql.QueryRowContext(ctx,
		"SELECT "+pasteColumns+" FROM pastes WHERE slug = $1", slug))
}

// SlugExists reports whether a paste already uses the slug.
func (r *PasteRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pastes WHERE slug = $1", slug).Scan(&count)
	return count > 0, err
}

// ListByUser returns a user's pastes, newest first, up to limit.
func (r *PasteRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Paste, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+pasteColumns+" FROM pastes WHERE user_id = $1 ORDER BY created DESC LIMIT $2",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Paste, 0, limit)
	for rows.Next() {
		var p domain.Paste
		if err := rows.Scan(&p.ID, &p.Slug, &p.UserID, &p.Name, &p.Description,
			pq.Array(&p.Tags), &p.ContentType, &p.Content, &p.Visibility, &p.LastUpdated, &p.Created); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a paste by id.
func (r *PasteRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM pastes WHERE id = $1", id)
	return err
}
