package database

import (
	"context"
	"fmt"

	"github.com/campify/campify-api/internal/models"
	"github.com/lib/pq"
)

// TagRepository handles tag catalog operations
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// List returns all catalog tags ordered by name
func (r *TagRepository) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTags(rows)
}

// Ensure makes sure every name exists in the catalog and returns the tags.
// It reports how many names this call inserted; rows added concurrently by
// another caller are not counted.
func (r *TagRepository) Ensure(ctx context.Context, names []string) ([]models.Tag, int, error) {
	return ensureTags(ctx, r.db, names)
}

// ensureTags inserts any missing names and returns the matching rows with
// the number of rows inserted. The insert is idempotent, so concurrent
// callers never violate the unique name.
func ensureTags(ctx context.Context, q queryer, names []string) ([]models.Tag, int, error) {
	if len(names) == 0 {
		return nil, 0, nil
	}

	inserted, err := q.QueryContext(ctx, `
		INSERT INTO tags (name)
		SELECT DISTINCT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`, pq.Array(names))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to ensure tags: %w", err)
	}
	created := 0
	for inserted.Next() {
		created++
	}
	err = inserted.Err()
	_ = inserted.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to ensure tags: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT id, name FROM tags WHERE name = ANY($1) ORDER BY name`, pq.Array(names))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags, err := scanTags(rows)
	if err != nil {
		return nil, 0, err
	}
	return tags, created, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTags(rows rowScanner) ([]models.Tag, error) {
	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}
