package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campify/campify-api/internal/models"
	"github.com/lib/pq"
)

const foreignKeyViolation = pq.ErrorCode("23503")

// RouteRepository handles route database operations
type RouteRepository struct {
	db *DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a route together with its tags in one transaction.
// Missing tag names are added to the catalog.
func (r *RouteRepository) Create(ctx context.Context, route *models.Route, tagNames []string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO routes (author_id, name, description, location_area, length_km, height,
				duration_seconds, difficulty, route_type, chat_link, is_public)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, views, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query,
			route.AuthorID,
			route.Name,
			route.Description,
			route.LocationArea,
			route.LengthKm,
			route.Height,
			route.DurationSeconds,
			route.Difficulty,
			int(route.Type),
			route.ChatLink,
			route.IsPublic,
		).Scan(&route.ID, &route.Views, &route.CreatedAt, &route.UpdatedAt)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return fmt.Errorf("author %d: %w", route.AuthorID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to create route: %w", err)
		}

		tags, err := attachTags(ctx, tx, route.ID, tagNames)
		if err != nil {
			return err
		}
		route.Tags = models.TagNames(tags)
		return nil
	})
}

// attachTags ensures the names exist and links them to the route.
func attachTags(ctx context.Context, q queryer, routeID int64, names []string) ([]models.Tag, error) {
	tags, _, err := ensureTags(ctx, q, names)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return tags, nil
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO route_tags (route_id, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, routeID, pq.Array(models.TagIDs(tags)))
	if err != nil {
		return nil, fmt.Errorf("failed to attach route tags: %w", err)
	}
	return tags, nil
}

const routeColumns = `
	r.id, r.author_id, r.name, r.description, r.location_area, r.length_km, r.height,
	r.duration_seconds, r.difficulty, r.route_type, r.chat_link, r.is_public, r.views,
	r.created_at, r.updated_at,
	COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}')
`

// GetByID retrieves a route and its tags
func (r *RouteRepository) GetByID(ctx context.Context, id int64) (*models.Route, error) {
	query := `SELECT ` + routeColumns + `
		FROM routes r
		LEFT JOIN route_tags rt ON rt.route_id = r.id
		LEFT JOIN tags t ON t.id = rt.tag_id
		WHERE r.id = $1
		GROUP BY r.id
	`

	route := &models.Route{}
	var (
		lengthKm sql.NullFloat64
		height   sql.NullInt32
		duration sql.NullInt64
		tags     pq.StringArray
		rt       int
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&route.ID,
		&route.AuthorID,
		&route.Name,
		&route.Description,
		&route.LocationArea,
		&lengthKm,
		&height,
		&duration,
		&route.Difficulty,
		&rt,
		&route.ChatLink,
		&route.IsPublic,
		&route.Views,
		&route.CreatedAt,
		&route.UpdatedAt,
		&tags,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	route.Type = models.RouteType(rt)
	route.Tags = []string(tags)
	if lengthKm.Valid {
		route.LengthKm = &lengthKm.Float64
	}
	if height.Valid {
		h := int(height.Int32)
		route.Height = &h
	}
	if duration.Valid {
		route.DurationSeconds = &duration.Int64
	}
	return route, nil
}

// ListPublic returns a page of public routes, most viewed first.
// A nil routeType returns routes of every type.
func (r *RouteRepository) ListPublic(ctx context.Context, routeType *models.RouteType, page, pageSize int) ([]models.RouteSummary, int, error) {
	var typeFilter sql.NullInt32
	if routeType != nil {
		typeFilter = sql.NullInt32{Int32: int32(*routeType), Valid: true}
	}

	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM routes
		WHERE is_public AND ($1::smallint IS NULL OR route_type = $1)
	`, typeFilter).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count routes: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.difficulty, r.route_type, r.views,
			COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}')
		FROM routes r
		LEFT JOIN route_tags rt ON rt.route_id = r.id
		LEFT JOIN tags t ON t.id = rt.tag_id
		WHERE r.is_public AND ($1::smallint IS NULL OR r.route_type = $1)
		GROUP BY r.id
		ORDER BY r.views DESC, r.id
		LIMIT $2 OFFSET $3
	`, typeFilter, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list routes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries, err := scanSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func scanSummaries(rows *sql.Rows, withTags bool) ([]models.RouteSummary, error) {
	var out []models.RouteSummary
	for rows.Next() {
		var (
			s    models.RouteSummary
			rt   int
			tags pq.StringArray
		)
		dest := []any{&s.ID, &s.Name, &s.Difficulty, &rt, &s.Views}
		if withTags {
			dest = append(dest, &tags)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		s.Type = models.RouteType(rt)
		s.Tags = []string(tags)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routes: %w", err)
	}
	return out, nil
}

// Update writes editable route fields. Tags are left untouched.
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	query := `
		UPDATE routes
		SET name = $2, description = $3, location_area = $4, length_km = $5, height = $6,
			duration_seconds = $7, difficulty = $8, route_type = $9, chat_link = $10,
			is_public = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		route.ID,
		route.Name,
		route.Description,
		route.LocationArea,
		route.LengthKm,
		route.Height,
		route.DurationSeconds,
		route.Difficulty,
		int(route.Type),
		route.ChatLink,
		route.IsPublic,
	).Scan(&route.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("route %d: %w", route.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update route: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by one.
func (r *RouteRepository) IncrementViews(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE routes SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("route %d: %w", id, ErrNotFound)
	}
	return nil
}

// TagIDs returns the ids of the tags attached to a route.
func (r *RouteRepository) TagIDs(ctx context.Context, routeID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rt.tag_id
		FROM routes r
		LEFT JOIN route_tags rt ON rt.route_id = r.id
		WHERE r.id = $1
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load route tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := false
	ids := []int64{}
	for rows.Next() {
		found = true
		var id sql.NullInt64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan route tag: %w", err)
		}
		if id.Valid {
			ids = append(ids, id.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route tags: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("route %d: %w", routeID, ErrNotFound)
	}
	return ids, nil
}

// TopPublicByViews returns the most viewed public routes.
func (r *RouteRepository) TopPublicByViews(ctx context.Context, limit int) ([]models.RouteSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, difficulty, route_type, views
		FROM routes
		WHERE is_public
		ORDER BY views DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular routes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSummaries(rows, false)
}

// PublicMatchesByTags returns one row per (public route, tag) pair where the
// tag is among tagIDs. Rows come back in route id order.
func (r *RouteRepository) PublicMatchesByTags(ctx context.Context, tagIDs []int64) ([]models.RouteTagMatch, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.difficulty, r.route_type, r.views, t.id, t.name
		FROM routes r
		JOIN route_tags rt ON rt.route_id = r.id
		JOIN tags t ON t.id = rt.tag_id
		WHERE r.is_public AND rt.tag_id = ANY($1)
		ORDER BY r.id, t.id
	`, pq.Array(tagIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load matching routes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.RouteTagMatch
	for rows.Next() {
		var (
			m  models.RouteTagMatch
			rt int
		)
		if err := rows.Scan(&m.RouteID, &m.Name, &m.Difficulty, &rt, &m.Views, &m.TagID, &m.TagName); err != nil {
			return nil, fmt.Errorf("failed to scan matching route: %w", err)
		}
		m.Type = models.RouteType(rt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matching routes: %w", err)
	}
	return out, nil
}

// ReplaceTags swaps a route's tag set for names.
func (r *RouteRepository) ReplaceTags(ctx context.Context, routeID int64, names []string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM routes WHERE id = $1)`, routeID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check route: %w", err)
		}
		if !exists {
			return fmt.Errorf("route %d: %w", routeID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM route_tags WHERE route_id = $1`, routeID); err != nil {
			return fmt.Errorf("failed to clear route tags: %w", err)
		}
		_, err := attachTags(ctx, tx, routeID, names)
		return err
	})
}

// ListIDs pages through route ids in ascending order, starting after afterID.
func (r *RouteRepository) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM routes WHERE id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list route ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan route id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route ids: %w", err)
	}
	return ids, nil
}
