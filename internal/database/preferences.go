package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campify/campify-api/internal/models"
	"github.com/lib/pq"
)

// PreferenceRepository stores per-user tag weights
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListByUser returns all preference rows for a user, heaviest first.
func (r *PreferenceRepository) ListByUser(ctx context.Context, userID int64) ([]models.TagPreference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.user_id, p.tag_id, t.name, p.weight, p.created_at, p.updated_at
		FROM user_tag_preferences p
		JOIN tags t ON t.id = p.tag_id
		WHERE p.user_id = $1
		ORDER BY p.weight DESC, t.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []models.TagPreference
	for rows.Next() {
		var p models.TagPreference
		if err := rows.Scan(&p.UserID, &p.TagID, &p.TagName, &p.Weight, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}
	return prefs, nil
}

// ApplyInteraction decays every weight of the user whose tag is not in
// tagIDs, then moves each tag in tagIDs a step toward 1. Rows that do not
// exist yet start from 0. Both updates commit together.
//
// The arithmetic runs inside PostgreSQL so concurrent interactions for the
// same user serialize on the row locks instead of overwriting each other.
func (r *PreferenceRepository) ApplyInteraction(ctx context.Context, userID int64, tagIDs []int64, step, decayRate float64) error {
	if tagIDs == nil {
		// a nil array binds as NULL, which would exclude every row from decay
		tagIDs = []int64{}
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE user_tag_preferences
			SET weight = weight * (1 - $3::double precision), updated_at = NOW()
			WHERE user_id = $1 AND NOT (tag_id = ANY($2::bigint[]))
		`, userID, pq.Array(tagIDs), decayRate)
		if err != nil {
			return fmt.Errorf("failed to decay preferences: %w", err)
		}

		if len(tagIDs) == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_tag_preferences (user_id, tag_id, weight)
			SELECT $1, t, ROUND(LEAST($3::double precision, 1.0)::numeric, 4)::double precision
			FROM unnest($2::bigint[]) AS t
			ON CONFLICT (user_id, tag_id) DO UPDATE SET
				weight = ROUND(LEAST(
					user_tag_preferences.weight + $3::double precision * (1 - user_tag_preferences.weight),
					1.0
				)::numeric, 4)::double precision,
				updated_at = NOW()
		`, userID, pq.Array(tagIDs), step)
		if err != nil {
			return fmt.Errorf("failed to reinforce preferences: %w", err)
		}
		return nil
	})
}

// SetWeights ensures each tag name exists and sets the user's weight for it
// to exactly weight, overwriting any previous value.
func (r *PreferenceRepository) SetWeights(ctx context.Context, userID int64, tagNames []string, weight float64) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		tags, _, err = ensureTags(ctx, tx, tagNames)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_tag_preferences (user_id, tag_id, weight)
			SELECT $1, t, $3
			FROM unnest($2::bigint[]) AS t
			ON CONFLICT (user_id, tag_id) DO UPDATE SET
				weight = EXCLUDED.weight,
				updated_at = NOW()
		`, userID, pq.Array(models.TagIDs(tags)), weight)
		if err != nil {
			return fmt.Errorf("failed to set preferences: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
