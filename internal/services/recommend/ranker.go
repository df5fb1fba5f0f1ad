package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/campify/campify-api/internal/metrics"
	"github.com/campify/campify-api/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Ranker orders public routes by how well their tags match a user's
// preferences. Nothing is cached between calls.
type Ranker struct {
	users     users
	prefs     preferenceReader
	routes    candidateSource
	coldStart int
	logger    *zap.Logger
}

// NewRanker creates a Ranker. coldStart is how many popular routes to return
// for users without preferences.
func NewRanker(u users, p preferenceReader, r candidateSource, coldStart int, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{users: u, prefs: p, routes: r, coldStart: coldStart, logger: logger}
}

// Rank returns recommended routes for a user, best first.
//
// Users without preferences get the most viewed public routes. Otherwise a
// route is a candidate if it shares at least one tag with the user's
// preferences, and its score is the sum of those tags' weights. Ties go to
// the more viewed route, then to the lower route id.
func (rk *Ranker) Rank(ctx context.Context, userID int64) ([]models.RouteSummary, error) {
	ctx, span := tracer.Start(ctx, "recommend.Rank")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	if _, err := rk.users.GetByID(ctx, userID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	prefs, err := rk.prefs.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	if len(prefs) == 0 {
		routes, err := rk.routes.TopPublicByViews(ctx, rk.coldStart)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load popular routes: %w", err)
		}
		metrics.RecommendationsTotal.WithLabelValues("cold_start").Inc()
		span.SetAttributes(attribute.String("recommend.mode", "cold_start"), attribute.Int("route.count", len(routes)))
		return routes, nil
	}

	weights := make(map[int64]float64, len(prefs))
	tagIDs := make([]int64, 0, len(prefs))
	for _, p := range prefs {
		if _, dup := weights[p.TagID]; dup {
			continue
		}
		weights[p.TagID] = p.Weight
		tagIDs = append(tagIDs, p.TagID)
	}

	matches, err := rk.routes.PublicMatchesByTags(ctx, tagIDs)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load candidate routes: %w", err)
	}

	ranked := score(matches, weights)

	metrics.RecommendationsTotal.WithLabelValues("personalized").Inc()
	metrics.RecommendationCandidates.Observe(float64(len(ranked)))
	span.SetAttributes(attribute.String("recommend.mode", "personalized"), attribute.Int("route.count", len(ranked)))
	rk.logger.Debug("recommendations_ranked",
		zap.Int64("user_id", userID),
		zap.Int("preference_count", len(prefs)),
		zap.Int("candidate_count", len(ranked)),
	)
	return ranked, nil
}

// score folds (route, tag) rows into one summary per route. A tag repeated
// for the same route is counted once.
func score(matches []models.RouteTagMatch, weights map[int64]float64) []models.RouteSummary {
	type seenKey struct{ route, tag int64 }

	index := make(map[int64]int)
	seen := make(map[seenKey]struct{}, len(matches))
	var out []models.RouteSummary

	for _, m := range matches {
		w, ok := weights[m.TagID]
		if !ok {
			continue
		}
		k := seenKey{m.RouteID, m.TagID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		i, ok := index[m.RouteID]
		if !ok {
			i = len(out)
			index[m.RouteID] = i
			out = append(out, models.RouteSummary{
				ID:         m.RouteID,
				Name:       m.Name,
				Difficulty: m.Difficulty,
				Type:       m.Type,
				Views:      m.Views,
			})
		}
		out[i].Score += w
		out[i].Tags = append(out[i].Tags, m.TagName)
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		if out[a].Views != out[b].Views {
			return out[a].Views > out[b].Views
		}
		return out[a].ID < out[b].ID
	})
	return out
}
