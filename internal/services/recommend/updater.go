package recommend

import (
	"context"
	"fmt"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/metrics"
	"github.com/campify/campify-api/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/campify/campify-api/internal/services/recommend")

// Updater applies reinforcement and decay to user tag preferences.
type Updater struct {
	users  users
	routes routeTags
	prefs  preferenceWriter
	cfg    config.PreferenceConfig
	logger *zap.Logger
}

// NewUpdater creates an Updater.
func NewUpdater(u users, r routeTags, p preferenceWriter, cfg config.PreferenceConfig, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{users: u, routes: r, prefs: p, cfg: cfg, logger: logger}
}

// Reinforce records a positive interaction between a user and a route. Tags
// on the route move toward 1; every other tag the user has decays.
func (u *Updater) Reinforce(ctx context.Context, userID, routeID int64) error {
	ctx, span := tracer.Start(ctx, "recommend.Reinforce")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int64("route.id", routeID))

	if _, err := u.users.GetByID(ctx, userID); err != nil {
		span.RecordError(err)
		return err
	}

	tagIDs, err := u.routes.TagIDs(ctx, routeID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := u.prefs.ApplyInteraction(ctx, userID, tagIDs, u.cfg.Step, u.cfg.DecayRate); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to apply interaction: %w", err)
	}

	metrics.PreferenceUpdatesTotal.WithLabelValues("reinforce").Inc()
	u.logger.Debug("preferences_reinforced",
		zap.Int64("user_id", userID),
		zap.Int64("route_id", routeID),
		zap.Int("tag_count", len(tagIDs)),
	)
	return nil
}

// Seed sets the user's weight for each named tag to the configured seed
// weight, creating missing tags. Prior weights for those tags are replaced.
func (u *Updater) Seed(ctx context.Context, userID int64, tagNames []string) ([]models.Tag, error) {
	ctx, span := tracer.Start(ctx, "recommend.Seed")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int("tag.count", len(tagNames)))

	if _, err := u.users.GetByID(ctx, userID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	tags, err := u.prefs.SetWeights(ctx, userID, tagNames, u.cfg.SeedWeight)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to seed preferences: %w", err)
	}

	metrics.PreferenceUpdatesTotal.WithLabelValues("seed").Inc()
	u.logger.Debug("preferences_seeded",
		zap.Int64("user_id", userID),
		zap.Strings("tags", tagNames),
	)
	return tags, nil
}
