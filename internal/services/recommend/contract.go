package recommend

import (
	"context"

	"github.com/campify/campify-api/internal/models"
)

// users confirms a user exists.
type users interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// routeTags resolves the tags currently attached to a route.
type routeTags interface {
	TagIDs(ctx context.Context, routeID int64) ([]int64, error)
}

// preferenceWriter persists preference changes atomically.
type preferenceWriter interface {
	ApplyInteraction(ctx context.Context, userID int64, tagIDs []int64, step, decayRate float64) error
	SetWeights(ctx context.Context, userID int64, tagNames []string, weight float64) ([]models.Tag, error)
}

// preferenceReader lists a user's preferences.
type preferenceReader interface {
	ListByUser(ctx context.Context, userID int64) ([]models.TagPreference, error)
}

// candidateSource provides the route rows the ranker scores.
type candidateSource interface {
	TopPublicByViews(ctx context.Context, limit int) ([]models.RouteSummary, error)
	PublicMatchesByTags(ctx context.Context, tagIDs []int64) ([]models.RouteTagMatch, error)
}
