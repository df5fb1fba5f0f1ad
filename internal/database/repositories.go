package database

import (
	"context"

	"github.com/campify/campify-api/internal/models"
)

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TagRepositoryInterface defines the interface for tag catalog operations
type TagRepositoryInterface interface {
	List(ctx context.Context) ([]models.Tag, error)
	Ensure(ctx context.Context, names []string) ([]models.Tag, int, error)
}

// RouteRepositoryInterface defines the interface for route repository operations
// This interface enables better testability by allowing mock implementations
type RouteRepositoryInterface interface {
	Create(ctx context.Context, route *models.Route, tagNames []string) error
	GetByID(ctx context.Context, id int64) (*models.Route, error)
	ListPublic(ctx context.Context, routeType *models.RouteType, page, pageSize int) ([]models.RouteSummary, int, error)
	Update(ctx context.Context, route *models.Route) error
	IncrementViews(ctx context.Context, id int64) error
	TagIDs(ctx context.Context, routeID int64) ([]int64, error)
	TopPublicByViews(ctx context.Context, limit int) ([]models.RouteSummary, error)
	PublicMatchesByTags(ctx context.Context, tagIDs []int64) ([]models.RouteTagMatch, error)
	ReplaceTags(ctx context.Context, routeID int64, names []string) error
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

// PreferenceRepositoryInterface defines the interface for tag preference storage
type PreferenceRepositoryInterface interface {
	ListByUser(ctx context.Context, userID int64) ([]models.TagPreference, error)
	ApplyInteraction(ctx context.Context, userID int64, tagIDs []int64, step, decayRate float64) error
	SetWeights(ctx context.Context, userID int64, tagNames []string, weight float64) ([]models.Tag, error)
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface       = (*UserRepository)(nil)
	_ TagRepositoryInterface        = (*TagRepository)(nil)
	_ RouteRepositoryInterface      = (*RouteRepository)(nil)
	_ PreferenceRepositoryInterface = (*PreferenceRepository)(nil)
)
