package handlers

import (
	"context"
	"testing"

	"github.com/campify/campify-api/internal/models"
	"github.com/campify/campify-api/internal/queue"
)

type mockRouteStore struct {
	t                  *testing.T
	createFunc         func(ctx context.Context, route *models.Route, tagNames []string) error
	getByIDFunc        func(ctx context.Context, id int64) (*models.Route, error)
	listPublicFunc     func(ctx context.Context, routeType *models.RouteType, page, pageSize int) ([]models.RouteSummary, int, error)
	updateFunc         func(ctx context.Context, route *models.Route) error
	incrementViewsFunc func(ctx context.Context, id int64) error
}

func (m *mockRouteStore) Create(ctx context.Context, route *models.Route, tagNames []string) error {
	if m.createFunc == nil {
		m.t.Fatal("Create called but not configured in test - mock requires explicit setup")
	}
	return m.createFunc(ctx, route, tagNames)
}

func (m *mockRouteStore) GetByID(ctx context.Context, id int64) (*models.Route, error) {
	if m.getByIDFunc == nil {
		m.t.Fatal("GetByID called but not configured in test - mock requires explicit setup")
	}
	return m.getByIDFunc(ctx, id)
}

func (m *mockRouteStore) ListPublic(ctx context.Context, routeType *models.RouteType, page, pageSize int) ([]models.RouteSummary, int, error) {
	if m.listPublicFunc == nil {
		m.t.Fatal("ListPublic called but not configured in test - mock requires explicit setup")
	}
	return m.listPublicFunc(ctx, routeType, page, pageSize)
}

func (m *mockRouteStore) Update(ctx context.Context, route *models.Route) error {
	if m.updateFunc == nil {
		m.t.Fatal("Update called but not configured in test - mock requires explicit setup")
	}
	return m.updateFunc(ctx, route)
}

func (m *mockRouteStore) IncrementViews(ctx context.Context, id int64) error {
	if m.incrementViewsFunc == nil {
		m.t.Fatal("IncrementViews called but not configured in test - mock requires explicit setup")
	}
	return m.incrementViewsFunc(ctx, id)
}

type mockEnqueuer struct {
	jobs []*queue.Job
	err  error
}

func (m *mockEnqueuer) Enqueue(_ context.Context, job *queue.Job) error {
	m.jobs = append(m.jobs, job)
	return m.err
}

type mockUserStore struct {
	t           *testing.T
	createFunc  func(ctx context.Context, user *models.User) error
	getByIDFunc func(ctx context.Context, id int64) (*models.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if m.createFunc == nil {
		m.t.Fatal("Create called but not configured in test - mock requires explicit setup")
	}
	return m.createFunc(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.getByIDFunc == nil {
		m.t.Fatal("GetByID called but not configured in test - mock requires explicit setup")
	}
	return m.getByIDFunc(ctx, id)
}

type mockPreferenceLister struct {
	t              *testing.T
	listByUserFunc func(ctx context.Context, userID int64) ([]models.TagPreference, error)
}

func (m *mockPreferenceLister) ListByUser(ctx context.Context, userID int64) ([]models.TagPreference, error) {
	if m.listByUserFunc == nil {
		m.t.Fatal("ListByUser called but not configured in test - mock requires explicit setup")
	}
	return m.listByUserFunc(ctx, userID)
}

type mockRanker struct {
	t        *testing.T
	rankFunc func(ctx context.Context, userID int64) ([]models.RouteSummary, error)
}

func (m *mockRanker) Rank(ctx context.Context, userID int64) ([]models.RouteSummary, error) {
	if m.rankFunc == nil {
		m.t.Fatal("Rank called but not configured in test - mock requires explicit setup")
	}
	return m.rankFunc(ctx, userID)
}

type mockUpdater struct {
	t             *testing.T
	reinforceFunc func(ctx context.Context, userID, routeID int64) error
	seedFunc      func(ctx context.Context, userID int64, tagNames []string) ([]models.Tag, error)
}

func (m *mockUpdater) Reinforce(ctx context.Context, userID, routeID int64) error {
	if m.reinforceFunc == nil {
		m.t.Fatal("Reinforce called but not configured in test - mock requires explicit setup")
	}
	return m.reinforceFunc(ctx, userID, routeID)
}

func (m *mockUpdater) Seed(ctx context.Context, userID int64, tagNames []string) ([]models.Tag, error) {
	if m.seedFunc == nil {
		m.t.Fatal("Seed called but not configured in test - mock requires explicit setup")
	}
	return m.seedFunc(ctx, userID, tagNames)
}

type mockTagLister struct {
	tags []models.Tag
	err  error
}

func (m *mockTagLister) List(context.Context) ([]models.Tag, error) { return m.tags, m.err }

var (
	_ RouteStore        = (*mockRouteStore)(nil)
	_ JobEnqueuer       = (*mockEnqueuer)(nil)
	_ UserStore         = (*mockUserStore)(nil)
	_ PreferenceLister  = (*mockPreferenceLister)(nil)
	_ RouteRanker       = (*mockRanker)(nil)
	_ PreferenceUpdater = (*mockUpdater)(nil)
	_ TagLister         = (*mockTagLister)(nil)
)
