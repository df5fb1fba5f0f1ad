package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/models"
)

// memStore is an in-memory stand-in for the user, route and preference
// repositories. It applies the same weight formulas the SQL does.
type memStore struct {
	mu        sync.Mutex
	users     map[int64]bool
	tags      map[string]int64
	tagNames  map[int64]string
	routes    map[int64]*models.Route
	routeTags map[int64][]int64
	prefs     map[int64]map[int64]float64
	nextTag   int64
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[int64]bool),
		tags:      make(map[string]int64),
		tagNames:  make(map[int64]string),
		routes:    make(map[int64]*models.Route),
		routeTags: make(map[int64][]int64),
		prefs:     make(map[int64]map[int64]float64),
	}
}

func (s *memStore) ensure(names ...string) []models.Tag {
	var out []models.Tag
	for _, n := range names {
		id, ok := s.tags[n]
		if !ok {
			s.nextTag++
			id = s.nextTag
			s.tags[n] = id
			s.tagNames[id] = n
		}
		out = append(out, models.Tag{ID: id, Name: n})
	}
	return out
}

func (s *memStore) addUser(id int64) { s.users[id] = true }

func (s *memStore) addRoute(id int64, views int64, public bool, tags ...string) {
	s.routes[id] = &models.Route{ID: id, Name: fmt.Sprintf("route-%d", id), Views: views, IsPublic: public}
	s.routeTags[id] = models.TagIDs(s.ensure(tags...))
}

func (s *memStore) setPref(userID int64, tag string, w float64) {
	if s.prefs[userID] == nil {
		s.prefs[userID] = make(map[int64]float64)
	}
	s.prefs[userID][s.ensure(tag)[0].ID] = w
}

func (s *memStore) weight(userID int64, tag string) float64 {
	return s.prefs[userID][s.tags[tag]]
}

func (s *memStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	if !s.users[id] {
		return nil, fmt.Errorf("user %d: %w", id, database.ErrNotFound)
	}
	return &models.User{ID: id}, nil
}

func (s *memStore) TagIDs(_ context.Context, routeID int64) ([]int64, error) {
	if _, ok := s.routes[routeID]; !ok {
		return nil, fmt.Errorf("route %d: %w", routeID, database.ErrNotFound)
	}
	return s.routeTags[routeID], nil
}

func (s *memStore) ApplyInteraction(_ context.Context, userID int64, tagIDs []int64, step, decayRate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs[userID] == nil {
		s.prefs[userID] = make(map[int64]float64)
	}
	touched := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		touched[id] = true
	}
	for id, w := range s.prefs[userID] {
		if !touched[id] {
			s.prefs[userID][id] = DecayWeight(w, decayRate)
		}
	}
	for id := range touched {
		s.prefs[userID][id] = ReinforceWeight(s.prefs[userID][id], step)
	}
	return nil
}

func (s *memStore) SetWeights(_ context.Context, userID int64, tagNames []string, weight float64) ([]models.Tag, error) {
	tags := s.ensure(tagNames...)
	for _, t := range tags {
		s.setPref(userID, t.Name, weight)
	}
	return tags, nil
}

func (s *memStore) ListByUser(_ context.Context, userID int64) ([]models.TagPreference, error) {
	var out []models.TagPreference
	for id, w := range s.prefs[userID] {
		out = append(out, models.TagPreference{UserID: userID, TagID: id, TagName: s.tagNames[id], Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagID < out[j].TagID })
	return out, nil
}

func (s *memStore) TopPublicByViews(_ context.Context, limit int) ([]models.RouteSummary, error) {
	var out []models.RouteSummary
	for _, r := range s.routes {
		if r.IsPublic {
			out = append(out, models.RouteSummary{ID: r.ID, Name: r.Name, Views: r.Views})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) PublicMatchesByTags(_ context.Context, tagIDs []int64) ([]models.RouteTagMatch, error) {
	want := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		want[id] = true
	}
	var ids []int64
	for id := range s.routes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.RouteTagMatch
	for _, id := range ids {
		r := s.routes[id]
		if !r.IsPublic {
			continue
		}
		for _, tid := range s.routeTags[id] {
			if want[tid] {
				out = append(out, models.RouteTagMatch{
					RouteID: id, Name: r.Name, Views: r.Views, TagID: tid, TagName: s.tagNames[tid],
				})
			}
		}
	}
	return out, nil
}

// mockPreferenceWriter records calls and fails the test on unconfigured use.
type mockPreferenceWriter struct {
	t                    *testing.T
	applyInteractionFunc func(ctx context.Context, userID int64, tagIDs []int64, step, decayRate float64) error
	setWeightsFunc       func(ctx context.Context, userID int64, tagNames []string, weight float64) ([]models.Tag, error)

	applyInteractionCalls int
}

func (m *mockPreferenceWriter) ApplyInteraction(ctx context.Context, userID int64, tagIDs []int64, step, decayRate float64) error {
	m.applyInteractionCalls++
	if m.applyInteractionFunc == nil {
		m.t.Fatal("ApplyInteraction called but not configured in test - mock requires explicit setup")
	}
	return m.applyInteractionFunc(ctx, userID, tagIDs, step, decayRate)
}

func (m *mockPreferenceWriter) SetWeights(ctx context.Context, userID int64, tagNames []string, weight float64) ([]models.Tag, error) {
	if m.setWeightsFunc == nil {
		m.t.Fatal("SetWeights called but not configured in test - mock requires explicit setup")
	}
	return m.setWeightsFunc(ctx, userID, tagNames, weight)
}

var (
	_ users            = (*memStore)(nil)
	_ routeTags        = (*memStore)(nil)
	_ preferenceWriter = (*memStore)(nil)
	_ preferenceReader = (*memStore)(nil)
	_ candidateSource  = (*memStore)(nil)
	_ preferenceWriter = (*mockPreferenceWriter)(nil)
)
