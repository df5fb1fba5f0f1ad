package models

import (
	"math"
	"time"

	"github.com/campify/campify-api/internal/tagging"
)

// RouteType says whether a route uses prepared infrastructure or not.
type RouteType int

const (
	RouteTypeEquipped RouteType = tagging.RouteTypeEquipped
	RouteTypeWild     RouteType = tagging.RouteTypeWild
)

// ParseRouteType converts the query form ("equipped", "wild") to a RouteType.
func ParseRouteType(s string) (RouteType, bool) {
	switch s {
	case "equipped":
		return RouteTypeEquipped, true
	case "wild":
		return RouteTypeWild, true
	default:
		return 0, false
	}
}

// Route is a shared camping or hiking route.
type Route struct {
	ID              int64     `json:"id"`
	AuthorID        int64     `json:"author_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	LocationArea    string    `json:"location_area,omitempty"`
	LengthKm        *float64  `json:"length_km,omitempty"`
	Height          *int      `json:"height,omitempty"`
	DurationSeconds *int64    `json:"duration_seconds,omitempty"`
	Difficulty      int       `json:"difficulty"`
	Type            RouteType `json:"type"`
	ChatLink        string    `json:"chat_link,omitempty"`
	IsPublic        bool      `json:"is_public"`
	Views           int64     `json:"views"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Duration returns the route duration, or nil when it was not given.
// Values beyond what time.Duration can hold saturate at its maximum.
func (r *Route) Duration() *time.Duration {
	if r.DurationSeconds == nil {
		return nil
	}
	secs := *r.DurationSeconds
	d := time.Duration(math.MaxInt64)
	if secs < int64(d/time.Second) {
		d = time.Duration(secs) * time.Second
	}
	return &d
}

// TagFields returns the attributes the auto-tagger reads.
func (r *Route) TagFields() tagging.Fields {
	return tagging.Fields{
		Difficulty:  r.Difficulty,
		Type:        int(r.Type),
		Duration:    r.Duration(),
		Name:        r.Name,
		Description: r.Description,
	}
}

// RouteSummary is a route as returned by list and recommendation endpoints.
type RouteSummary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Difficulty int       `json:"difficulty"`
	Type       RouteType `json:"type"`
	Views      int64     `json:"views"`
	Score      float64   `json:"score,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
}

// RouteTagMatch is one (route, tag) pair joined for ranking. A route appears
// once per matching tag.
type RouteTagMatch struct {
	RouteID    int64
	Name       string
	Difficulty int
	Type       RouteType
	Views      int64
	TagID      int64
	TagName    string
}
