package handlers

import (
	"context"
	"net/http"

	"github.com/campify/campify-api/internal/metrics"
	"github.com/campify/campify-api/internal/models"
	"github.com/campify/campify-api/internal/queue"
	"github.com/campify/campify-api/internal/tagging"
	"github.com/campify/campify-api/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RouteStore is the route persistence the handler needs.
type RouteStore interface {
	Create(ctx context.Context, route *models.Route, tagNames []string) error
	GetByID(ctx context.Context, id int64) (*models.Route, error)
	ListPublic(ctx context.Context, routeType *models.RouteType, page, pageSize int) ([]models.RouteSummary, int, error)
	Update(ctx context.Context, route *models.Route) error
	IncrementViews(ctx context.Context, id int64) error
}

// JobEnqueuer accepts background jobs.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// RouteHandler handles route-related requests
type RouteHandler struct {
	routes        RouteStore
	jobs          JobEnqueuer
	retagOnUpdate bool
	logger        *zap.Logger
}

// NewRouteHandler creates a new route handler. jobs may be nil, in which
// case updates never trigger a retag.
func NewRouteHandler(routes RouteStore, jobs JobEnqueuer, retagOnUpdate bool, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{routes: routes, jobs: jobs, retagOnUpdate: retagOnUpdate, logger: logger}
}

// RegisterRoutes registers route endpoints on a router already prefixed with /routes.
func (h *RouteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListRoutes).Methods(http.MethodGet)
	r.HandleFunc("", h.CreateRoute).Methods(http.MethodPost)
	r.HandleFunc("/{id:[0-9]+}", h.GetRoute).Methods(http.MethodGet)
	r.HandleFunc("/{id:[0-9]+}", h.UpdateRoute).Methods(http.MethodPatch)
	r.HandleFunc("/{id:[0-9]+}/checklist", h.GetChecklist).Methods(http.MethodGet)
}

// CreateRouteRequest represents a create route request
type CreateRouteRequest struct {
	AuthorID        int64            `json:"author_id" validate:"required,gt=0"`
	Name            string           `json:"name" validate:"required,max=255"`
	Description     string           `json:"description" validate:"max=10000"`
	LocationArea    string           `json:"location_area" validate:"max=255"`
	LengthKm        *float64         `json:"length_km,omitempty" validate:"omitempty,gte=0"`
	Height          *int             `json:"height,omitempty"`
	DurationSeconds *int64           `json:"duration_seconds,omitempty" validate:"omitempty,gte=0,lte=31536000"`
	Difficulty      int              `json:"difficulty" validate:"required,min=1,max=4"`
	Type            models.RouteType `json:"type" validate:"required,route_type"`
	ChatLink        string           `json:"chat_link" validate:"omitempty,url,max=512"`
	IsPublic        *bool            `json:"is_public,omitempty"`
}

// UpdateRouteRequest represents a partial route update
type UpdateRouteRequest struct {
	Name            *string           `json:"name,omitempty" validate:"omitempty,max=255"`
	Description     *string           `json:"description,omitempty" validate:"omitempty,max=10000"`
	LocationArea    *string           `json:"location_area,omitempty" validate:"omitempty,max=255"`
	LengthKm        *float64          `json:"length_km,omitempty" validate:"omitempty,gte=0"`
	Height          *int              `json:"height,omitempty"`
	DurationSeconds *int64            `json:"duration_seconds,omitempty" validate:"omitempty,gte=0,lte=31536000"`
	Difficulty      *int              `json:"difficulty,omitempty" validate:"omitempty,min=1,max=4"`
	Type            *models.RouteType `json:"type,omitempty" validate:"omitempty,route_type"`
	ChatLink        *string           `json:"chat_link,omitempty" validate:"omitempty,url,max=512"`
	IsPublic        *bool             `json:"is_public,omitempty"`
}

// CreateRouteResponse is returned after a route is stored.
type CreateRouteResponse struct {
	ID   int64    `json:"id"`
	Tags []string `json:"tags"`
}

// ListRoutesResponse represents the paginated response for listing routes
type ListRoutesResponse struct {
	Routes     []models.RouteSummary `json:"routes"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"total_pages"`
}

// ChecklistResponse names the packing checklist for a route.
type ChecklistResponse struct {
	RouteID   int64             `json:"route_id"`
	Checklist tagging.Checklist `json:"checklist"`
}

// CreateRoute stores a route and its derived tags.
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req CreateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !authorizeUser(w, r, req.AuthorID) {
		return
	}

	route := &models.Route{
		AuthorID:        req.AuthorID,
		Name:            validation.SanitizeText(req.Name),
		Description:     validation.SanitizeText(req.Description),
		LocationArea:    validation.SanitizeText(req.LocationArea),
		LengthKm:        req.LengthKm,
		Height:          req.Height,
		DurationSeconds: req.DurationSeconds,
		Difficulty:      req.Difficulty,
		Type:            req.Type,
		ChatLink:        req.ChatLink,
		IsPublic:        true,
	}
	if req.IsPublic != nil {
		route.IsPublic = *req.IsPublic
	}
	if route.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
		return
	}

	tags := tagging.DeriveTags(route.TagFields())
	if err := h.routes.Create(r.Context(), route, tags); err != nil {
		respondStoreError(w, h.logger, err, "Author not found", "Failed to create route")
		return
	}
	metrics.RoutesTaggedTotal.WithLabelValues("create").Inc()

	h.logger.Info("route_created",
		zap.Int64("route_id", route.ID),
		zap.Int64("author_id", route.AuthorID),
		zap.Strings("tags", route.Tags),
	)
	respondJSON(w, http.StatusCreated, CreateRouteResponse{ID: route.ID, Tags: route.Tags})
}

// ListRoutes lists public routes, optionally filtered by type.
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	var routeType *models.RouteType
	if t := r.URL.Query().Get("type"); t != "" {
		rt, err := validation.ValidateRouteType(t)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		routeType = &rt
	}
	page, pageSize := pagination(r)

	routes, total, err := h.routes.ListPublic(r.Context(), routeType, page, pageSize)
	if err != nil {
		respondStoreError(w, h.logger, err, "Routes not found", "Failed to retrieve routes")
		return
	}
	if routes == nil {
		routes = []models.RouteSummary{}
	}

	totalPages := max((total+pageSize-1)/pageSize, 1)
	respondJSON(w, http.StatusOK, ListRoutesResponse{
		Routes:     routes,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetRoute returns a route and counts the view.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid route ID")
		return
	}

	ctx := r.Context()
	if err := h.routes.IncrementViews(ctx, id); err != nil {
		respondStoreError(w, h.logger, err, "Route not found", "Failed to retrieve route")
		return
	}
	route, err := h.routes.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, h.logger, err, "Route not found", "Failed to retrieve route")
		return
	}
	respondJSON(w, http.StatusOK, route)
}

// UpdateRoute applies a partial update. Tags are recomputed in the
// background only when retag-on-update is enabled.
func (h *RouteHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid route ID")
		return
	}

	var req UpdateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	route, err := h.routes.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, h.logger, err, "Route not found", "Failed to retrieve route")
		return
	}
	if !authorizeUser(w, r, route.AuthorID) {
		return
	}

	if req.Name != nil {
		name := validation.SanitizeText(*req.Name)
		if name == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
			return
		}
		route.Name = name
	}
	if req.Description != nil {
		route.Description = validation.SanitizeText(*req.Description)
	}
	if req.LocationArea != nil {
		route.LocationArea = validation.SanitizeText(*req.LocationArea)
	}
	if req.LengthKm != nil {
		route.LengthKm = req.LengthKm
	}
	if req.Height != nil {
		route.Height = req.Height
	}
	if req.DurationSeconds != nil {
		route.DurationSeconds = req.DurationSeconds
	}
	if req.Difficulty != nil {
		route.Difficulty = *req.Difficulty
	}
	if req.Type != nil {
		route.Type = *req.Type
	}
	if req.ChatLink != nil {
		route.ChatLink = *req.ChatLink
	}
	if req.IsPublic != nil {
		route.IsPublic = *req.IsPublic
	}

	if err := h.routes.Update(ctx, route); err != nil {
		respondStoreError(w, h.logger, err, "Route not found", "Failed to update route")
		return
	}

	if h.retagOnUpdate && h.jobs != nil {
		job := queue.NewRetagRouteJob(route.ID)
		if err := h.jobs.Enqueue(ctx, job); err != nil {
			// the update itself succeeded; the operator can retag later
			h.logger.Warn("failed_to_enqueue_retag", zap.Int64("route_id", route.ID), zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, route)
}

// GetChecklist returns the packing checklist kind for a route's tags.
func (h *RouteHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid route ID")
		return
	}

	route, err := h.routes.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, h.logger, err, "Route not found", "Failed to retrieve route")
		return
	}
	respondJSON(w, http.StatusOK, ChecklistResponse{RouteID: route.ID, Checklist: tagging.ChecklistFor(route.Tags)})
}
