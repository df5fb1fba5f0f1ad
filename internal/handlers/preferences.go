package handlers

import (
	"context"
	"net/http"

	"github.com/campify/campify-api/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PreferenceUpdater changes a user's tag weights.
type PreferenceUpdater interface {
	Reinforce(ctx context.Context, userID, routeID int64) error
	Seed(ctx context.Context, userID int64, tagNames []string) ([]models.Tag, error)
}

// PreferenceHandler handles preference writes
type PreferenceHandler struct {
	updater PreferenceUpdater
	logger  *zap.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(updater PreferenceUpdater, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{updater: updater, logger: logger}
}

// RegisterRoutes registers preference endpoints on a router already prefixed with /preferences.
func (h *PreferenceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.SeedPreferences).Methods(http.MethodPost)
	r.HandleFunc("/interactions", h.RecordInteraction).Methods(http.MethodPost)
}

// SeedPreferencesRequest sets onboarding interests.
type SeedPreferencesRequest struct {
	UserID int64    `json:"user_id" validate:"required,gt=0"`
	Tags   []string `json:"tags" validate:"required,max=50,dive,tag_name"`
}

// InteractionRequest records a positive user/route interaction.
type InteractionRequest struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	RouteID int64 `json:"route_id" validate:"required,gt=0"`
}

// SeedPreferences sets the listed tags to the onboarding weight.
func (h *PreferenceHandler) SeedPreferences(w http.ResponseWriter, r *http.Request) {
	var req SeedPreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !authorizeUser(w, r, req.UserID) {
		return
	}

	tags, err := h.updater.Seed(r.Context(), req.UserID, req.Tags)
	if err != nil {
		respondStoreError(w, h.logger, err, "User not found", "Failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user_id": req.UserID, "tags": models.TagNames(tags)})
}

// RecordInteraction reinforces the route's tags for the user.
func (h *PreferenceHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !authorizeUser(w, r, req.UserID) {
		return
	}

	if err := h.updater.Reinforce(r.Context(), req.UserID, req.RouteID); err != nil {
		respondStoreError(w, h.logger, err, "User or route not found", "Failed to update preferences")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user_id": req.UserID, "route_id": req.RouteID})
}
