package handlers

import (
	"context"
	"net/http"

	"github.com/campify/campify-api/internal/models"
	"github.com/campify/campify-api/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UserStore is the user persistence the handler needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// PreferenceLister reads a user's stored weights.
type PreferenceLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.TagPreference, error)
}

// RouteRanker produces recommendations for a user.
type RouteRanker interface {
	Rank(ctx context.Context, userID int64) ([]models.RouteSummary, error)
}

// UserHandler handles user-scoped requests
type UserHandler struct {
	users  UserStore
	prefs  PreferenceLister
	ranker RouteRanker
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserStore, prefs PreferenceLister, ranker RouteRanker, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, prefs: prefs, ranker: ranker, logger: logger}
}

// RegisterRoutes registers user endpoints on a router already prefixed with /users.
func (h *UserHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/{user_id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/{user_id:[0-9]+}/preferences", h.ListPreferences).Methods(http.MethodGet)
	r.HandleFunc("/{user_id:[0-9]+}/recommendations", h.GetRecommendations).Methods(http.MethodGet)
}

// CreateUserRequest represents a create user request
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
}

// CreateUser registers a user.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := &models.User{Username: validation.SanitizeText(req.Username), Email: req.Email}
	if user.Username == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Username cannot be empty after sanitization")
		return
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		respondStoreError(w, h.logger, err, "User not found", "Failed to create user")
		return
	}
	h.logger.Info("user_created", zap.Int64("user_id", user.ID))
	respondJSON(w, http.StatusCreated, user)
}

// GetUser returns a user.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userFromPath(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondStoreError(w, h.logger, err, "User not found", "Failed to retrieve user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ListPreferences returns the user's tag weights, heaviest first.
func (h *UserHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userFromPath(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := h.users.GetByID(ctx, userID); err != nil {
		respondStoreError(w, h.logger, err, "User not found", "Failed to retrieve user")
		return
	}
	prefs, err := h.prefs.ListByUser(ctx, userID)
	if err != nil {
		respondStoreError(w, h.logger, err, "User not found", "Failed to retrieve preferences")
		return
	}
	if prefs == nil {
		prefs = []models.TagPreference{}
	}
	respondJSON(w, http.StatusOK, prefs)
}

// GetRecommendations ranks public routes for the user.
func (h *UserHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userFromPath(w, r)
	if !ok {
		return
	}

	routes, err := h.ranker.Rank(r.Context(), userID)
	if err != nil {
		respondStoreError(w, h.logger, err, "User not found", "Failed to compute recommendations")
		return
	}
	if routes == nil {
		routes = []models.RouteSummary{}
	}
	respondJSON(w, http.StatusOK, routes)
}

func (h *UserHandler) userFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return 0, false
	}
	if !authorizeUser(w, r, userID) {
		return 0, false
	}
	return userID, true
}
