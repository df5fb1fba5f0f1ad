package handlers

import (
	"context"
	"net/http"

	"github.com/campify/campify-api/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TagLister reads the tag catalog.
type TagLister interface {
	List(ctx context.Context) ([]models.Tag, error)
}

// TagHandler serves the tag catalog
type TagHandler struct {
	tags   TagLister
	logger *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags TagLister, logger *zap.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// RegisterRoutes registers tag endpoints on a router already prefixed with /tags.
func (h *TagHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTags).Methods(http.MethodGet)
}

// ListTags returns every catalog tag ordered by name.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, err, "Tags not found", "Failed to retrieve tags")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}
