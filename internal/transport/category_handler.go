package transport

import (
	"net/http"

	"halal-directory/internal/middleware"
	"halal-directory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryHandler serves the category tree
type CategoryHandler struct {
	categories service.CategoryService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// RegisterRoutes registers the category route
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.List)
}

// List returns root categories, or the requested ids, each with subcategories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, ok := parseIDList(r.URL.Query().Get("ids"))
	if !ok {
		middleware.RespondWithFieldError(w, "ids", "Must be a comma-separated list of positive integers")
		return
	}

	categories, err := h.categories.List(r.Context(), ids)
	if err != nil {
		respondServiceError(w, h.logger, err, "list_categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToCategoryResponses(categories))
}
