package transport

import (
	"net/http"
	"strings"

	"halal-directory/internal/middleware"
	"halal-directory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SearchHandler serves text and proximity search
type SearchHandler struct {
	search service.SearchService
	logger *zap.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// RegisterRoutes registers the search route
func (h *SearchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/search", h.Search)
}

// Search handles GET /api/search?query=&location=&lat=&lon=&page=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	text := strings.TrimSpace(q.Get("query"))
	if text == "" {
		text = strings.TrimSpace(q.Get("q"))
	}

	center, errs := queryCoordinates(q)
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	page, ok := parsePage(q.Get("page"))
	if !ok {
		middleware.RespondWithFieldError(w, "page", "Must be a positive integer")
		return
	}

	result, err := h.search.Search(r.Context(), service.SearchQuery{
		Text:        text,
		Location:    strings.TrimSpace(q.Get("location")),
		Coordinates: center,
		Page:        page,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "search")
		return
	}

	writePage(w, result)
}
