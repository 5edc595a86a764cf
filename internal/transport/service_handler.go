package transport

import (
	"net/http"
	"strconv"

	"halal-directory/internal/middleware"
	"halal-directory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const claimAcknowledgement = "Verification email sent to the business email on file"

// ServiceHandler handles HTTP requests for listings
type ServiceHandler struct {
	listings service.ListingService
	search   service.SearchService
	claims   service.ClaimService
	logger   *zap.Logger
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(
	listings service.ListingService,
	search service.SearchService,
	claims service.ClaimService,
	logger *zap.Logger,
) *ServiceHandler {
	return &ServiceHandler{
		listings: listings,
		search:   search,
		claims:   claims,
		logger:   logger,
	}
}

// RegisterRoutes registers all listing routes. editorMiddleware runs after
// authMiddleware on routes that modify a listing.
func (h *ServiceHandler) RegisterRoutes(r chi.Router, authMiddleware, editorMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/services", func(r chi.Router) {
		// Public routes
		r.Get("/new-near-you", h.NewNearYou)
		r.Post("/", h.Create)
		r.Post("/add", h.Create)
		r.Get("/{id}", h.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/claim-business/{id}", h.Claim)
			r.With(editorMiddleware).Put("/{id}", h.Update)
		})
	})
}

// NewNearYou lists listings added in the last 30 days near lat/lon
func (h *ServiceHandler) NewNearYou(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
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

	result, err := h.search.NewNearYou(r.Context(), *center, page)
	if err != nil {
		respondServiceError(w, h.logger, err, "new_near_you")
		return
	}

	writePage(w, result)
}

// Get returns one listing
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	svc, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get_service")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToServiceResponse(svc))
}

// Create adds a listing from a JSON or multipart body
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, image, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	created, err := h.listings.Create(r.Context(), req.ToDomain(), image)
	if err != nil {
		respondServiceError(w, h.logger, err, "create_service")
		return
	}

	h.logger.Info("Service created",
		zap.Int64("service_id", created.ID),
		zap.Bool("geocoded", created.Location != nil),
		zap.Bool("has_image", created.ImageURL != nil),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, ToServiceResponse(created))
}

// Update applies a partial update
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	var req UpdateServiceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update validation failed", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	updated, err := h.listings.Update(r.Context(), id, req.ToDomain())
	if err != nil {
		respondServiceError(w, h.logger, err, "update_service")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	h.logger.Info("Service updated", zap.Int64("service_id", id), zap.String("user_id", userID))
	middleware.RespondWithJSON(w, http.StatusOK, ToServiceResponse(updated))
}

// Claim starts the ownership claim flow for the authenticated user
func (h *ServiceHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ClaimBusinessRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	err := h.claims.Claim(r.Context(), service.ClaimRequest{
		ServiceID:   id,
		UserID:      userID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Position:    req.Position,
		ProofURL:    emptyToNil(req.ProofURL),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "claim_business")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, claimAcknowledgement)
}

// writePage writes a result page as an array with its totals in headers
func writePage(w http.ResponseWriter, result *service.SearchResult) {
	w.Header().Set(middleware.HeaderTotalCount, strconv.Itoa(result.Total))
	w.Header().Set(middleware.HeaderTotalPages, strconv.Itoa(result.TotalPages))
	middleware.RespondWithJSON(w, http.StatusOK, ToServiceResponses(result.Services))
}
