package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"halal-directory/internal/geocoding"
	"halal-directory/internal/middleware"
	"halal-directory/internal/repository"
	"halal-directory/internal/service"

	"go.uber.org/zap"
)

// respondServiceError maps service-layer errors to HTTP responses. Anything
// unclassified is logged and returned as a bare 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, op string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		middleware.RespondWithError(w, http.StatusBadRequest, "No fields to update")
	case errors.Is(err, repository.ErrServiceNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Service not found")
	case errors.Is(err, service.ErrNoRecentServices):
		middleware.RespondWithError(w, http.StatusNotFound, "No new services found near this location")
	case errors.Is(err, geocoding.ErrLocationNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Location not found")
	case errors.Is(err, geocoding.ErrProviderUnavailable):
		logger.Error("Geocoding provider unavailable", zap.String("operation", op), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Geocoding service unavailable")
	case errors.Is(err, service.ErrAlreadyClaimed):
		middleware.RespondWithError(w, http.StatusForbidden, "This business has already been claimed")
	case errors.Is(err, service.ErrInvalidClaim):
		middleware.RespondWithError(w, http.StatusForbidden, "Claim could not be verified against the business record")
	default:
		logger.Error("Request failed", zap.String("operation", op), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondDecodeError answers a failed DecodeAndValidate
func respondDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, middleware.ErrMalformedBody) {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePage defaults to 1; anything else must be an integer in [1, repository.MaxPage]
func parsePage(raw string) (int, bool) {
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > repository.MaxPage {
		return 0, false
	}
	return page, true
}

// parseIDList parses "1,2,3"; empty input means no filter
func parseIDList(raw string) ([]int64, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, ok := parseID(strings.TrimSpace(p))
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
