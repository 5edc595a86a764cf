package service

import (
	"context"
	"errors"
	"fmt"

	"halal-directory/internal/domain"
	"halal-directory/internal/geocoding"
	"halal-directory/internal/metrics"
	"halal-directory/internal/phone"
	"halal-directory/internal/repository"

	"go.uber.org/zap"
)

const msgLocationUnresolved = "Could not resolve coordinates for the given address"

// ListingService defines the interface for listing business logic
type ListingService interface {
	Create(ctx context.Context, service *domain.Service, image []byte) (*domain.Service, error)
	Update(ctx context.Context, id int64, update domain.ServiceUpdate) (*domain.Service, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type listingService struct {
	services   repository.ServiceRepository
	categories repository.CategoryRepository
	geocoder   Geocoder
	uploader   ImageUploader
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewListingService creates a new instance of ListingService. uploader may be nil,
// in which case submitted images are ignored.
func NewListingService(
	services repository.ServiceRepository,
	categories repository.CategoryRepository,
	geocoder Geocoder,
	uploader ImageUploader,
	m *metrics.Metrics,
	logger *zap.Logger,
) ListingService {
	return &listingService{
		services:   services,
		categories: categories,
		geocoder:   geocoder,
		uploader:   uploader,
		metrics:    m,
		logger:     logger,
	}
}

// Create geocodes the address, stores the listing and then uploads the image.
// A failed upload leaves the listing without an image.
func (s *listingService) Create(ctx context.Context, svc *domain.Service, image []byte) (*domain.Service, error) {
	normalized, err := phone.Normalize(svc.PhoneNumber, svc.Country)
	if err != nil {
		return nil, newValidationError("phoneNumber", "Phone number is not valid")
	}
	svc.PhoneNumber = normalized

	if err := s.checkCategory(ctx, svc.CategoryID); err != nil {
		return nil, err
	}

	// Coordinates are always derived from the address
	svc.Location = nil
	if CityState(svc.City, svc.State) != "" {
		coords, err := s.resolveAddress(ctx, svc.StreetAddress, svc.City, svc.State, svc.PostalCode, svc.Country)
		if err != nil {
			return nil, err
		}
		svc.Location = &coords
	}

	if err := s.services.Create(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, newValidationError("categoryId", "Category does not exist")
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	s.metrics.RecordServiceCreated()

	if len(image) > 0 && s.uploader != nil {
		s.attachImage(ctx, svc.ID, image)
	}

	created, err := s.services.FindByID(ctx, svc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created service: %w", err)
	}
	return created, nil
}

func (s *listingService) attachImage(ctx context.Context, id int64, image []byte) {
	imageURL, err := s.uploader.UploadServiceImage(ctx, id, image)
	if err != nil {
		s.logger.Warn("Image upload failed", zap.Int64("service_id", id), zap.Error(err))
		return
	}
	if err := s.services.SetImageURL(ctx, id, imageURL); err != nil {
		s.logger.Warn("Failed to record image url", zap.Int64("service_id", id), zap.Error(err))
	}
}

// Update applies a partial update. Address changes re-resolve the stored coordinates.
func (s *listingService) Update(ctx context.Context, id int64, update domain.ServiceUpdate) (*domain.Service, error) {
	if update.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	existing, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.PhoneNumber != nil {
		country := existing.Country
		if update.Country != nil {
			country = *update.Country
		}
		normalized, err := phone.Normalize(*update.PhoneNumber, country)
		if err != nil {
			return nil, newValidationError("phoneNumber", "Phone number is not valid")
		}
		update.PhoneNumber = &normalized
	}

	if update.CategoryID != nil {
		if err := s.checkCategory(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
	}

	if update.TouchesAddress() && update.Location == nil {
		street, city, state, postal, country := mergeAddress(existing, update)
		if CityState(city, state) != "" {
			coords, err := s.resolveAddress(ctx, street, city, state, postal, country)
			if err != nil {
				return nil, err
			}
			update.Location = &coords
		}
	}

	updated, err := s.services.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, newValidationError("categoryId", "Category does not exist")
		}
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	return updated, nil
}

// GetByID returns a listing with its category
func (s *listingService) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	return s.services.FindByID(ctx, id)
}

func (s *listingService) checkCategory(ctx context.Context, id int64) error {
	exists, err := s.categories.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return newValidationError("categoryId", "Category does not exist")
	}
	return nil
}

// resolveAddress tries the full address first and falls back to "city, state"
func (s *listingService) resolveAddress(ctx context.Context, street, city, state, postal, country string) (domain.Coordinates, error) {
	candidates := []string{FormatAddress(street, city, state, postal, country)}
	if cs := CityState(city, state); cs != candidates[0] {
		candidates = append(candidates, cs)
	}

	coords, err := s.geocoder.ResolveFirst(ctx, candidates...)
	if err != nil {
		if errors.Is(err, geocoding.ErrLocationNotFound) {
			return domain.Coordinates{}, newValidationError("city", msgLocationUnresolved)
		}
		return domain.Coordinates{}, fmt.Errorf("failed to geocode address: %w", err)
	}
	return coords, nil
}

func mergeAddress(existing *domain.Service, u domain.ServiceUpdate) (street, city, state, postal, country string) {
	pick := func(v *string, fallback string) string {
		if v != nil {
			return *v
		}
		return fallback
	}
	return pick(u.StreetAddress, existing.StreetAddress),
		pick(u.City, existing.City),
		pick(u.State, existing.State),
		pick(u.PostalCode, existing.PostalCode),
		pick(u.Country, existing.Country)
}
