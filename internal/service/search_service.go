package service

import (
	"context"
	"fmt"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/geo"
	"halal-directory/internal/metrics"
	"halal-directory/internal/repository"
)

// NewNearYouWindow bounds how recent a listing must be to count as new
const NewNearYouWindow = 30 * 24 * time.Hour

// SearchQuery carries search input. Coordinates win over Location text.
type SearchQuery struct {
	Text        string
	Location    string
	Coordinates *domain.Coordinates
	Page        int
}

// SearchResult is one page of listings plus the independently counted total
type SearchResult struct {
	Services   []*domain.Service
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// SearchService defines the interface for proximity search
type SearchService interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	NewNearYou(ctx context.Context, center domain.Coordinates, page int) (*SearchResult, error)
}

type searchService struct {
	services repository.ServiceRepository
	geocoder Geocoder
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSearchService creates a new instance of SearchService
func NewSearchService(services repository.ServiceRepository, geocoder Geocoder, m *metrics.Metrics) SearchService {
	return &searchService{services: services, geocoder: geocoder, metrics: m, now: time.Now}
}

// Search resolves the center when needed and runs a text and/or radius search.
// Geocoding errors are returned wrapped so callers can tell not-found from unavailable.
func (s *searchService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	center := q.Coordinates
	if center == nil && q.Location != "" {
		coords, err := s.geocoder.Resolve(ctx, q.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search location: %w", err)
		}
		center = &coords
	}

	filter := repository.SearchFilter{
		Text:     q.Text,
		Center:   center,
		Page:     q.Page,
		PageSize: repository.DefaultPageSize,
	}
	if center != nil {
		filter.RadiusMeters = geo.SearchRadiusMeters
	}

	s.metrics.RecordSearch(center != nil)
	return s.run(ctx, filter)
}

// NewNearYou lists listings created in the last 30 days within the radius, newest first
func (s *searchService) NewNearYou(ctx context.Context, center domain.Coordinates, page int) (*SearchResult, error) {
	after := s.now().Add(-NewNearYouWindow)

	result, err := s.run(ctx, repository.SearchFilter{
		Center:         &center,
		RadiusMeters:   geo.SearchRadiusMeters,
		CreatedAfter:   &after,
		OrderByRecency: true,
		Page:           page,
		PageSize:       repository.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	if result.Total == 0 {
		return nil, ErrNoRecentServices
	}
	return result, nil
}

func (s *searchService) run(ctx context.Context, filter repository.SearchFilter) (*SearchResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	services, total, err := s.services.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}

	return &SearchResult{
		Services:   services,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}, nil
}
