package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/middleware"
	"halal-directory/internal/repository"
	"halal-directory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "transport-test-secret"

type stubListings struct {
	created     *domain.Service
	createImage []byte
	createErr   error
	updated     domain.ServiceUpdate
	updateErr   error
	byID        map[int64]*domain.Service
}

func (s *stubListings) Create(ctx context.Context, svc *domain.Service, image []byte) (*domain.Service, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created, s.createImage = svc, image
	out := *svc
	out.ID = 1
	return &out, nil
}

func (s *stubListings) Update(ctx context.Context, id int64, update domain.ServiceUpdate) (*domain.Service, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if update.IsEmpty() {
		return nil, service.ErrNoFieldsToUpdate
	}
	s.updated = update
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := *existing
	if update.Name != nil {
		out.Name = *update.Name
	}
	return &out, nil
}

func (s *stubListings) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, ok := s.byID[id]
	if !ok {
		return nil, errServiceNotFound
	}
	return svc, nil
}

type stubSearch struct {
	lastQuery  service.SearchQuery
	lastCenter domain.Coordinates
	result     *service.SearchResult
	err        error
}

func (s *stubSearch) Search(ctx context.Context, q service.SearchQuery) (*service.SearchResult, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSearch) NewNearYou(ctx context.Context, center domain.Coordinates, page int) (*service.SearchResult, error) {
	s.lastCenter = center
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubClaims struct {
	last service.ClaimRequest
	err  error
}

func (s *stubClaims) Claim(ctx context.Context, req service.ClaimRequest) error {
	s.last = req
	return s.err
}

type stubCategories struct {
	lastIDs []int64
	result  []domain.Category
	err     error
}

func (s *stubCategories) List(ctx context.Context, ids []int64) ([]domain.Category, error) {
	s.lastIDs = ids
	return s.result, s.err
}

type fixture struct {
	listings   *stubListings
	search     *stubSearch
	claims     *stubClaims
	categories *stubCategories
	router     http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		listings:   &stubListings{byID: map[int64]*domain.Service{}},
		search:     &stubSearch{result: &service.SearchResult{Page: 1, PageSize: 10}},
		claims:     &stubClaims{},
		categories: &stubCategories{},
	}

	logger := zap.NewNop()
	r := chi.NewRouter()
	NewServiceHandler(f.listings, f.search, f.claims, logger).RegisterRoutes(r,
		middleware.AuthMiddleware(testJWTSecret, logger),
		middleware.RequireListingEditor(logger),
	)
	NewSearchHandler(f.search, logger).RegisterRoutes(r)
	NewCategoryHandler(f.categories, logger).RegisterRoutes(r)
	f.router = r
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func bearer(t *testing.T, subject, role string) string {
	t.Helper()
	claims := &middleware.ProviderClaims{Role: role}
	claims.Subject = subject
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func sampleService(id int64) *domain.Service {
	website := "https://crescent.example"
	return &domain.Service{
		ID:            id,
		Name:          "Crescent Grill",
		Description:   "Zabiha grill",
		CategoryID:    3,
		Category:      &domain.Category{ID: 3, Name: "Restaurants"},
		StreetAddress: "1 Main St",
		City:          "Springfield",
		State:         "IL",
		Country:       "USA",
		Location:      &domain.Coordinates{Latitude: 39.78172, Longitude: -89.650148},
		PhoneNumber:   "+12175550100",
		Website:       &website,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

var errServiceNotFound = repository.ErrServiceNotFound
