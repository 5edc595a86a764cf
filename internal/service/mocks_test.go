package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/email"
	"halal-directory/internal/geocoding"
	"halal-directory/internal/repository"
)

// Mock repositories for testing
type mockServiceRepository struct {
	mu         sync.Mutex
	services   map[int64]*domain.Service
	nextID     int64
	lastFilter repository.SearchFilter
	lastUpdate *domain.ServiceUpdate
	searchErr  error
}

func newMockServiceRepository() *mockServiceRepository {
	return &mockServiceRepository{services: make(map[int64]*domain.Service), nextID: 1}
}

func (m *mockServiceRepository) Create(ctx context.Context, svc *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	svc.ID = m.nextID
	m.nextID++
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	stored := *svc
	m.services[svc.ID] = &stored
	return nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	svc, ok := m.services[id]
	if !ok {
		return nil, repository.ErrServiceNotFound
	}
	out := *svc
	return &out, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id int64, u domain.ServiceUpdate) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate = &u
	svc, ok := m.services[id]
	if !ok {
		return nil, repository.ErrServiceNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&svc.Name, u.Name)
	set(&svc.Description, u.Description)
	set(&svc.StreetAddress, u.StreetAddress)
	set(&svc.City, u.City)
	set(&svc.State, u.State)
	set(&svc.PostalCode, u.PostalCode)
	set(&svc.Country, u.Country)
	set(&svc.PhoneNumber, u.PhoneNumber)
	if u.CategoryID != nil {
		svc.CategoryID = *u.CategoryID
	}
	if u.Website != nil {
		svc.Website = u.Website
	}
	if u.Email != nil {
		svc.Email = u.Email
	}
	if u.Hours != nil {
		svc.Hours = u.Hours
	}
	if u.IsHalalCertified != nil {
		svc.IsHalalCertified = *u.IsHalalCertified
	}
	if u.ImageURL != nil {
		svc.ImageURL = u.ImageURL
	}
	if u.Location != nil {
		loc := *u.Location
		svc.Location = &loc
	}
	out := *svc
	return &out, nil
}

func (m *mockServiceRepository) SetImageURL(ctx context.Context, id int64, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	svc, ok := m.services[id]
	if !ok {
		return repository.ErrServiceNotFound
	}
	svc.ImageURL = &imageURL
	return nil
}

func (m *mockServiceRepository) Search(ctx context.Context, f repository.SearchFilter) ([]*domain.Service, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	out := []*domain.Service{}
	for _, svc := range m.services {
		c := *svc
		out = append(out, &c)
	}
	return out, len(out), nil
}

type mockCategoryRepository struct {
	ids map[int64]bool
}

func newMockCategoryRepository(ids ...int64) *mockCategoryRepository {
	m := &mockCategoryRepository{ids: make(map[int64]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	c.ID = int64(len(m.ids) + 1)
	m.ids[c.ID] = true
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, ids []int64) ([]domain.Category, error) {
	out := []domain.Category{}
	for id := range m.ids {
		out = append(out, domain.Category{ID: id})
	}
	return out, nil
}

func (m *mockCategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return m.ids[id], nil
}

type mockClaimRepository struct {
	claims []*domain.BusinessClaim
}

func (m *mockClaimRepository) Create(ctx context.Context, c *domain.BusinessClaim) error {
	c.ID = int64(len(m.claims) + 1)
	m.claims = append(m.claims, c)
	return nil
}

func (m *mockClaimRepository) FindByToken(ctx context.Context, token string) (*domain.BusinessClaim, error) {
	for _, c := range m.claims {
		if c.VerificationToken == token {
			return c, nil
		}
	}
	return nil, repository.ErrClaimNotFound
}

// fakeGeocoder answers from a fixed table; unknown text is not found
type fakeGeocoder struct {
	known       map[string]domain.Coordinates
	unavailable bool
	asked       []string
}

func (g *fakeGeocoder) Resolve(ctx context.Context, location string) (domain.Coordinates, error) {
	g.asked = append(g.asked, location)
	if g.unavailable {
		return domain.Coordinates{}, geocoding.ErrProviderUnavailable
	}
	if c, ok := g.known[location]; ok {
		return c, nil
	}
	return domain.Coordinates{}, geocoding.ErrLocationNotFound
}

func (g *fakeGeocoder) ResolveFirst(ctx context.Context, candidates ...string) (domain.Coordinates, error) {
	for _, c := range candidates {
		coords, err := g.Resolve(ctx, c)
		if err == nil {
			return coords, nil
		}
		if !errors.Is(err, geocoding.ErrLocationNotFound) {
			return domain.Coordinates{}, err
		}
	}
	return domain.Coordinates{}, geocoding.ErrLocationNotFound
}

type fakeUploader struct {
	url string
	err error
}

func (u *fakeUploader) UploadServiceImage(ctx context.Context, id int64, data []byte) (string, error) {
	return u.url, u.err
}

type fakeMailer struct {
	sent []email.ClaimVerification
	err  error
}

func (m *fakeMailer) SendClaimVerification(ctx context.Context, msg email.ClaimVerification) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
