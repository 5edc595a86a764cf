package transport

import (
	"encoding/json"
	"strings"
	"time"

	"halal-directory/internal/domain"
)

// CategoryResponse is the wire form of a category
type CategoryResponse struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	ParentID      *int64             `json:"parentId"`
	Subcategories []CategoryResponse `json:"subcategories,omitempty"`
}

// ServiceResponse is the wire form of a listing. Latitude and longitude are null together.
type ServiceResponse struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	CategoryID       int64             `json:"categoryId"`
	Category         *CategoryResponse `json:"category,omitempty"`
	StreetAddress    string            `json:"streetAddress"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	PostalCode       string            `json:"postalCode"`
	Country          string            `json:"country"`
	Latitude         *float64          `json:"latitude"`
	Longitude        *float64          `json:"longitude"`
	PhoneNumber      string            `json:"phoneNumber"`
	Website          *string           `json:"website"`
	Email            *string           `json:"email"`
	Hours            json.RawMessage   `json:"hours"`
	IsHalalCertified bool              `json:"isHalalCertified"`
	AverageRating    float64           `json:"averageRating"`
	ReviewCount      int               `json:"reviewCount"`
	ImageURL         *string           `json:"imageUrl"`
	IsClaimed        bool              `json:"isClaimed"`
	DistanceMeters   *float64          `json:"distanceMeters,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// CreateServiceRequest is the body of POST /api/services/add, as JSON or form fields
type CreateServiceRequest struct {
	Name             string          `json:"name" form:"name" validate:"required,max=255"`
	Description      string          `json:"description" form:"description" validate:"required"`
	CategoryID       int64           `json:"categoryId" form:"categoryId" validate:"required,gt=0"`
	StreetAddress    string          `json:"streetAddress" form:"streetAddress" validate:"required,max=255"`
	City             string          `json:"city" form:"city" validate:"required,max=100"`
	State            string          `json:"state" form:"state" validate:"required,max=100"`
	PostalCode       string          `json:"postalCode" form:"postalCode" validate:"required,max=20"`
	Country          string          `json:"country" form:"country" validate:"required,max=100"`
	PhoneNumber      string          `json:"phoneNumber" form:"phoneNumber" validate:"required"`
	Website          *string         `json:"website" form:"website" validate:"omitempty,url"`
	Email            *string         `json:"email" form:"email" validate:"omitempty,email"`
	Hours            json.RawMessage `json:"hours" form:"hours"`
	IsHalalCertified bool            `json:"isHalalCertified" form:"isHalalCertified"`
}

// UpdateServiceRequest is the body of PUT /api/services/{id}; absent fields are left unchanged
type UpdateServiceRequest struct {
	Name             *string         `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string         `json:"description"`
	CategoryID       *int64          `json:"categoryId" validate:"omitempty,gt=0"`
	StreetAddress    *string         `json:"streetAddress" validate:"omitempty,max=255"`
	City             *string         `json:"city" validate:"omitempty,min=1,max=100"`
	State            *string         `json:"state" validate:"omitempty,min=1,max=100"`
	PostalCode       *string         `json:"postalCode" validate:"omitempty,max=20"`
	Country          *string         `json:"country" validate:"omitempty,max=100"`
	PhoneNumber      *string         `json:"phoneNumber" validate:"omitempty,min=1"`
	Website          *string         `json:"website" validate:"omitempty,url"`
	Email            *string         `json:"email" validate:"omitempty,email"`
	Hours            json.RawMessage `json:"hours"`
	IsHalalCertified *bool           `json:"isHalalCertified"`
	ImageURL         *string         `json:"imageUrl" validate:"omitempty,url"`
}

// ClaimBusinessRequest is the body of POST /api/services/claim-business/{id}
type ClaimBusinessRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber string  `json:"phoneNumber" validate:"required"`
	Position    string  `json:"position" validate:"required,max=100"`
	ProofURL    *string `json:"proofUrl" validate:"omitempty,url"`
}

// ToCategoryResponse maps a category and its subcategories
func ToCategoryResponse(c domain.Category) CategoryResponse {
	resp := CategoryResponse{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
	if len(c.Subcategories) > 0 {
		resp.Subcategories = make([]CategoryResponse, 0, len(c.Subcategories))
		for _, sub := range c.Subcategories {
			resp.Subcategories = append(resp.Subcategories, ToCategoryResponse(sub))
		}
	}
	return resp
}

// ToCategoryResponses maps a category list; the result is never nil
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, ToCategoryResponse(c))
	}
	return out
}

// ToServiceResponse maps a listing to its wire form
func ToServiceResponse(s *domain.Service) ServiceResponse {
	resp := ServiceResponse{
		ID:               s.ID,
		Name:             s.Name,
		Description:      s.Description,
		CategoryID:       s.CategoryID,
		StreetAddress:    s.StreetAddress,
		City:             s.City,
		State:            s.State,
		PostalCode:       s.PostalCode,
		Country:          s.Country,
		PhoneNumber:      s.PhoneNumber,
		Website:          s.Website,
		Email:            s.Email,
		Hours:            s.Hours,
		IsHalalCertified: s.IsHalalCertified,
		AverageRating:    s.AverageRating,
		ReviewCount:      s.ReviewCount,
		ImageURL:         s.ImageURL,
		IsClaimed:        s.IsClaimed,
		DistanceMeters:   s.DistanceMeters,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if len(resp.Hours) == 0 {
		resp.Hours = json.RawMessage("null")
	}
	if s.Category != nil {
		c := CategoryResponse{ID: s.Category.ID, Name: s.Category.Name, ParentID: s.Category.ParentID}
		resp.Category = &c
	}
	if s.Location != nil {
		lat, lng := s.Location.Latitude, s.Location.Longitude
		resp.Latitude, resp.Longitude = &lat, &lng
	}
	return resp
}

// ToServiceResponses maps a page of listings; the result is never nil
func ToServiceResponses(services []*domain.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, ToServiceResponse(s))
	}
	return out
}

// ToDomain converts a create request. Location is left for the geocoder.
func (r CreateServiceRequest) ToDomain() *domain.Service {
	svc := &domain.Service{
		Name:             strings.TrimSpace(r.Name),
		Description:      r.Description,
		CategoryID:       r.CategoryID,
		StreetAddress:    strings.TrimSpace(r.StreetAddress),
		City:             strings.TrimSpace(r.City),
		State:            strings.TrimSpace(r.State),
		PostalCode:       strings.TrimSpace(r.PostalCode),
		Country:          strings.TrimSpace(r.Country),
		PhoneNumber:      r.PhoneNumber,
		Website:          emptyToNil(r.Website),
		Email:            emptyToNil(r.Email),
		Hours:            r.Hours,
		IsHalalCertified: r.IsHalalCertified,
	}
	return svc
}

// ToDomain converts an update request. A JSON null for hours clears nothing and is ignored.
func (r UpdateServiceRequest) ToDomain() domain.ServiceUpdate {
	u := domain.ServiceUpdate{
		Name:             r.Name,
		Description:      r.Description,
		CategoryID:       r.CategoryID,
		StreetAddress:    r.StreetAddress,
		City:             r.City,
		State:            r.State,
		PostalCode:       r.PostalCode,
		Country:          r.Country,
		PhoneNumber:      r.PhoneNumber,
		Website:          r.Website,
		Email:            r.Email,
		IsHalalCertified: r.IsHalalCertified,
		ImageURL:         r.ImageURL,
	}
	if len(r.Hours) > 0 && string(r.Hours) != "null" {
		u.Hours = r.Hours
	}
	return u
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
