package domain

import (
	"encoding/json"
	"time"
)

// Coordinates is a resolved WGS84 position
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Service represents a business listing in the directory.
// Location is nil until the address has been geocoded; latitude, longitude
// and the stored geography point are always written together from it.
type Service struct {
	ID               int64
	Name             string
	Description      string
	CategoryID       int64
	Category         *Category
	StreetAddress    string
	City             string
	State            string
	PostalCode       string
	Country          string
	Location         *Coordinates
	PhoneNumber      string
	Website          *string
	Email            *string
	Hours            json.RawMessage
	IsHalalCertified bool
	AverageRating    float64
	ReviewCount      int
	ImageURL         *string
	IsClaimed        bool
	// DistanceMeters is only populated by proximity queries
	DistanceMeters *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ServiceUpdate carries the fields of a partial update; nil means "leave unchanged"
type ServiceUpdate struct {
	Name             *string
	Description      *string
	CategoryID       *int64
	StreetAddress    *string
	City             *string
	State            *string
	PostalCode       *string
	Country          *string
	PhoneNumber      *string
	Website          *string
	Email            *string
	Hours            json.RawMessage
	IsHalalCertified *bool
	ImageURL         *string
	Location         *Coordinates
}

// IsEmpty reports whether no field is set
func (u ServiceUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil &&
		u.StreetAddress == nil && u.City == nil && u.State == nil &&
		u.PostalCode == nil && u.Country == nil && u.PhoneNumber == nil &&
		u.Website == nil && u.Email == nil && u.Hours == nil &&
		u.IsHalalCertified == nil && u.ImageURL == nil && u.Location == nil
}

// TouchesAddress reports whether any geocoded address component changes
func (u ServiceUpdate) TouchesAddress() bool {
	return u.StreetAddress != nil || u.City != nil || u.State != nil ||
		u.PostalCode != nil || u.Country != nil
}
