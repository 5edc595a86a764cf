package service

import (
	"context"

	"halal-directory/internal/domain"
	"halal-directory/internal/email"
)

// Geocoder resolves location text; errors wrap geocoding.ErrLocationNotFound
// or geocoding.ErrProviderUnavailable.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (domain.Coordinates, error)
	ResolveFirst(ctx context.Context, candidates ...string) (domain.Coordinates, error)
}

// ImageUploader stores a listing image and returns its public URL
type ImageUploader interface {
	UploadServiceImage(ctx context.Context, serviceID int64, data []byte) (string, error)
}

// ClaimMailer delivers claim verification links
type ClaimMailer interface {
	SendClaimVerification(ctx context.Context, msg email.ClaimVerification) error
}
