package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"halal-directory/internal/domain"
	"halal-directory/internal/email"
	"halal-directory/internal/metrics"
	"halal-directory/internal/phone"
	"halal-directory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClaimRequest is an authenticated user's ownership assertion
type ClaimRequest struct {
	ServiceID   int64
	UserID      string
	Name        string
	Email       string
	PhoneNumber string
	Position    string
	ProofURL    *string
}

// ClaimService defines the interface for the business claim flow
type ClaimService interface {
	Claim(ctx context.Context, req ClaimRequest) error
}

type claimService struct {
	services  repository.ServiceRepository
	claims    repository.ClaimRepository
	mailer    ClaimMailer
	publicURL string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewClaimService creates a new instance of ClaimService. publicURL is the site
// origin used to build verification links.
func NewClaimService(
	services repository.ServiceRepository,
	claims repository.ClaimRepository,
	mailer ClaimMailer,
	publicURL string,
	m *metrics.Metrics,
	logger *zap.Logger,
) ClaimService {
	return &claimService{
		services:  services,
		claims:    claims,
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		metrics:   m,
		logger:    logger,
	}
}

// Claim records a pending claim and emails a verification link to the listing's address.
// The claim stays pending; confirming it is handled outside this service.
func (s *claimService) Claim(ctx context.Context, req ClaimRequest) error {
	listing, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return err
	}

	if listing.IsClaimed {
		return ErrAlreadyClaimed
	}
	if listing.Email == nil || *listing.Email == "" {
		return fmt.Errorf("%w: listing has no email on file", ErrInvalidClaim)
	}
	if !proofMatches(req, listing) {
		return fmt.Errorf("%w: contact details do not match the listing", ErrInvalidClaim)
	}

	claimantPhone, err := phone.Normalize(req.PhoneNumber, listing.Country)
	if err != nil {
		claimantPhone = req.PhoneNumber
	}

	claim := &domain.BusinessClaim{
		ServiceID:         listing.ID,
		ClaimantUserID:    req.UserID,
		ClaimantName:      req.Name,
		ClaimantEmail:     req.Email,
		ClaimantPhone:     claimantPhone,
		Position:          req.Position,
		ProofURL:          req.ProofURL,
		VerificationToken: uuid.NewString(),
		Status:            domain.ClaimStatusPending,
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return fmt.Errorf("failed to store claim: %w", err)
	}

	err = s.mailer.SendClaimVerification(ctx, email.ClaimVerification{
		ToEmail:      *listing.Email,
		ToName:       listing.Name,
		BusinessName: listing.Name,
		ClaimantName: req.Name,
		VerifyURL:    s.verifyURL(claim.VerificationToken),
	})
	if err != nil {
		return fmt.Errorf("failed to send claim verification: %w", err)
	}

	s.metrics.RecordClaimRequested()
	s.logger.Info("Business claim requested",
		zap.Int64("service_id", listing.ID),
		zap.Int64("claim_id", claim.ID),
		zap.String("user_id", req.UserID),
	)
	return nil
}

func (s *claimService) verifyURL(token string) string {
	return s.publicURL + "/claim-business/verify?" + url.Values{"token": {token}}.Encode()
}

// proofMatches accepts the listing phone number or an email at the listing website's domain
func proofMatches(req ClaimRequest, listing *domain.Service) bool {
	if phone.Same(req.PhoneNumber, listing.PhoneNumber, listing.Country) {
		return true
	}
	if listing.Website == nil {
		return false
	}
	domainPart := emailDomain(req.Email)
	return domainPart != "" && domainPart == websiteHost(*listing.Website)
}

func emailDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}

func websiteHost(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
