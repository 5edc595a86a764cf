package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"halal-directory/internal/domain"
)

var (
	ErrClaimNotFound = errors.New("claim not found")
)

// ClaimRepository defines the interface for business claim data access
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.BusinessClaim) error
	FindByToken(ctx context.Context, token string) (*domain.BusinessClaim, error)
}

type claimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a new instance of ClaimRepository
func NewClaimRepository(db *sql.DB) ClaimRepository {
	return &claimRepository{db: db}
}

// Create stores a pending claim
func (r *claimRepository) Create(ctx context.Context, claim *domain.BusinessClaim) error {
	query := `
		INSERT INTO business_claims (
			service_id, claimant_user_id, claimant_name, claimant_email, claimant_phone,
			position, proof_url, verification_token, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	if claim.Status == "" {
		claim.Status = domain.ClaimStatusPending
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		claim.ServiceID,
		claim.ClaimantUserID,
		claim.ClaimantName,
		claim.ClaimantEmail,
		claim.ClaimantPhone,
		nullIfEmpty(claim.Position),
		claim.ProofURL,
		claim.VerificationToken,
		string(claim.Status),
	).Scan(&claim.ID, &claim.CreatedAt)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// FindByToken retrieves a claim by its verification token
func (r *claimRepository) FindByToken(ctx context.Context, token string) (*domain.BusinessClaim, error) {
	query := `
		SELECT id, service_id, claimant_user_id, claimant_name, claimant_email, claimant_phone,
			position, proof_url, verification_token, status, created_at
		FROM business_claims
		WHERE verification_token = $1
	`

	var (
		claim    domain.BusinessClaim
		position sql.NullString
		proofURL sql.NullString
		status   string
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&claim.ID,
		&claim.ServiceID,
		&claim.ClaimantUserID,
		&claim.ClaimantName,
		&claim.ClaimantEmail,
		&claim.ClaimantPhone,
		&position,
		&proofURL,
		&claim.VerificationToken,
		&status,
		&claim.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to find claim by token: %w", err)
	}

	claim.Position = position.String
	if proofURL.Valid {
		claim.ProofURL = &proofURL.String
	}
	claim.Status = domain.ClaimStatus(status)

	return &claim, nil
}
