package domain

import "time"

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusVerified ClaimStatus = "verified"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// BusinessClaim is an ownership assertion awaiting email verification
type BusinessClaim struct {
	ID                int64
	ServiceID         int64
	ClaimantUserID    string
	ClaimantName      string
	ClaimantEmail     string
	ClaimantPhone     string
	Position          string
	ProofURL          *string
	VerificationToken string
	Status            ClaimStatus
	CreatedAt         time.Time
}
