package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateForeignKeyViolation = "23503"

	constraintServiceCategory = "fk_services_category"
	constraintClaimService    = "fk_business_claims_service"
)

// foreignKeyViolation returns the name of the violated foreign key, or ""
func foreignKeyViolation(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateForeignKeyViolation {
		return pgErr.ConstraintName
	}
	return ""
}

// mapConstraintError converts foreign key violations into the matching not-found sentinel
func mapConstraintError(err error) error {
	switch foreignKeyViolation(err) {
	case constraintServiceCategory:
		return ErrCategoryNotFound
	case constraintClaimService:
		return ErrServiceNotFound
	}
	return nil
}
