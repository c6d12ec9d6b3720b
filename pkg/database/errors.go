package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps CHECK constraint names to field level validation errors.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "user_type_valid"):
		return errors.Validation(map[string]string{
			"user_type": "must be one of: beneficiary, bhw, mswdo, admin",
		})

	case strings.Contains(constraint, "classification_valid"):
		return errors.Validation(map[string]string{
			"classification": "must be one of: senior_citizen, pwd, solo_parent",
		})

	case strings.Contains(constraint, "applications_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: pending, bhw_verified, mswdo_approved, scheduled, claimed, denied",
		})

	case strings.Contains(constraint, "program_type_valid"):
		return errors.Validation(map[string]string{
			"program_type": "must be one of: cash_assistance, medical, educational, livelihood",
		})

	case strings.Contains(constraint, "waiting_period"):
		return errors.Validation(map[string]string{
			"waiting_period_days": "must not be negative",
		})

	case strings.Contains(constraint, "notifications_type_valid"):
		return errors.Validation(map[string]string{
			"type": "must be one of: info, success, warning, error",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "users_email"):
		return "a user with this email already exists"
	case strings.Contains(constraint, "users_username"):
		return "a user with this username already exists"
	case strings.Contains(constraint, "beneficiaries_user_id"):
		return "beneficiary profile already exists for this user"
	case strings.Contains(constraint, "bhw_assignments"):
		return "barangay is already assigned to this health worker"
	case strings.Contains(constraint, "release_schedules_application_id"):
		return "release schedule already exists for this application"
	default:
		return "a record with these values already exists"
	}
}

// MapError returns the mapped AppError for pq errors and err unchanged otherwise.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if appErr := MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}
