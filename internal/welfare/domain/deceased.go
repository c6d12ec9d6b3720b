package domain

import (
	"strings"
	"time"
)

// DeceasedReport records a reported death of a (possible) beneficiary.
// Confirming it removes the beneficiary's applications.
type DeceasedReport struct {
	ID                  string     `json:"id" db:"id"`
	FullName            string     `json:"full_name" db:"full_name"`
	DateOfBirth         *Date      `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender              *string    `json:"gender,omitempty" db:"gender"`
	Nationality         *string    `json:"nationality,omitempty" db:"nationality"`
	Email               *string    `json:"email,omitempty" db:"email"`
	PhoneNumber         *string    `json:"phone_number,omitempty" db:"phone_number"`
	Address             *string    `json:"address,omitempty" db:"address"`
	BeneficiaryID       *string    `json:"beneficiary_id,omitempty" db:"beneficiary_id"`
	BeneficiaryName     *string    `json:"beneficiary_name,omitempty" db:"beneficiary_name"`
	BeneficiaryBarangay *string    `json:"beneficiary_barangay,omitempty" db:"beneficiary_barangay"`
	DateTimeOfDeath     *time.Time `json:"date_time_of_death,omitempty" db:"date_time_of_death"`
	CauseOfDeath        *string    `json:"cause_of_death,omitempty" db:"cause_of_death"`
	SourceOfInformation *string    `json:"source_of_information,omitempty" db:"source_of_information"`
	ReportedBy          *string    `json:"reported_by,omitempty" db:"reported_by"`
	Confirmed           bool       `json:"confirmed" db:"confirmed"`
	ConfirmedBy         *string    `json:"confirmed_by,omitempty" db:"confirmed_by"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}

// DeceasedReportInput creates a report.
type DeceasedReportInput struct {
	FullName            string     `json:"full_name" validate:"required,max=200"`
	DateOfBirth         *Date      `json:"date_of_birth"`
	Gender              *string    `json:"gender" validate:"omitempty,max=20"`
	Nationality         *string    `json:"nationality" validate:"omitempty,max=100"`
	Email               *string    `json:"email" validate:"omitempty,email"`
	PhoneNumber         *string    `json:"phone_number" validate:"omitempty,max=30"`
	Address             *string    `json:"address" validate:"omitempty,max=300"`
	BeneficiaryID       *string    `json:"beneficiary_id" validate:"omitempty,uuid"`
	BeneficiaryName     *string    `json:"beneficiary_name" validate:"omitempty,max=200"`
	BeneficiaryBarangay *string    `json:"beneficiary_barangay" validate:"omitempty,max=200"`
	DateTimeOfDeath     *time.Time `json:"date_time_of_death"`
	CauseOfDeath        *string    `json:"cause_of_death" validate:"omitempty,max=500"`
	SourceOfInformation *string    `json:"source_of_information" validate:"omitempty,oneof=family hospital barangay"`
}

// NameParts splits a "First [Middle] Last" name into its first and last
// words for matching against user records. Single-word names yield ok=false.
func NameParts(full string) (first, last string, ok bool) {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[len(parts)-1], true
}
