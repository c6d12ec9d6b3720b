package domain

import (
	"slices"
	"time"
)

// Classification is the beneficiary category that drives program eligibility.
type Classification string

const (
	ClassificationSeniorCitizen Classification = "senior_citizen"
	ClassificationPWD           Classification = "pwd"
	ClassificationSoloParent    Classification = "solo_parent"
)

var Classifications = []Classification{ClassificationSeniorCitizen, ClassificationPWD, ClassificationSoloParent}

func (c Classification) Valid() bool {
	return slices.Contains(Classifications, c)
}

// BeneficiaryStatus is the registration state of a profile.
type BeneficiaryStatus string

const (
	BeneficiaryPending  BeneficiaryStatus = "pending"
	BeneficiaryApproved BeneficiaryStatus = "approved"
	BeneficiaryRejected BeneficiaryStatus = "rejected"
)

func (s BeneficiaryStatus) Valid() bool {
	return s == BeneficiaryPending || s == BeneficiaryApproved || s == BeneficiaryRejected
}

// Beneficiary is the welfare profile attached to a beneficiary user.
type Beneficiary struct {
	ID                   string            `json:"id" db:"id"`
	UserID               string            `json:"user_id" db:"user_id"`
	Classification       Classification    `json:"classification" db:"classification"`
	Latitude             *float64          `json:"latitude,omitempty" db:"latitude"`
	Longitude            *float64          `json:"longitude,omitempty" db:"longitude"`
	DateOfBirth          *Date             `json:"date_of_birth,omitempty" db:"date_of_birth"`
	DisabilityType       *string           `json:"disability_type,omitempty" db:"disability_type"`
	PWDIDNumber          *string           `json:"pwd_id_number,omitempty" db:"pwd_id_number"`
	GuardianName         *string           `json:"guardian_name,omitempty" db:"guardian_name"`
	GuardianContact      *string           `json:"guardian_contact,omitempty" db:"guardian_contact"`
	GuardianRelationship *string           `json:"guardian_relationship,omitempty" db:"guardian_relationship"`
	Documents
	Status    BeneficiaryStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// Documents are the identity document slots on a profile. Each holds the
// URL returned by the upload endpoint.
type Documents struct {
	SeniorIDURL       *string `json:"senior_id_url,omitempty" db:"senior_id_url"`
	PSAURL            *string `json:"psa_url,omitempty" db:"psa_url"`
	PostalIDURL       *string `json:"postal_id_url,omitempty" db:"postal_id_url"`
	VotersIDURL       *string `json:"voters_id_url,omitempty" db:"voters_id_url"`
	NationalIDURL     *string `json:"national_id_url,omitempty" db:"national_id_url"`
	MedicalCertURL    *string `json:"medical_cert_url,omitempty" db:"medical_cert_url"`
	GovtIDURL         *string `json:"govt_id_url,omitempty" db:"govt_id_url"`
	PWDFormURL        *string `json:"pwd_form_url,omitempty" db:"pwd_form_url"`
	BarangayCertURL   *string `json:"barangay_cert_url,omitempty" db:"barangay_cert_url"`
	DeathCertURL      *string `json:"death_cert_url,omitempty" db:"death_cert_url"`
	MedicalRecordsURL *string `json:"medical_records_url,omitempty" db:"medical_records_url"`
}

// BeneficiaryView is a profile joined with its owner's contact details.
type BeneficiaryView struct {
	Beneficiary
	FirstName     string  `json:"first_name" db:"first_name"`
	LastName      string  `json:"last_name" db:"last_name"`
	MiddleName    *string `json:"middle_name,omitempty" db:"middle_name"`
	Email         string  `json:"email" db:"email"`
	Address       string  `json:"address" db:"address"`
	ContactNumber *string `json:"contact_number,omitempty" db:"contact_number"`
}

// BeneficiaryInput is the writable part of a profile.
type BeneficiaryInput struct {
	Classification       Classification `json:"classification" validate:"required,classification"`
	Latitude             *float64       `json:"latitude" validate:"omitempty,latitude"`
	Longitude            *float64       `json:"longitude" validate:"omitempty,longitude"`
	DateOfBirth          *Date          `json:"date_of_birth"`
	DisabilityType       *string        `json:"disability_type" validate:"omitempty,max=200"`
	PWDIDNumber          *string        `json:"pwd_id_number" validate:"omitempty,max=100"`
	GuardianName         *string        `json:"guardian_name" validate:"omitempty,max=200"`
	GuardianContact      *string        `json:"guardian_contact" validate:"omitempty,max=50"`
	GuardianRelationship *string        `json:"guardian_relationship" validate:"omitempty,max=100"`
	Documents
}

// BeneficiaryUpdate patches a profile. Status may only be changed by office staff.
type BeneficiaryUpdate struct {
	Classification       *Classification    `json:"classification" validate:"omitempty,classification"`
	Latitude             *float64           `json:"latitude" validate:"omitempty,latitude"`
	Longitude            *float64           `json:"longitude" validate:"omitempty,longitude"`
	DateOfBirth          *Date              `json:"date_of_birth"`
	DisabilityType       *string            `json:"disability_type" validate:"omitempty,max=200"`
	PWDIDNumber          *string            `json:"pwd_id_number" validate:"omitempty,max=100"`
	GuardianName         *string            `json:"guardian_name" validate:"omitempty,max=200"`
	GuardianContact      *string            `json:"guardian_contact" validate:"omitempty,max=50"`
	GuardianRelationship *string            `json:"guardian_relationship" validate:"omitempty,max=100"`
	Status               *BeneficiaryStatus `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Documents
}

// Apply copies every non-nil field of u onto b.
func (u *BeneficiaryUpdate) Apply(b *Beneficiary) {
	if u.Classification != nil {
		b.Classification = *u.Classification
	}
	setIf(&b.Latitude, u.Latitude)
	setIf(&b.Longitude, u.Longitude)
	setIf(&b.DateOfBirth, u.DateOfBirth)
	setIf(&b.DisabilityType, u.DisabilityType)
	setIf(&b.PWDIDNumber, u.PWDIDNumber)
	setIf(&b.GuardianName, u.GuardianName)
	setIf(&b.GuardianContact, u.GuardianContact)
	setIf(&b.GuardianRelationship, u.GuardianRelationship)
	if u.Status != nil {
		b.Status = *u.Status
	}
	d := &b.Documents
	setIf(&d.SeniorIDURL, u.SeniorIDURL)
	setIf(&d.PSAURL, u.PSAURL)
	setIf(&d.PostalIDURL, u.PostalIDURL)
	setIf(&d.VotersIDURL, u.VotersIDURL)
	setIf(&d.NationalIDURL, u.NationalIDURL)
	setIf(&d.MedicalCertURL, u.MedicalCertURL)
	setIf(&d.GovtIDURL, u.GovtIDURL)
	setIf(&d.PWDFormURL, u.PWDFormURL)
	setIf(&d.BarangayCertURL, u.BarangayCertURL)
	setIf(&d.DeathCertURL, u.DeathCertURL)
	setIf(&d.MedicalRecordsURL, u.MedicalRecordsURL)
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// BarangayStat is the per-barangay beneficiary summary behind the map view.
type BarangayStat struct {
	Barangay      string   `json:"barangay" db:"barangay"`
	Total         int64    `json:"total" db:"total"`
	SeniorCitizen int64    `json:"senior_citizen" db:"senior_citizen"`
	PWD           int64    `json:"pwd" db:"pwd"`
	SoloParent    int64    `json:"solo_parent" db:"solo_parent"`
	Latitude      *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64 `json:"longitude,omitempty" db:"longitude"`
}
