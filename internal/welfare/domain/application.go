package domain

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"time"
)

// Application is a beneficiary's request for assistance from one program.
type Application struct {
	ID              string     `json:"id" db:"id"`
	BeneficiaryID   string     `json:"beneficiary_id" db:"beneficiary_id"`
	ProgramID       string     `json:"program_id" db:"program_id"`
	Status          Status     `json:"status" db:"status"`
	FormData        FormData   `json:"form_data" db:"form_data"`
	BHWVerifiedAt   *time.Time `json:"bhw_verified_at,omitempty" db:"bhw_verified_at"`
	BHWVerifiedBy   *string    `json:"bhw_verified_by,omitempty" db:"bhw_verified_by"`
	BHWNotes        *string    `json:"bhw_notes,omitempty" db:"bhw_notes"`
	MSWDOApprovedAt *time.Time `json:"mswdo_approved_at,omitempty" db:"mswdo_approved_at"`
	MSWDOApprovedBy *string    `json:"mswdo_approved_by,omitempty" db:"mswdo_approved_by"`
	MSWDONotes      *string    `json:"mswdo_notes,omitempty" db:"mswdo_notes"`
	DenialReason    *string    `json:"denial_reason,omitempty" db:"denial_reason"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// ApprovedAt is the timestamp the waiting period counts from: the office
// approval, or the submission time for rows that predate that column.
func (a *Application) ApprovedAt() time.Time {
	if a.MSWDOApprovedAt != nil {
		return *a.MSWDOApprovedAt
	}
	return a.CreatedAt
}

// ApplicationView is an application joined with the names staff need to
// work a queue without further lookups.
type ApplicationView struct {
	Application
	ProgramName         string           `json:"program_name" db:"program_name"`
	ProgramType         ProgramType      `json:"program_type" db:"program_type"`
	BeneficiaryUserID   string           `json:"beneficiary_user_id" db:"beneficiary_user_id"`
	Classification      Classification   `json:"classification" db:"classification"`
	BeneficiaryFirst    string           `json:"beneficiary_first_name" db:"beneficiary_first_name"`
	BeneficiaryLast     string           `json:"beneficiary_last_name" db:"beneficiary_last_name"`
	BeneficiaryBarangay string           `json:"beneficiary_barangay" db:"beneficiary_barangay"`
	Documents           []DocumentRef    `json:"documents,omitempty" db:"-"`
	Schedule            *ReleaseSchedule `json:"schedule,omitempty" db:"-"`
}

// ApplicationDocument is a document row attached at submission time.
type ApplicationDocument struct {
	ID            string    `json:"id" db:"id"`
	ApplicationID string    `json:"application_id" db:"application_id"`
	DocumentType  string    `json:"document_type" db:"document_type"`
	DocumentURL   string    `json:"document_url" db:"document_url"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// DocumentRef is the shape of an uploaded file reference, both inside
// form_data and in application detail responses.
type DocumentRef struct {
	Key      string `json:"key,omitempty"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// FormData holds the free-form answers of an application. Values are
// arbitrary JSON; any object value with a string "url" member is treated
// as an uploaded document reference.
type FormData map[string]any

// Documents extracts the document references in key order.
func (f FormData) Documents() []DocumentRef {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var refs []DocumentRef
	for _, k := range keys {
		switch v := f[k].(type) {
		case map[string]any:
			if ref, ok := documentRef(k, v); ok {
				refs = append(refs, ref)
			}
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					if ref, ok := documentRef(k, m); ok {
						refs = append(refs, ref)
					}
				}
			}
		}
	}
	return refs
}

func documentRef(key string, m map[string]any) (DocumentRef, bool) {
	url, ok := m["url"].(string)
	if !ok || url == "" {
		return DocumentRef{}, false
	}
	ref := DocumentRef{Key: key, URL: url}
	if name, ok := m["filename"].(string); ok {
		ref.Filename = name
	}
	switch size := m["size"].(type) {
	case float64:
		ref.Size = int64(size)
	case json.Number:
		ref.Size, _ = size.Int64()
	}
	return ref, true
}

func (f FormData) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FormData) Scan(src any) error {
	return jsonScan(src, f)
}

// ReleaseSchedule is the appointment for physically claiming a benefit.
type ReleaseSchedule struct {
	ID             string     `json:"id" db:"id"`
	ApplicationID  string     `json:"application_id" db:"application_id"`
	ReleaseDate    Date       `json:"release_date" db:"release_date"`
	ReleaseTime    *string    `json:"release_time,omitempty" db:"release_time"`
	Venue          string     `json:"venue" db:"venue"`
	Instructions   *string    `json:"instructions,omitempty" db:"instructions"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty" db:"claimed_at"`
	ClaimedByStaff *string    `json:"claimed_by_staff,omitempty" db:"claimed_by_staff"`
	Notes          *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// StatusCounts is the application dashboard summary.
type StatusCounts struct {
	Pending   int64 `json:"pending" db:"pending"`
	Verified  int64 `json:"verified" db:"verified"`
	Approved  int64 `json:"approved" db:"approved"`
	Scheduled int64 `json:"scheduled" db:"scheduled"`
	Claimed   int64 `json:"claimed" db:"claimed"`
	Denied    int64 `json:"denied" db:"denied"`
}

// ApplicationFilter narrows a scoped application listing.
type ApplicationFilter struct {
	Status    *Status
	ProgramID string
}
