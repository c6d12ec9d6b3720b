package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// ProgramType groups assistance programs by what they hand out.
type ProgramType string

const (
	ProgramCashAssistance ProgramType = "cash_assistance"
	ProgramMedical        ProgramType = "medical"
	ProgramEducational    ProgramType = "educational"
	ProgramLivelihood     ProgramType = "livelihood"
)

func (t ProgramType) Valid() bool {
	switch t {
	case ProgramCashAssistance, ProgramMedical, ProgramEducational, ProgramLivelihood:
		return true
	}
	return false
}

// Program is an assistance program beneficiaries apply to.
type Program struct {
	ID                string             `json:"id" db:"id"`
	Name              string             `json:"name" db:"name"`
	Description       string             `json:"description" db:"description"`
	Classification    ClassificationList `json:"classification" db:"classification"`
	Requirements      StringList         `json:"requirements" db:"requirements"`
	ProgramType       ProgramType        `json:"program_type" db:"program_type"`
	IsActive          bool               `json:"is_active" db:"is_active"`
	WaitingPeriodDays int                `json:"waiting_period_days" db:"waiting_period_days"`
	IsOneTime         bool               `json:"is_one_time" db:"is_one_time"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// Accepts reports whether a beneficiary of class c may apply. An empty
// classification list means the program is open to everyone.
func (p *Program) Accepts(c Classification) bool {
	return len(p.Classification) == 0 || slices.Contains(p.Classification, c)
}

// ProgramInput creates a program.
type ProgramInput struct {
	Name              string           `json:"name" validate:"required,max=200"`
	Description       string           `json:"description" validate:"max=5000"`
	Classification    []Classification `json:"classification" validate:"dive,classification"`
	Requirements      []string         `json:"requirements" validate:"dive,max=200"`
	ProgramType       ProgramType      `json:"program_type" validate:"required,program_type"`
	IsActive          *bool            `json:"is_active"`
	WaitingPeriodDays int              `json:"waiting_period_days" validate:"gte=0"`
	IsOneTime         bool             `json:"is_one_time"`
}

// ProgramUpdate patches a program.
type ProgramUpdate struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"description" validate:"omitempty,max=5000"`
	Classification    []Classification `json:"classification" validate:"omitempty,dive,classification"`
	Requirements      []string         `json:"requirements" validate:"omitempty,dive,max=200"`
	ProgramType       *ProgramType     `json:"program_type" validate:"omitempty,program_type"`
	IsActive          *bool            `json:"is_active"`
	WaitingPeriodDays *int             `json:"waiting_period_days" validate:"omitempty,gte=0"`
	IsOneTime         *bool            `json:"is_one_time"`
}

// Apply copies every set field of u onto p.
func (u *ProgramUpdate) Apply(p *Program) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Classification != nil {
		p.Classification = u.Classification
	}
	if u.Requirements != nil {
		p.Requirements = u.Requirements
	}
	if u.ProgramType != nil {
		p.ProgramType = *u.ProgramType
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.WaitingPeriodDays != nil {
		p.WaitingPeriodDays = *u.WaitingPeriodDays
	}
	if u.IsOneTime != nil {
		p.IsOneTime = *u.IsOneTime
	}
}

// ClassificationList is stored as a JSONB array.
type ClassificationList []Classification

func (l ClassificationList) Value() (driver.Value, error) {
	return jsonValue(l, "[]")
}

func (l *ClassificationList) Scan(src any) error {
	return jsonScan(src, l)
}

// StringList is stored as a JSONB array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return jsonValue(l, "[]")
}

func (l *StringList) Scan(src any) error {
	return jsonScan(src, l)
}

func jsonValue[T any](v []T, empty string) (driver.Value, error) {
	if v == nil {
		return empty, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T as JSON", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
