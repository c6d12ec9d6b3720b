package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/mesias/mswdo-backend/pkg/errors"
)

// Status is the workflow state of an Application.
type Status string

const (
	StatusPending       Status = "pending"
	StatusBHWVerified   Status = "bhw_verified"
	StatusMSWDOApproved Status = "mswdo_approved"
	StatusScheduled     Status = "scheduled"
	StatusClaimed       Status = "claimed"
	StatusDenied        Status = "denied"
)

// Statuses lists every state in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusBHWVerified,
	StatusMSWDOApproved,
	StatusScheduled,
	StatusClaimed,
	StatusDenied,
}

// ParseStatus converts s to a Status, rejecting anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.Validation(map[string]string{"status": "unknown status " + s})
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether no operation can move an application out of s.
func (s Status) Terminal() bool {
	return s == StatusClaimed || s == StatusDenied
}

// Approved reports whether the office has signed off on the application,
// which is what the re-application gate counts as a prior grant.
func (s Status) Approved() bool {
	return s == StatusMSWDOApproved || s == StatusScheduled || s == StatusClaimed
}

// Active reports whether the application is still waiting for a decision.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusBHWVerified
}

// Value implements driver.Valuer.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid application status %q", string(s))
	}
	return string(s), nil
}

// Scan implements sql.Scanner and refuses values outside the closed set.
func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return fmt.Errorf("invalid application status %q in store", raw)
	}
	*s = st
	return nil
}
