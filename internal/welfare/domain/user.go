package domain

import (
	"strings"
	"time"
)

// User is an account of any role.
type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	MiddleName    *string   `json:"middle_name,omitempty" db:"middle_name"`
	Username      string    `json:"username" db:"username"`
	Address       string    `json:"address" db:"address"`
	ContactNumber *string   `json:"contact_number,omitempty" db:"contact_number"`
	DateOfBirth   *Date     `json:"date_of_birth,omitempty" db:"date_of_birth"`
	UserType      Role      `json:"user_type" db:"user_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns first and last name joined by a space.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserUpdate holds the profile fields a user or admin may change.
// Nil means "leave as is". Role and email are not updatable.
type UserUpdate struct {
	FirstName     *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	MiddleName    *string `json:"middle_name" validate:"omitempty,max=100"`
	Address       *string `json:"address" validate:"omitempty,barangay"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,max=30"`
	DateOfBirth   *Date   `json:"date_of_birth"`
}

// UserCounts is the user dashboard summary.
type UserCounts struct {
	Total         int64 `json:"total" db:"total"`
	Beneficiaries int64 `json:"beneficiaries" db:"beneficiaries"`
	BHWs          int64 `json:"bhws" db:"bhws"`
	MSWDO         int64 `json:"mswdo" db:"mswdo"`
	Admins        int64 `json:"admins" db:"admins"`
}

// BHWAssignment grants a health worker jurisdiction over one barangay.
type BHWAssignment struct {
	ID        string    `json:"id" db:"id"`
	BHWUserID string    `json:"bhw_user_id" db:"bhw_user_id"`
	Barangay  string    `json:"barangay" db:"barangay"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
