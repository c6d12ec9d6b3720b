package testutil

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
)

// FixturePassword is the plain-text password behind every fixture user.
const FixturePassword = "password123"

// FixtureFactory creates test fixtures with sensible defaults. IDs are
// left empty so the repository under test assigns them.
type FixtureFactory struct {
	sequence int
	hash     string
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	hash, _ := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	return &FixtureFactory{hash: string(hash)}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// User creates a beneficiary account in the first barangay.
func (f *FixtureFactory) User(opts ...func(*domain.User)) *domain.User {
	seq := f.nextSeq()

	user := &domain.User{
		Email:        fmt.Sprintf("user%d@test.mswdo.ph", seq),
		PasswordHash: f.hash,
		FirstName:    fmt.Sprintf("Test%d", seq),
		LastName:     "User",
		Username:     fmt.Sprintf("user%d", seq),
		Address:      domain.Barangays[0],
		UserType:     domain.RoleBeneficiary,
	}

	for _, opt := range opts {
		opt(user)
	}

	return user
}

// WithEmail sets the user email
func WithEmail(email string) func(*domain.User) {
	return func(u *domain.User) {
		u.Email = email
	}
}

// WithName sets the user's first and last name
func WithName(first, last string) func(*domain.User) {
	return func(u *domain.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithRole sets the account role
func WithRole(role domain.Role) func(*domain.User) {
	return func(u *domain.User) {
		u.UserType = role
	}
}

// WithAddress sets the user's barangay
func WithAddress(barangay string) func(*domain.User) {
	return func(u *domain.User) {
		u.Address = barangay
	}
}

// WithPassword sets the user password (hashed)
func WithPassword(password string) func(*domain.User) {
	return func(u *domain.User) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.PasswordHash = string(hash)
	}
}

// Beneficiary creates a pending senior citizen profile for userID.
func (f *FixtureFactory) Beneficiary(userID string, opts ...func(*domain.Beneficiary)) *domain.Beneficiary {
	dob := domain.NewDate(time.Date(1950, time.March, 1, 0, 0, 0, 0, time.UTC))

	b := &domain.Beneficiary{
		UserID:         userID,
		Classification: domain.ClassificationSeniorCitizen,
		DateOfBirth:    &dob,
		Status:         domain.BeneficiaryPending,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// WithClassification sets the beneficiary classification
func WithClassification(c domain.Classification) func(*domain.Beneficiary) {
	return func(b *domain.Beneficiary) {
		b.Classification = c
	}
}

// Approved marks the profile approved.
func Approved() func(*domain.Beneficiary) {
	return func(b *domain.Beneficiary) {
		b.Status = domain.BeneficiaryApproved
	}
}

// Program creates an active, repeatable cash assistance program open to
// every classification.
func (f *FixtureFactory) Program(opts ...func(*domain.Program)) *domain.Program {
	seq := f.nextSeq()

	p := &domain.Program{
		Name:         fmt.Sprintf("Assistance Program %d", seq),
		Description:  "Test program",
		Requirements: domain.StringList{"Barangay certificate"},
		ProgramType:  domain.ProgramCashAssistance,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ForClassifications restricts the program to the given classes.
func ForClassifications(cs ...domain.Classification) func(*domain.Program) {
	return func(p *domain.Program) {
		p.Classification = domain.ClassificationList(cs)
	}
}

// WithWaitingPeriod sets the waiting period between grants.
func WithWaitingPeriod(days int) func(*domain.Program) {
	return func(p *domain.Program) {
		p.WaitingPeriodDays = days
	}
}

// OneTime makes the program grantable once per beneficiary.
func OneTime() func(*domain.Program) {
	return func(p *domain.Program) {
		p.IsOneTime = true
	}
}

// Inactive deactivates the program.
func Inactive() func(*domain.Program) {
	return func(p *domain.Program) {
		p.IsActive = false
	}
}

// DefaultStaff returns one account per staff role, all in the first barangay.
func DefaultStaff(factory *FixtureFactory) []*domain.User {
	return []*domain.User{
		factory.User(WithEmail("admin@mswdo.ph"), WithName("Maria", "Santos"), WithRole(domain.RoleAdmin)),
		factory.User(WithEmail("officer@mswdo.ph"), WithName("Jose", "Reyes"), WithRole(domain.RoleMSWDO)),
		factory.User(WithEmail("bhw@mswdo.ph"), WithName("Ana", "Cruz"), WithRole(domain.RoleBHW)),
	}
}
