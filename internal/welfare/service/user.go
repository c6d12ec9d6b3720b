package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// CreateUserInput is an admin-created account of any role.
type CreateUserInput struct {
	Email            string       `json:"email" validate:"required,email,max=254"`
	Password         string       `json:"password" validate:"required,min=6,max=72"`
	FirstName        string       `json:"first_name" validate:"required,max=100"`
	LastName         string       `json:"last_name" validate:"required,max=100"`
	MiddleName       *string      `json:"middle_name" validate:"omitempty,max=100"`
	Username         string       `json:"username" validate:"required,min=3,max=50"`
	Address          string       `json:"address" validate:"required,barangay"`
	ContactNumber    *string      `json:"contact_number" validate:"omitempty,max=30"`
	DateOfBirth      *domain.Date `json:"date_of_birth"`
	UserType         domain.Role  `json:"user_type" validate:"required,user_role"`
	AssignedBarangay *string      `json:"assigned_barangay" validate:"omitempty,barangay"`
}

type AssignmentInput struct {
	Barangay string `json:"barangay" validate:"required,barangay"`
}

// UserService handles user administration
type UserService struct {
	tx          TxRunner
	users       UserStore
	assignments AssignmentStore
	logger      *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(tx TxRunner, users UserStore, assignments AssignmentStore, log *logger.Logger) *UserService {
	return &UserService{
		tx:          tx,
		users:       users,
		assignments: assignments,
		logger:      log.WithComponent("users"),
	}
}

// Create creates an account on behalf of an admin, optionally with a
// first barangay assignment for a health worker.
func (s *UserService) Create(ctx context.Context, a *actor.Actor, in CreateUserInput) (*domain.User, error) {
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if in.AssignedBarangay != nil && in.UserType != domain.RoleBHW {
		return nil, errors.Validation(map[string]string{"assigned_barangay": "only health workers can be assigned a barangay"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	user := &domain.User{
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  string(hashed),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		MiddleName:    in.MiddleName,
		Username:      strings.TrimSpace(in.Username),
		Address:       domain.CanonicalBarangay(in.Address),
		ContactNumber: in.ContactNumber,
		DateOfBirth:   in.DateOfBirth,
		UserType:      in.UserType,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if in.AssignedBarangay == nil {
			return nil
		}
		return s.assignments.Create(ctx, &domain.BHWAssignment{
			BHWUserID: user.ID,
			Barangay:  domain.CanonicalBarangay(*in.AssignedBarangay),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("user_type", string(user.UserType)).Str("by", a.ID).Msg("user created")
	return user, nil
}

// Get reads a user. Anyone may read themselves; the office may read anyone.
func (s *UserService) Get(ctx context.Context, a *actor.Actor, id string) (*domain.User, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if a.ID != id && !domain.Role(a.Role).In(domain.Office...) {
		return nil, errors.Forbidden("insufficient permissions")
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, a *actor.Actor, role *domain.Role, page, perPage int) ([]*domain.User, int64, error) {
	if err := requireRole(a, domain.Office...); err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, role, page, perPage)
}

// Update patches profile fields. Allowed for the user themself and admins.
func (s *UserService) Update(ctx context.Context, a *actor.Actor, id string, in domain.UserUpdate) (*domain.User, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if a.ID != id && domain.Role(a.Role) != domain.RoleAdmin {
		return nil, errors.Forbidden("you can only update your own account")
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.MiddleName != nil {
		u.MiddleName = in.MiddleName
	}
	if in.Address != nil {
		u.Address = domain.CanonicalBarangay(*in.Address)
	}
	if in.ContactNumber != nil {
		u.ContactNumber = in.ContactNumber
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = in.DateOfBirth
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes an account and everything that cascades from it.
func (s *UserService) Delete(ctx context.Context, a *actor.Actor, id string) error {
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return err
	}
	if a.ID == id {
		return errors.BadRequest("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("by", a.ID).Msg("user deleted")
	return nil
}

func (s *UserService) Counts(ctx context.Context, a *actor.Actor) (*domain.UserCounts, error) {
	if err := requireRole(a, domain.Office...); err != nil {
		return nil, err
	}
	return s.users.Counts(ctx)
}

// Assignments lists a health worker's barangays. Workers may list their own.
func (s *UserService) Assignments(ctx context.Context, a *actor.Actor, userID string) ([]*domain.BHWAssignment, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if a.ID != userID && !domain.Role(a.Role).In(domain.Office...) {
		return nil, errors.Forbidden("insufficient permissions")
	}
	return s.assignments.ListByUser(ctx, userID)
}

// Assign gives a health worker one more barangay.
func (s *UserService) Assign(ctx context.Context, a *actor.Actor, userID string, in AssignmentInput) (*domain.BHWAssignment, error) {
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.UserType != domain.RoleBHW {
		return nil, errors.Validation(map[string]string{"user_id": "only health workers can hold barangay assignments"})
	}

	assignment := &domain.BHWAssignment{BHWUserID: userID, Barangay: domain.CanonicalBarangay(in.Barangay)}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *UserService) Unassign(ctx context.Context, a *actor.Actor, userID, assignmentID string) error {
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return err
	}
	return s.assignments.Delete(ctx, userID, assignmentID)
}

// requireRole fails with Unauthorized for a missing actor and Forbidden
// for one outside allowed.
func requireRole(a *actor.Actor, allowed ...domain.Role) error {
	if a == nil {
		return errors.Unauthorized("authentication required")
	}
	return domain.Authorize(domain.Role(a.Role), allowed...)
}
