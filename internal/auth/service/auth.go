package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mesias/mswdo-backend/internal/auth/jwt"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/events"
	"github.com/mesias/mswdo-backend/internal/welfare/repository"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// TxRunner groups writes into one transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(context.Context) error) error
}

// UserStore is the part of the user repository authentication needs.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProfileStore creates the beneficiary profile on signup.
type ProfileStore interface {
	Create(ctx context.Context, b *domain.Beneficiary) error
}

// dummyHash is compared against on unknown emails so both login failure
// paths do the same bcrypt work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mswdo-no-such-user"), bcrypt.DefaultCost)

// AuthService handles signup, login and the current-user lookup
type AuthService struct {
	compare    func(hash, password []byte) error
	tx         TxRunner
	users      UserStore
	profiles   ProfileStore
	jwtManager *jwt.Manager
	events     *events.WelfareEventPublisher
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(tx TxRunner, users UserStore, profiles ProfileStore, jwtManager *jwt.Manager, publisher *events.WelfareEventPublisher, log *logger.Logger) *AuthService {
	return &AuthService{
		compare:    bcrypt.CompareHashAndPassword,
		tx:         tx,
		users:      users,
		profiles:   profiles,
		jwtManager: jwtManager,
		events:     publisher,
		logger:     log.WithComponent("auth"),
	}
}

// SignupRequest represents a self-registration. Staff accounts are
// created by an admin, so only beneficiary and bhw are accepted here.
type SignupRequest struct {
	Email         string       `json:"email" validate:"required,email,max=254"`
	Password      string       `json:"password" validate:"required,min=6,max=72"`
	FirstName     string       `json:"first_name" validate:"required,max=100"`
	LastName      string       `json:"last_name" validate:"required,max=100"`
	MiddleName    *string      `json:"middle_name" validate:"omitempty,max=100"`
	Username      string       `json:"username" validate:"required,min=3,max=50"`
	Address       string       `json:"address" validate:"required,barangay"`
	ContactNumber *string      `json:"contact_number" validate:"omitempty,max=30"`
	DateOfBirth   *domain.Date `json:"date_of_birth"`
	UserType      domain.Role  `json:"user_type" validate:"required,oneof=beneficiary bhw"`

	// Classification creates the beneficiary profile in the same step.
	Classification *domain.Classification `json:"classification" validate:"omitempty,classification"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt string       `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Signup creates the account, plus the beneficiary profile when a
// classification is given, in one transaction.
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if req.Classification != nil && req.UserType != domain.RoleBeneficiary {
		return nil, errors.Validation(map[string]string{"classification": "only beneficiaries have a classification"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	user := &domain.User{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  string(hashed),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		MiddleName:    req.MiddleName,
		Username:      strings.TrimSpace(req.Username),
		Address:       domain.CanonicalBarangay(req.Address),
		ContactNumber: req.ContactNumber,
		DateOfBirth:   req.DateOfBirth,
		UserType:      req.UserType,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if req.Classification == nil {
			return nil
		}
		return s.profiles.Create(ctx, &domain.Beneficiary{
			UserID:         user.ID,
			Classification: *req.Classification,
			DateOfBirth:    req.DateOfBirth,
			Status:         domain.BeneficiaryPending,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("user_type", string(user.UserType)).Msg("user registered")
	s.events.PublishUserRegistered(ctx, user)

	return s.respond(user)
}

// Login verifies the password. Unknown email and wrong password fail
// identically.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, errors.ErrNotFound) {
		_ = s.compare(dummyHash, []byte(req.Password))
		return nil, errors.InvalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, errors.InvalidCredentials()
	}

	return s.respond(user)
}

// Me returns the authenticated caller's account.
func (s *AuthService) Me(ctx context.Context, a *actor.Actor) (*domain.User, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}
	return s.users.GetByID(ctx, a.ID)
}

func (s *AuthService) respond(user *domain.User) (*AuthResponse, error) {
	tok, err := s.jwtManager.Generate(user.ID, string(user.UserType))
	if err != nil {
		return nil, errors.Internal("failed to generate token")
	}
	return &AuthResponse{
		Token:     tok.AccessToken,
		TokenType: tok.TokenType,
		ExpiresAt: tok.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		User:      user,
	}, nil
}

var (
	_ UserStore    = (*repository.UserRepository)(nil)
	_ ProfileStore = (*repository.BeneficiaryRepository)(nil)
)
