package service

import (
	"context"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// BeneficiaryService handles beneficiary profile business logic
type BeneficiaryService struct {
	beneficiaries BeneficiaryStore
	scopes        *ScopeResolver
	logger        *logger.Logger
}

// NewBeneficiaryService creates a new beneficiary service
func NewBeneficiaryService(beneficiaries BeneficiaryStore, scopes *ScopeResolver, log *logger.Logger) *BeneficiaryService {
	return &BeneficiaryService{
		beneficiaries: beneficiaries,
		scopes:        scopes,
		logger:        log.WithComponent("beneficiaries"),
	}
}

// Create registers the caller's own profile. A user holds at most one.
func (s *BeneficiaryService) Create(ctx context.Context, a *actor.Actor, in domain.BeneficiaryInput) (*domain.BeneficiaryView, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if err := domain.Authorize(domain.Role(a.Role), domain.RoleBeneficiary); err != nil {
		return nil, errors.Forbidden("only beneficiaries can create a beneficiary profile")
	}

	existing, err := s.beneficiaries.GetByUserID(ctx, a.ID)
	if err == nil && existing != nil {
		return nil, errors.Conflict("beneficiary profile already exists for this user")
	}
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	b := &domain.Beneficiary{
		UserID:               a.ID,
		Classification:       in.Classification,
		Latitude:             in.Latitude,
		Longitude:            in.Longitude,
		DateOfBirth:          in.DateOfBirth,
		DisabilityType:       in.DisabilityType,
		PWDIDNumber:          in.PWDIDNumber,
		GuardianName:         in.GuardianName,
		GuardianContact:      in.GuardianContact,
		GuardianRelationship: in.GuardianRelationship,
		Documents:            in.Documents,
		Status:               domain.BeneficiaryPending,
	}
	if err := s.beneficiaries.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().Str("beneficiary_id", b.ID).Str("user_id", a.ID).Msg("beneficiary profile created")
	return s.beneficiaries.GetByID(ctx, b.ID)
}

// Get reads one profile if the caller may see it.
func (s *BeneficiaryService) Get(ctx context.Context, a *actor.Actor, id string) (*domain.BeneficiaryView, error) {
	b, err := s.beneficiaries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Check(ctx, a, b.ID, b.Address); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByUser reads the profile owned by userID.
func (s *BeneficiaryService) GetByUser(ctx context.Context, a *actor.Actor, userID string) (*domain.BeneficiaryView, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	b, err := s.beneficiaries.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.ID == userID {
		return b, nil
	}
	if err := s.scopes.Check(ctx, a, b.ID, b.Address); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the caller's visible profiles.
func (s *BeneficiaryService) List(ctx context.Context, a *actor.Actor, page, perPage int) ([]*domain.BeneficiaryView, int64, error) {
	scope, err := s.scopes.Resolve(ctx, a)
	if err != nil {
		return nil, 0, err
	}
	if scope.Empty {
		return []*domain.BeneficiaryView{}, 0, nil
	}
	return s.beneficiaries.List(ctx, scope, page, perPage)
}

// Update patches a profile. Owners edit their own fields; only the office
// may change the approval status or edit someone else's profile.
func (s *BeneficiaryService) Update(ctx context.Context, a *actor.Actor, id string, in domain.BeneficiaryUpdate) (*domain.BeneficiaryView, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	role := domain.Role(a.Role)

	current, err := s.beneficiaries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	office := role.In(domain.Office...)
	if !office && current.UserID != a.ID {
		return nil, errors.Forbidden("you can only update your own profile")
	}
	if in.Status != nil && !office {
		return nil, errors.Forbidden("only the office can change a profile's status")
	}

	b := current.Beneficiary
	in.Apply(&b)
	if err := s.beneficiaries.Update(ctx, &b); err != nil {
		return nil, err
	}
	return s.beneficiaries.GetByID(ctx, id)
}

// BarangayStats summarises profiles per barangay for the office dashboard.
func (s *BeneficiaryService) BarangayStats(ctx context.Context, a *actor.Actor) ([]domain.BarangayStat, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if err := domain.Authorize(domain.Role(a.Role), domain.Office...); err != nil {
		return nil, err
	}
	return s.beneficiaries.BarangayStats(ctx)
}
