package service

import (
	"context"
	"time"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// ProgramService handles program business logic
type ProgramService struct {
	programs      ProgramStore
	apps          ApplicationStore
	beneficiaries BeneficiaryStore
	scopes        *ScopeResolver
	logger        *logger.Logger
	now           func() time.Time
}

// NewProgramService creates a new program service
func NewProgramService(programs ProgramStore, apps ApplicationStore, beneficiaries BeneficiaryStore, scopes *ScopeResolver, log *logger.Logger) *ProgramService {
	return &ProgramService{
		programs:      programs,
		apps:          apps,
		beneficiaries: beneficiaries,
		scopes:        scopes,
		logger:        log.WithComponent("programs"),
		now:           time.Now,
	}
}

// List returns programs. Only the office sees inactive ones.
func (s *ProgramService) List(ctx context.Context, a *actor.Actor) ([]*domain.Program, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	return s.programs.List(ctx, !domain.Role(a.Role).In(domain.Office...))
}

func (s *ProgramService) Get(ctx context.Context, a *actor.Actor, id string) (*domain.Program, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	p, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !domain.Role(a.Role).In(domain.Office...) {
		return nil, errors.NotFound("program")
	}
	return p, nil
}

func (s *ProgramService) Create(ctx context.Context, a *actor.Actor, in domain.ProgramInput) (*domain.Program, error) {
	if err := requireRole(a, domain.Office...); err != nil {
		return nil, err
	}

	p := &domain.Program{
		Name:              in.Name,
		Description:       in.Description,
		Classification:    in.Classification,
		Requirements:      in.Requirements,
		ProgramType:       in.ProgramType,
		IsActive:          true,
		WaitingPeriodDays: in.WaitingPeriodDays,
		IsOneTime:         in.IsOneTime,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.programs.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("program_id", p.ID).Str("name", p.Name).Msg("program created")
	return p, nil
}

func (s *ProgramService) Update(ctx context.Context, a *actor.Actor, id string, in domain.ProgramUpdate) (*domain.Program, error) {
	if err := requireRole(a, domain.Office...); err != nil {
		return nil, err
	}
	p, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(p)
	if err := s.programs.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a program together with its applications.
func (s *ProgramService) Delete(ctx context.Context, a *actor.Actor, id string) error {
	if err := requireRole(a, domain.Office...); err != nil {
		return err
	}
	if err := s.programs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("program_id", id).Str("by", a.ID).Msg("program deleted")
	return nil
}

// Eligibility evaluates the re-application gate without submitting.
// Beneficiaries ask about themselves; staff pass the beneficiary id.
func (s *ProgramService) Eligibility(ctx context.Context, a *actor.Actor, programID, beneficiaryID string) (*domain.Eligibility, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}

	var ben *domain.BeneficiaryView
	var err error
	if domain.Role(a.Role) == domain.RoleBeneficiary {
		ben, err = s.beneficiaries.GetByUserID(ctx, a.ID)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Validation(map[string]string{"beneficiary": "create a beneficiary profile before applying"})
		}
	} else {
		if beneficiaryID == "" {
			return nil, errors.Validation(map[string]string{"beneficiary_id": "required"})
		}
		ben, err = s.beneficiaries.GetByID(ctx, beneficiaryID)
		if err == nil {
			err = s.scopes.Check(ctx, a, ben.ID, ben.Address)
		}
	}
	if err != nil {
		return nil, err
	}

	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	prior, err := s.apps.ListByBeneficiaryProgram(ctx, ben.ID, program.ID)
	if err != nil {
		return nil, err
	}

	elig := domain.EvaluateSubmission(program, ben.Classification, prior, s.now())
	return &elig, nil
}
