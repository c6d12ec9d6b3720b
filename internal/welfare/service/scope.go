package service

import (
	"context"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// ScopeResolver computes which beneficiary-owned rows a caller may see.
type ScopeResolver struct {
	assignments   AssignmentStore
	beneficiaries BeneficiaryStore
}

func NewScopeResolver(assignments AssignmentStore, beneficiaries BeneficiaryStore) *ScopeResolver {
	return &ScopeResolver{assignments: assignments, beneficiaries: beneficiaries}
}

// Resolve returns the visibility of a. A health worker without
// assignments and a beneficiary without a profile both get an empty
// scope rather than an error.
func (r *ScopeResolver) Resolve(ctx context.Context, a *actor.Actor) (domain.Scope, error) {
	if a == nil {
		return domain.Scope{}, errors.Unauthorized("authentication required")
	}

	switch domain.Role(a.Role) {
	case domain.RoleAdmin, domain.RoleMSWDO:
		return domain.AllScope(), nil

	case domain.RoleBHW:
		barangays, err := r.assignments.Barangays(ctx, a.ID)
		if err != nil {
			return domain.Scope{}, err
		}
		if len(barangays) == 0 {
			return domain.EmptyScope(), nil
		}
		return domain.Scope{Barangays: barangays}, nil

	case domain.RoleBeneficiary:
		b, err := r.beneficiaries.GetByUserID(ctx, a.ID)
		if errors.Is(err, errors.ErrNotFound) {
			return domain.EmptyScope(), nil
		}
		if err != nil {
			return domain.Scope{}, err
		}
		return domain.Scope{BeneficiaryID: b.ID}, nil

	default:
		return domain.Scope{}, errors.Forbidden("unknown role")
	}
}

// Check fails with Forbidden unless a may see the beneficiary identified
// by beneficiaryID living in address.
func (r *ScopeResolver) Check(ctx context.Context, a *actor.Actor, beneficiaryID, address string) error {
	scope, err := r.Resolve(ctx, a)
	if err != nil {
		return err
	}
	if !scope.Allows(beneficiaryID, address) {
		return errors.Forbidden("record is outside your assigned area")
	}
	return nil
}
