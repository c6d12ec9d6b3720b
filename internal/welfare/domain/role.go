package domain

import (
	"slices"

	"github.com/mesias/mswdo-backend/pkg/errors"
)

// Role is a user's user_type. It never changes after the account is created.
type Role string

const (
	RoleBeneficiary Role = "beneficiary"
	RoleBHW         Role = "bhw"
	RoleMSWDO       Role = "mswdo"
	RoleAdmin       Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleBeneficiary, RoleBHW, RoleMSWDO, RoleAdmin}

// Staff are the roles that act on other people's records.
var Staff = []Role{RoleBHW, RoleMSWDO, RoleAdmin}

// Office are the roles of the municipal welfare office itself.
var Office = []Role{RoleMSWDO, RoleAdmin}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// In reports whether r is one of allowed.
func (r Role) In(allowed ...Role) bool {
	return slices.Contains(allowed, r)
}

// Authorize returns a Forbidden error unless role is one of allowed.
func Authorize(role Role, allowed ...Role) error {
	if role.In(allowed...) {
		return nil
	}
	return errors.Forbidden("insufficient permissions")
}
