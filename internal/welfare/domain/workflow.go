package domain

import (
	"fmt"

	"github.com/mesias/mswdo-backend/pkg/errors"
)

// Operation is a workflow action on an Application.
type Operation string

const (
	OpSubmit     Operation = "submit"
	OpVerify     Operation = "verify"
	OpVerifyDeny Operation = "verify_deny"
	OpApprove    Operation = "approve"
	OpDeny       Operation = "deny"
	OpSchedule   Operation = "schedule"
	OpClaim      Operation = "claim"
)

// Transition is one row of the workflow table.
type Transition struct {
	From  Status
	To    Status
	Roles []Role
}

var transitions = map[Operation]Transition{
	OpVerify:     {From: StatusPending, To: StatusBHWVerified, Roles: []Role{RoleBHW}},
	OpVerifyDeny: {From: StatusPending, To: StatusDenied, Roles: []Role{RoleBHW}},
	OpApprove:    {From: StatusBHWVerified, To: StatusMSWDOApproved, Roles: Office},
	OpDeny:       {From: StatusBHWVerified, To: StatusDenied, Roles: Office},
	OpSchedule:   {From: StatusMSWDOApproved, To: StatusScheduled, Roles: Office},
	OpClaim:      {From: StatusScheduled, To: StatusClaimed, Roles: Office},
}

// TransitionFor returns the table row for op. Submit has none: it creates
// the application in StatusPending rather than moving an existing one.
func TransitionFor(op Operation) (Transition, bool) {
	t, ok := transitions[op]
	return t, ok
}

// NextStatus validates that op may run on an application in current and
// returns the resulting state. A mismatch is a StateConflict, never a
// validation error.
func NextStatus(op Operation, current Status) (Status, error) {
	t, ok := transitions[op]
	if !ok {
		return "", errors.BadRequest(fmt.Sprintf("unknown operation %q", op))
	}
	if current != t.From {
		return "", errors.StateConflict(fmt.Sprintf("cannot %s an application that is %s", op.verb(), current))
	}
	return t.To, nil
}

// AuthorizeOperation checks the caller's role against the table row for op.
func AuthorizeOperation(op Operation, role Role) error {
	t, ok := transitions[op]
	if !ok {
		return errors.BadRequest(fmt.Sprintf("unknown operation %q", op))
	}
	if err := Authorize(role, t.Roles...); err != nil {
		return errors.Forbidden(fmt.Sprintf("role %s may not %s applications", role, op.verb()))
	}
	return nil
}

// DenyOperation picks the deny row for the caller's role. A health
// worker denies at pending, the office after verification; the state
// itself is checked by NextStatus.
func DenyOperation(role Role) (Operation, error) {
	switch role {
	case RoleBHW:
		return OpVerifyDeny, nil
	case RoleMSWDO, RoleAdmin:
		return OpDeny, nil
	default:
		return "", errors.Forbidden(fmt.Sprintf("role %s may not deny applications", role))
	}
}

func (op Operation) verb() string {
	switch op {
	case OpVerifyDeny:
		return "deny"
	default:
		return string(op)
	}
}
