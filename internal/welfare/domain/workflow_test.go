package domain

import (
	"testing"

	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_HappyPath(t *testing.T) {
	steps := []struct {
		op   Operation
		from Status
		to   Status
	}{
		{OpVerify, StatusPending, StatusBHWVerified},
		{OpApprove, StatusBHWVerified, StatusMSWDOApproved},
		{OpSchedule, StatusMSWDOApproved, StatusScheduled},
		{OpClaim, StatusScheduled, StatusClaimed},
	}

	for _, s := range steps {
		got, err := NextStatus(s.op, s.from)
		require.NoError(t, err, s.op)
		assert.Equal(t, s.to, got, s.op)
	}
}

func TestNextStatus_DenyRows(t *testing.T) {
	got, err := NextStatus(OpVerifyDeny, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, got)

	got, err = NextStatus(OpDeny, StatusBHWVerified)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, got)
}

func TestNextStatus_WrongStateIsStateConflict(t *testing.T) {
	ops := []Operation{OpVerify, OpVerifyDeny, OpApprove, OpDeny, OpSchedule, OpClaim}

	for _, op := range ops {
		tr, ok := TransitionFor(op)
		require.True(t, ok)
		for _, st := range Statuses {
			if st == tr.From {
				continue
			}
			_, err := NextStatus(op, st)
			require.Error(t, err, "%s from %s", op, st)
			assert.True(t, errors.Is(err, errors.ErrStateConflict), "%s from %s", op, st)
		}
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	for _, st := range []Status{StatusClaimed, StatusDenied} {
		assert.True(t, st.Terminal())
		for op := range transitions {
			_, err := NextStatus(op, st)
			assert.True(t, errors.Is(err, errors.ErrStateConflict), "%s from %s", op, st)
		}
		for _, role := range Staff {
			op, err := DenyOperation(role)
			require.NoError(t, err)
			_, err = NextStatus(op, st)
			assert.True(t, errors.Is(err, errors.ErrStateConflict), "deny by %s from %s", role, st)
		}
	}
}

func TestApprovePendingIsStateConflict(t *testing.T) {
	_, err := NextStatus(OpApprove, StatusPending)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "STATE_CONFLICT", appErr.Code)
	assert.Equal(t, 409, appErr.StatusCode)
}

func TestAuthorizeOperation(t *testing.T) {
	tests := []struct {
		op      Operation
		role    Role
		allowed bool
	}{
		{OpVerify, RoleBHW, true},
		{OpVerify, RoleMSWDO, false},
		{OpVerify, RoleBeneficiary, false},
		{OpApprove, RoleMSWDO, true},
		{OpApprove, RoleAdmin, true},
		{OpApprove, RoleBHW, false},
		{OpSchedule, RoleAdmin, true},
		{OpSchedule, RoleBHW, false},
		{OpClaim, RoleMSWDO, true},
		{OpClaim, RoleBeneficiary, false},
		{OpDeny, RoleBHW, false},
		{OpVerifyDeny, RoleBHW, true},
	}

	for _, tt := range tests {
		err := AuthorizeOperation(tt.op, tt.role)
		if tt.allowed {
			assert.NoError(t, err, "%s by %s", tt.op, tt.role)
		} else {
			assert.True(t, errors.Is(err, errors.ErrForbidden), "%s by %s", tt.op, tt.role)
		}
	}
}

func TestDenyOperation(t *testing.T) {
	tests := []struct {
		role Role
		want Operation
	}{
		{RoleBHW, OpVerifyDeny},
		{RoleMSWDO, OpDeny},
		{RoleAdmin, OpDeny},
	}
	for _, tt := range tests {
		op, err := DenyOperation(tt.role)
		require.NoError(t, err)
		assert.Equal(t, tt.want, op, "deny by %s", tt.role)
	}

	_, err := DenyOperation(RoleBeneficiary)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

// The wrong state for the caller's deny row is a conflict, not a role error.
func TestDenyOperation_WrongStateIsConflict(t *testing.T) {
	op, _ := DenyOperation(RoleMSWDO)
	_, err := NextStatus(op, StatusPending)
	assert.True(t, errors.Is(err, errors.ErrStateConflict))

	op, _ = DenyOperation(RoleBHW)
	_, err = NextStatus(op, StatusBHWVerified)
	assert.True(t, errors.Is(err, errors.ErrStateConflict))
}

func TestStatus_ScanRejectsUnknown(t *testing.T) {
	var s Status
	require.NoError(t, s.Scan([]byte("bhw_verified")))
	assert.Equal(t, StatusBHWVerified, s)

	assert.Error(t, s.Scan("archived"))
	assert.Error(t, s.Scan(42))

	_, err := Status("archived").Value()
	assert.Error(t, err)
}
