package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func approvedDaysAgo(programID string, days int) Application {
	at := now.Add(-time.Duration(days) * 24 * time.Hour)
	return Application{ProgramID: programID, Status: StatusMSWDOApproved, MSWDOApprovedAt: &at, CreatedAt: at.Add(-48 * time.Hour)}
}

func TestEvaluateEligibility(t *testing.T) {
	monthly := &Program{ID: "p1", WaitingPeriodDays: 30}
	oneTime := &Program{ID: "p1", IsOneTime: true}
	open := &Program{ID: "p1"}

	tests := []struct {
		name     string
		program  *Program
		prior    []Application
		eligible bool
		reason   string
	}{
		{"no prior application", monthly, nil, true, ""},
		{"pending blocks", monthly, []Application{{ProgramID: "p1", Status: StatusPending}}, false, ReasonPendingApplication},
		{"verified blocks", open, []Application{{ProgramID: "p1", Status: StatusBHWVerified}}, false, ReasonPendingApplication},
		{"only denied allows resubmission", oneTime, []Application{{ProgramID: "p1", Status: StatusDenied}}, true, ""},
		{"one time after approval", oneTime, []Application{approvedDaysAgo("p1", 400)}, false, ReasonOneTime},
		{"waiting period not elapsed", monthly, []Application{approvedDaysAgo("p1", 10)}, false, "you can apply again in 20 days"},
		{"waiting period elapsed", monthly, []Application{approvedDaysAgo("p1", 31)}, true, ""},
		{"no waiting period", open, []Application{approvedDaysAgo("p1", 0)}, true, ""},
		{"claimed counts as approval", monthly, []Application{{ProgramID: "p1", Status: StatusClaimed, CreatedAt: now.Add(-29 * 24 * time.Hour)}}, false, "you can apply again in 1 day"},
		{"other programs ignored", monthly, []Application{{ProgramID: "p2", Status: StatusPending}}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateEligibility(tt.program, tt.prior, now)
			assert.Equal(t, tt.eligible, got.Eligible)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestEvaluateEligibility_UsesMostRecentApproval(t *testing.T) {
	program := &Program{ID: "p1", WaitingPeriodDays: 30}
	prior := []Application{approvedDaysAgo("p1", 90), approvedDaysAgo("p1", 5)}

	got := EvaluateEligibility(program, prior, now)
	assert.False(t, got.Eligible)
	assert.Equal(t, 25, got.DaysRemaining)
}

func TestProgram_Accepts(t *testing.T) {
	p := &Program{}
	assert.True(t, p.Accepts(ClassificationPWD))

	p.Classification = ClassificationList{ClassificationSeniorCitizen}
	assert.True(t, p.Accepts(ClassificationSeniorCitizen))
	assert.False(t, p.Accepts(ClassificationSoloParent))
}

func TestEvaluateSubmission(t *testing.T) {
	program := &Program{ID: "p1", IsActive: true, Classification: ClassificationList{ClassificationPWD}}

	got := EvaluateSubmission(program, ClassificationPWD, nil, now)
	assert.True(t, got.Eligible)

	got = EvaluateSubmission(program, ClassificationSoloParent, nil, now)
	assert.Equal(t, ReasonClassification, got.Reason)

	program.IsActive = false
	got = EvaluateSubmission(program, ClassificationPWD, nil, now)
	assert.Equal(t, ReasonInactive, got.Reason)
}
