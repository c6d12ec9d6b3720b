package domain

import (
	"fmt"
	"math"
	"time"
)

// Eligibility is the outcome of the re-application gate.
type Eligibility struct {
	Eligible      bool   `json:"eligible"`
	Reason        string `json:"reason,omitempty"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
}

const (
	ReasonPendingApplication = "pending application exists"
	ReasonOneTime            = "program can only be claimed once"
	ReasonInactive           = "program is not accepting applications"
	ReasonClassification     = "program is not available for this classification"
)

// EvaluateEligibility decides whether a beneficiary may submit to program
// given their earlier applications to that same program.
func EvaluateEligibility(program *Program, prior []Application, now time.Time) Eligibility {
	var latestApproval *Application
	for i := range prior {
		app := &prior[i]
		if app.ProgramID != "" && app.ProgramID != program.ID {
			continue
		}
		if app.Status.Active() {
			return Eligibility{Reason: ReasonPendingApplication}
		}
		if app.Status.Approved() {
			if latestApproval == nil || app.ApprovedAt().After(latestApproval.ApprovedAt()) {
				latestApproval = app
			}
		}
	}

	if latestApproval == nil {
		return Eligibility{Eligible: true}
	}

	if program.IsOneTime {
		return Eligibility{Reason: ReasonOneTime}
	}

	if program.WaitingPeriodDays > 0 {
		elapsed := now.Sub(latestApproval.ApprovedAt())
		wait := time.Duration(program.WaitingPeriodDays) * 24 * time.Hour
		if elapsed < wait {
			remaining := int(math.Ceil((wait - elapsed).Hours() / 24))
			return Eligibility{
				Reason:        fmt.Sprintf("you can apply again in %d %s", remaining, plural(remaining, "day", "days")),
				DaysRemaining: remaining,
			}
		}
	}

	return Eligibility{Eligible: true}
}

// EvaluateSubmission adds the program-level gates to EvaluateEligibility:
// the program must be active and open to classification c.
func EvaluateSubmission(program *Program, c Classification, prior []Application, now time.Time) Eligibility {
	if !program.IsActive {
		return Eligibility{Reason: ReasonInactive}
	}
	if !program.Accepts(c) {
		return Eligibility{Reason: ReasonClassification}
	}
	return EvaluateEligibility(program, prior, now)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
