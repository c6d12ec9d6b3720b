package service

import (
	"fmt"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
)

func beneficiaryName(app *domain.ApplicationView) string {
	return app.BeneficiaryFirst + " " + app.BeneficiaryLast
}

func submittedMessages(app *domain.ApplicationView) (toBeneficiary, toStaff Message) {
	toBeneficiary = Message{
		Title: "Application Submitted",
		Body:  fmt.Sprintf("Your application for %s has been submitted and is waiting for BHW verification.", app.ProgramName),
		Type:  domain.NotificationInfo,
	}
	toStaff = Message{
		Title: "New Application Submitted",
		Body: fmt.Sprintf("%s submitted an application for %s on %s.",
			beneficiaryName(app), app.ProgramName, app.CreatedAt.Format("2006-01-02")),
		Type: domain.NotificationInfo,
	}
	return
}

func verifiedMessages(app *domain.ApplicationView) (toBeneficiary, toOffice Message) {
	toBeneficiary = Message{
		Title: "Application Verified",
		Body:  fmt.Sprintf("Your application for %s has been verified by the BHW and is awaiting MSWDO approval.", app.ProgramName),
		Type:  domain.NotificationInfo,
	}
	toOffice = Message{
		Title: "Application Verified by BHW",
		Body: fmt.Sprintf("BHW has completed verification for %s's application for %s. Ready for your review.",
			beneficiaryName(app), app.ProgramName),
		Type: domain.NotificationInfo,
	}
	return
}

func approvedMessages(app *domain.ApplicationView) (toBeneficiary, toWorker Message) {
	toBeneficiary = Message{
		Title: "Application Approved",
		Body:  fmt.Sprintf("Your application for %s has been approved by MSWDO.", app.ProgramName),
		Type:  domain.NotificationSuccess,
	}
	toWorker = Message{
		Title: "Application Approved by MSWDO",
		Body:  fmt.Sprintf("The application for %s has been approved by MSWDO.", beneficiaryName(app)),
		Type:  domain.NotificationInfo,
	}
	return
}

func deniedMessage(app *domain.ApplicationView, reason *string) Message {
	body := fmt.Sprintf("Your application for %s has been denied.", app.ProgramName)
	if reason != nil && *reason != "" {
		body += " Reason: " + *reason
	}
	return Message{Title: "Application Denied", Body: body, Type: domain.NotificationError}
}

func scheduledMessages(app *domain.ApplicationView, s *domain.ReleaseSchedule) (toBeneficiary, toWorker Message) {
	toBeneficiary = Message{
		Title: "Release Scheduled",
		Body: fmt.Sprintf("A release has been scheduled for your application for %s on %s at %s.",
			app.ProgramName, s.ReleaseDate, s.Venue),
		Type: domain.NotificationInfo,
	}
	toWorker = Message{
		Title: "Release Scheduled",
		Body:  fmt.Sprintf("A release has been scheduled for %s's application.", beneficiaryName(app)),
		Type:  domain.NotificationInfo,
	}
	return
}

func claimedMessages(app *domain.ApplicationView, s *domain.ReleaseSchedule) (toBeneficiary, toWorker Message) {
	claimedOn := ""
	if s.ClaimedAt != nil {
		claimedOn = s.ClaimedAt.Format("2006-01-02")
	}
	toBeneficiary = Message{
		Title: "Benefit Claimed",
		Body:  fmt.Sprintf("Your benefit for %s has been marked as claimed on %s.", app.ProgramName, claimedOn),
		Type:  domain.NotificationSuccess,
	}
	toWorker = Message{
		Title: "Benefit Claimed",
		Body:  fmt.Sprintf("%s has claimed their %s benefit.", beneficiaryName(app), app.ProgramName),
		Type:  domain.NotificationSuccess,
	}
	return
}
