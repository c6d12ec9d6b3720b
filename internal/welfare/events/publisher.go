package events

import (
	"context"
	"time"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/logger"
	"github.com/mesias/mswdo-backend/pkg/messaging"
)

// WelfareEventPublisher publishes workflow events. Publishing is
// best-effort: failures are logged and never returned to the caller.
type WelfareEventPublisher struct {
	sink   messaging.EventSink
	logger *logger.Logger
	now    func() time.Time
}

// NewWelfareEventPublisher wraps sink. Pass messaging.NopSink when the broker is disabled.
func NewWelfareEventPublisher(sink messaging.EventSink, log *logger.Logger) *WelfareEventPublisher {
	if sink == nil {
		sink = messaging.NopSink{}
	}
	return &WelfareEventPublisher{
		sink:   sink,
		logger: log.WithComponent("events"),
		now:    time.Now,
	}
}

// PublishSubmitted publishes the creation of an application.
func (p *WelfareEventPublisher) PublishSubmitted(ctx context.Context, app *domain.Application, by *actor.Actor) {
	p.publish(ctx, messaging.EventApplicationSubmitted, app.ID, p.statusEvent(app, domain.OpSubmit, "", by))
}

// PublishStatusChanged publishes a committed transition out of from.
func (p *WelfareEventPublisher) PublishStatusChanged(ctx context.Context, app *domain.Application, op domain.Operation, from domain.Status, by *actor.Actor) {
	p.publish(ctx, messaging.EventApplicationStatusChanged, app.ID, p.statusEvent(app, op, from, by))
}

func (p *WelfareEventPublisher) statusEvent(app *domain.Application, op domain.Operation, from domain.Status, by *actor.Actor) messaging.ApplicationStatusChangedEvent {
	data := messaging.ApplicationStatusChangedEvent{
		ApplicationID: app.ID,
		BeneficiaryID: app.BeneficiaryID,
		ProgramID:     app.ProgramID,
		Operation:     string(op),
		FromStatus:    string(from),
		ToStatus:      string(app.Status),
		OccurredAt:    p.now().UTC(),
	}
	if by != nil {
		data.ActorID = by.ID
		data.ActorRole = by.Role
	}
	return data
}

// PublishUserRegistered publishes a completed signup.
func (p *WelfareEventPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) {
	data := messaging.UserRegisteredEvent{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: string(user.UserType),
		Address:  user.Address,
	}
	p.publish(ctx, messaging.EventUserRegistered, user.ID, data)
}

// PublishDeceasedConfirmed publishes a confirmed death report and its effect.
func (p *WelfareEventPublisher) PublishDeceasedConfirmed(ctx context.Context, report *domain.DeceasedReport, beneficiaryIDs []string, deleted int64) {
	data := messaging.DeceasedReportConfirmedEvent{
		ReportID:            report.ID,
		BeneficiaryIDs:      beneficiaryIDs,
		DeletedApplications: deleted,
	}
	if report.ConfirmedBy != nil {
		data.ConfirmedBy = *report.ConfirmedBy
	}
	p.publish(ctx, messaging.EventDeceasedReportConfirmed, report.ID, data)
}

func (p *WelfareEventPublisher) publish(ctx context.Context, eventType, subjectID string, data interface{}) {
	if err := p.sink.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("subject_id", subjectID).
			Msg("failed to publish event")
	}
}
