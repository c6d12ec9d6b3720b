package service

import (
	"context"
	"strings"
	"time"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/events"
	"github.com/mesias/mswdo-backend/internal/welfare/repository"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
	"github.com/mesias/mswdo-backend/pkg/metrics"
)

// SubmitInput is a beneficiary's application to a program.
type SubmitInput struct {
	ProgramID string          `json:"program_id" validate:"required,uuid"`
	FormData  domain.FormData `json:"form_data"`
	Documents []DocumentInput `json:"documents" validate:"omitempty,dive"`
}

type DocumentInput struct {
	DocumentType string `json:"document_type" validate:"required,max=100"`
	DocumentURL  string `json:"document_url" validate:"required,max=500"`
}

// VerifyInput is a health worker's decision on a pending application.
type VerifyInput struct {
	Action       string  `json:"action" validate:"required,oneof=approve deny"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
	DenialReason *string `json:"denial_reason" validate:"omitempty,max=2000"`
}

type ApproveInput struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type DenyInput struct {
	DenialReason *string `json:"denial_reason" validate:"omitempty,max=2000"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

type ScheduleInput struct {
	ReleaseDate  domain.Date `json:"release_date"`
	ReleaseTime  *string     `json:"release_time" validate:"omitempty,max=20"`
	Venue        string      `json:"venue" validate:"required,max=300"`
	Instructions *string     `json:"instructions" validate:"omitempty,max=2000"`
}

type ClaimInput struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// PatchInput is the generic application update. Notes are written as
// given; a status value is routed through the matching workflow operation.
type PatchInput struct {
	Status       *domain.Status `json:"status"`
	BHWNotes     *string        `json:"bhw_notes" validate:"omitempty,max=2000"`
	MSWDONotes   *string        `json:"mswdo_notes" validate:"omitempty,max=2000"`
	DenialReason *string        `json:"denial_reason" validate:"omitempty,max=2000"`
}

// Engine runs the application workflow. Every transition checks the
// caller's role, then scope, then the current status, and writes the new
// status conditionally on the status it read.
type Engine struct {
	tx            TxRunner
	apps          ApplicationStore
	schedules     ScheduleStore
	beneficiaries BeneficiaryStore
	programs      ProgramStore
	scopes        *ScopeResolver
	notifier      *Notifier
	events        *events.WelfareEventPublisher
	logger        *logger.Logger
	now           func() time.Time
}

func NewEngine(
	tx TxRunner,
	apps ApplicationStore,
	schedules ScheduleStore,
	beneficiaries BeneficiaryStore,
	programs ProgramStore,
	scopes *ScopeResolver,
	notifier *Notifier,
	publisher *events.WelfareEventPublisher,
	log *logger.Logger,
) *Engine {
	return &Engine{
		tx:            tx,
		apps:          apps,
		schedules:     schedules,
		beneficiaries: beneficiaries,
		programs:      programs,
		scopes:        scopes,
		notifier:      notifier,
		events:        publisher,
		logger:        log.WithComponent("workflow"),
		now:           time.Now,
	}
}

// Submit creates a pending application for the calling beneficiary after
// the program and re-application checks pass.
func (e *Engine) Submit(ctx context.Context, a *actor.Actor, in SubmitInput) (view *domain.ApplicationView, err error) {
	defer func() { record(domain.OpSubmit, err) }()

	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if err := domain.Authorize(domain.Role(a.Role), domain.RoleBeneficiary); err != nil {
		return nil, errors.Forbidden("only beneficiaries can submit applications")
	}

	ben, err := e.beneficiaries.GetByUserID(ctx, a.ID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Validation(map[string]string{"beneficiary": "create a beneficiary profile before applying"})
	}
	if err != nil {
		return nil, err
	}

	app := &domain.Application{
		BeneficiaryID: ben.ID,
		ProgramID:     in.ProgramID,
		FormData:      in.FormData,
	}
	if app.FormData == nil {
		app.FormData = domain.FormData{}
	}

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		program, err := e.programs.GetByID(ctx, in.ProgramID)
		if err != nil {
			return err
		}
		prior, err := e.apps.ListByBeneficiaryProgram(ctx, ben.ID, program.ID)
		if err != nil {
			return err
		}
		if elig := domain.EvaluateSubmission(program, ben.Classification, prior, e.now()); !elig.Eligible {
			return errors.NotEligible(elig.Reason)
		}

		if err := e.apps.Create(ctx, app); err != nil {
			return err
		}

		docs := make([]domain.ApplicationDocument, 0, len(in.Documents))
		for _, d := range in.Documents {
			docs = append(docs, domain.ApplicationDocument{
				ApplicationID: app.ID,
				DocumentType:  d.DocumentType,
				DocumentURL:   d.DocumentURL,
			})
		}
		return e.apps.AddDocuments(ctx, docs)
	})
	if err != nil {
		return nil, err
	}

	// The application is committed; a failed reload must not report the
	// submission as failed.
	view, err = e.load(ctx, app.ID)
	if err != nil {
		e.logger.Error().Err(err).Str("application_id", app.ID).Msg("failed to reload submitted application")
		view = &domain.ApplicationView{
			Application:         *app,
			BeneficiaryUserID:   a.ID,
			Classification:      ben.Classification,
			BeneficiaryFirst:    ben.FirstName,
			BeneficiaryLast:     ben.LastName,
			BeneficiaryBarangay: ben.Address,
		}
		err = nil
	}

	e.logger.Info().Str("application_id", app.ID).Str("program_id", app.ProgramID).Msg("application submitted")
	e.events.PublishSubmitted(ctx, &view.Application, a)

	toBeneficiary, toStaff := submittedMessages(view)
	toBeneficiary.ApplicationID, toStaff.ApplicationID = &view.ID, &view.ID
	e.notifier.Send(ctx, toBeneficiary, view.BeneficiaryUserID)
	staff := append(e.notifier.Workers(ctx, view.BeneficiaryBarangay), e.notifier.Office(ctx)...)
	e.notifier.Send(ctx, toStaff, staff...)

	return view, nil
}

// Verify records a health worker's decision on a pending application.
func (e *Engine) Verify(ctx context.Context, a *actor.Actor, id string, in VerifyInput) (*domain.ApplicationView, error) {
	if in.Action == "deny" {
		return e.run(ctx, a, id, domain.OpVerifyDeny, func(context.Context, *domain.ApplicationView) (repository.StatusUpdate, error) {
			return repository.StatusUpdate{To: domain.StatusDenied, BHWNotes: in.Notes, DenialReason: in.DenialReason}, nil
		}, nil)
	}
	return e.run(ctx, a, id, domain.OpVerify, func(context.Context, *domain.ApplicationView) (repository.StatusUpdate, error) {
		return repository.StatusUpdate{To: domain.StatusBHWVerified, VerifiedBy: &a.ID, BHWNotes: in.Notes}, nil
	}, nil)
}

// Approve is the office sign-off on a verified application.
func (e *Engine) Approve(ctx context.Context, a *actor.Actor, id string, in ApproveInput) (*domain.ApplicationView, error) {
	return e.run(ctx, a, id, domain.OpApprove, func(context.Context, *domain.ApplicationView) (repository.StatusUpdate, error) {
		return repository.StatusUpdate{To: domain.StatusMSWDOApproved, ApprovedBy: &a.ID, MSWDONotes: in.Notes}, nil
	}, nil)
}

// Deny picks the deny row from the caller's role: a health worker
// denies at pending, the office after verification. Any other state is
// a StateConflict.
func (e *Engine) Deny(ctx context.Context, a *actor.Actor, id string, in DenyInput) (*domain.ApplicationView, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	op, err := domain.DenyOperation(domain.Role(a.Role))
	if err != nil {
		record(domain.OpDeny, err)
		return nil, err
	}

	return e.run(ctx, a, id, op, func(context.Context, *domain.ApplicationView) (repository.StatusUpdate, error) {
		u := repository.StatusUpdate{To: domain.StatusDenied, DenialReason: in.DenialReason}
		if domain.Role(a.Role) == domain.RoleBHW {
			u.BHWNotes = in.Notes
		} else {
			u.MSWDONotes = in.Notes
		}
		return u, nil
	}, nil)
}

// Schedule books the release of an approved application. The schedule
// row and the status flip commit together.
func (e *Engine) Schedule(ctx context.Context, a *actor.Actor, id string, in ScheduleInput) (*domain.ApplicationView, error) {
	if in.ReleaseDate.IsZero() {
		err := errors.Validation(map[string]string{"release_date": "release_date is required"})
		record(domain.OpSchedule, err)
		return nil, err
	}

	return e.run(ctx, a, id, domain.OpSchedule,
		func(context.Context, *domain.ApplicationView) (repository.StatusUpdate, error) {
			return repository.StatusUpdate{To: domain.StatusScheduled}, nil
		},
		func(ctx context.Context, app *domain.ApplicationView) error {
			schedule := &domain.ReleaseSchedule{
				ApplicationID: app.ID,
				ReleaseDate:   in.ReleaseDate,
				ReleaseTime:   in.ReleaseTime,
				Venue:         strings.TrimSpace(in.Venue),
				Instructions:  in.Instructions,
			}
			return e.schedules.Create(ctx, schedule)
		},
	)
}

// Claim records the hand-over of a scheduled benefit.
func (e *Engine) Claim(ctx context.Context, a *actor.Actor, id string, in ClaimInput) (*domain.ApplicationView, error) {
	return e.run(ctx, a, id, domain.OpClaim,
		func(context.Context, *domain.ApplicationView) (repository.StatusUpdate, error) {
			return repository.StatusUpdate{To: domain.StatusClaimed}, nil
		},
		func(ctx context.Context, app *domain.ApplicationView) error {
			_, err := e.schedules.MarkClaimed(ctx, app.ID, a.ID, in.Notes)
			return err
		},
	)
}

// UpdateNotes changes note fields without a transition. Health workers
// write bhw_notes, the office writes mswdo_notes, and any staff member
// may record a denial reason.
func (e *Engine) UpdateNotes(ctx context.Context, a *actor.Actor, id string, in PatchInput) (*domain.ApplicationView, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	role := domain.Role(a.Role)
	if err := domain.Authorize(role, domain.Staff...); err != nil {
		return nil, err
	}
	if in.BHWNotes != nil && role != domain.RoleBHW {
		return nil, errors.Forbidden("only health workers can write bhw_notes")
	}
	if in.MSWDONotes != nil && !role.In(domain.Office...) {
		return nil, errors.Forbidden("only the office can write mswdo_notes")
	}

	current, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.scopes.Check(ctx, a, current.BeneficiaryID, current.BeneficiaryBarangay); err != nil {
		return nil, err
	}

	if _, err := e.apps.UpdateNotes(ctx, id, in.BHWNotes, in.MSWDONotes, in.DenialReason); err != nil {
		return nil, err
	}
	return e.load(ctx, id)
}

// Patch applies a generic update: a status value is dispatched to the
// operation that produces it, otherwise only notes change.
func (e *Engine) Patch(ctx context.Context, a *actor.Actor, id string, in PatchInput) (*domain.ApplicationView, error) {
	if in.Status == nil {
		return e.UpdateNotes(ctx, a, id, in)
	}
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}

	switch *in.Status {
	case domain.StatusBHWVerified:
		return e.Verify(ctx, a, id, VerifyInput{Action: "approve", Notes: in.BHWNotes})
	case domain.StatusMSWDOApproved:
		return e.Approve(ctx, a, id, ApproveInput{Notes: in.MSWDONotes})
	case domain.StatusDenied:
		notes := in.MSWDONotes
		if domain.Role(a.Role) == domain.RoleBHW {
			notes = in.BHWNotes
		}
		return e.Deny(ctx, a, id, DenyInput{DenialReason: in.DenialReason, Notes: notes})
	case domain.StatusClaimed:
		return e.Claim(ctx, a, id, ClaimInput{})
	case domain.StatusScheduled:
		return nil, errors.Validation(map[string]string{"status": "use the schedule endpoint to schedule a release"})
	case domain.StatusPending:
		return nil, errors.StateConflict("an application cannot return to pending")
	default:
		return nil, errors.Validation(map[string]string{"status": "unknown status " + string(*in.Status)})
	}
}

// Get returns one application with its documents and schedule.
func (e *Engine) Get(ctx context.Context, a *actor.Actor, id string) (*domain.ApplicationView, error) {
	view, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.scopes.Check(ctx, a, view.BeneficiaryID, view.BeneficiaryBarangay); err != nil {
		return nil, err
	}
	return view, nil
}

// GetSchedule returns the release schedule of a visible application.
func (e *Engine) GetSchedule(ctx context.Context, a *actor.Actor, id string) (*domain.ReleaseSchedule, error) {
	view, err := e.Get(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if view.Schedule == nil {
		return nil, errors.NotFound("release schedule")
	}
	return view.Schedule, nil
}

// List returns the caller's visible applications.
func (e *Engine) List(ctx context.Context, a *actor.Actor, filter domain.ApplicationFilter, page, perPage int) ([]*domain.ApplicationView, int64, error) {
	scope, err := e.scopes.Resolve(ctx, a)
	if err != nil {
		return nil, 0, err
	}
	if scope.Empty {
		return []*domain.ApplicationView{}, 0, nil
	}
	return e.apps.List(ctx, scope, filter, page, perPage)
}

// Counts summarises the caller's visible applications by status.
func (e *Engine) Counts(ctx context.Context, a *actor.Actor) (*domain.StatusCounts, error) {
	scope, err := e.scopes.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	if scope.Empty {
		return &domain.StatusCounts{}, nil
	}
	return e.apps.StatusCounts(ctx, scope)
}

type updateFunc func(ctx context.Context, app *domain.ApplicationView) (repository.StatusUpdate, error)
type effectFunc func(ctx context.Context, app *domain.ApplicationView) error

// run executes one table-driven transition: role, existence, scope and
// state checks, then the conditional status write and any extra writes
// in one transaction, then events and notifications after commit.
func (e *Engine) run(ctx context.Context, a *actor.Actor, id string, op domain.Operation, update updateFunc, effect effectFunc) (view *domain.ApplicationView, err error) {
	defer func() { record(op, err) }()

	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if err := domain.AuthorizeOperation(op, domain.Role(a.Role)); err != nil {
		return nil, err
	}

	current, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.scopes.Check(ctx, a, current.BeneficiaryID, current.BeneficiaryBarangay); err != nil {
		return nil, err
	}
	if _, err := domain.NextStatus(op, current.Status); err != nil {
		return nil, err
	}

	u, err := update(ctx, current)
	if err != nil {
		return nil, err
	}

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := e.apps.UpdateStatus(ctx, id, current.Status, u); err != nil {
			return err
		}
		if effect != nil {
			return effect(ctx, current)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err = e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("application_id", id).
		Str("operation", string(op)).
		Str("from", string(current.Status)).
		Str("to", string(view.Status)).
		Str("actor_id", a.ID).
		Msg("application transitioned")

	e.events.PublishStatusChanged(ctx, &view.Application, op, current.Status, a)
	e.notifyTransition(ctx, op, view, u.DenialReason)

	return view, nil
}

func (e *Engine) notifyTransition(ctx context.Context, op domain.Operation, view *domain.ApplicationView, reason *string) {
	worker := ""
	if view.BHWVerifiedBy != nil {
		worker = *view.BHWVerifiedBy
	}

	var toBeneficiary, toOthers Message
	var others []string

	switch op {
	case domain.OpVerify:
		toBeneficiary, toOthers = verifiedMessages(view)
		others = e.notifier.Office(ctx)
	case domain.OpApprove:
		toBeneficiary, toOthers = approvedMessages(view)
		others = []string{worker}
	case domain.OpVerifyDeny, domain.OpDeny:
		toBeneficiary = deniedMessage(view, reason)
	case domain.OpSchedule:
		if view.Schedule != nil {
			toBeneficiary, toOthers = scheduledMessages(view, view.Schedule)
			others = []string{worker}
		}
	case domain.OpClaim:
		if view.Schedule != nil {
			toBeneficiary, toOthers = claimedMessages(view, view.Schedule)
			others = []string{worker}
		}
	}

	if toBeneficiary.Title != "" {
		toBeneficiary.ApplicationID = &view.ID
		e.notifier.Send(ctx, toBeneficiary, view.BeneficiaryUserID)
	}
	if toOthers.Title != "" {
		toOthers.ApplicationID = &view.ID
		e.notifier.Send(ctx, toOthers, others...)
	}
}

// load reads an application with its document references and schedule.
func (e *Engine) load(ctx context.Context, id string) (*domain.ApplicationView, error) {
	view, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := e.apps.Documents(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		view.Documents = append(view.Documents, domain.DocumentRef{Key: d.DocumentType, URL: d.DocumentURL})
	}
	view.Documents = append(view.Documents, view.FormData.Documents()...)

	schedule, err := e.schedules.GetByApplication(ctx, id)
	switch {
	case err == nil:
		view.Schedule = schedule
	case !errors.Is(err, errors.ErrNotFound):
		return nil, err
	}
	return view, nil
}

func record(op domain.Operation, err error) {
	if err == nil {
		metrics.RecordTransition(string(op), "ok")
		return
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		metrics.RecordTransition(string(op), appErr.Code)
		return
	}
	metrics.RecordTransition(string(op), "error")
}
