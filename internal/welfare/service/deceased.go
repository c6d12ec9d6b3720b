package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/events"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// DeceasedService manages death reports. Confirming a report withdraws
// every application of the matched beneficiaries.
type DeceasedService struct {
	tx            TxRunner
	reports       DeceasedReportStore
	beneficiaries BeneficiaryStore
	apps          ApplicationStore
	notifier      *Notifier
	events        *events.WelfareEventPublisher
	logger        *logger.Logger
}

func NewDeceasedService(
	tx TxRunner,
	reports DeceasedReportStore,
	beneficiaries BeneficiaryStore,
	apps ApplicationStore,
	notifier *Notifier,
	publisher *events.WelfareEventPublisher,
	log *logger.Logger,
) *DeceasedService {
	return &DeceasedService{
		tx:            tx,
		reports:       reports,
		beneficiaries: beneficiaries,
		apps:          apps,
		notifier:      notifier,
		events:        publisher,
		logger:        log.WithComponent("deceased_reports"),
	}
}

// Create files a report on behalf of a staff member and alerts the office.
func (s *DeceasedService) Create(ctx context.Context, a *actor.Actor, in domain.DeceasedReportInput) (*domain.DeceasedReport, error) {
	if err := requireRole(a, domain.Staff...); err != nil {
		return nil, err
	}

	reportedBy := a.ID
	d := &domain.DeceasedReport{
		FullName:            strings.TrimSpace(in.FullName),
		DateOfBirth:         in.DateOfBirth,
		Gender:              in.Gender,
		Nationality:         in.Nationality,
		Email:               in.Email,
		PhoneNumber:         in.PhoneNumber,
		Address:             in.Address,
		BeneficiaryID:       in.BeneficiaryID,
		BeneficiaryName:     in.BeneficiaryName,
		BeneficiaryBarangay: in.BeneficiaryBarangay,
		DateTimeOfDeath:     in.DateTimeOfDeath,
		CauseOfDeath:        in.CauseOfDeath,
		SourceOfInformation: in.SourceOfInformation,
		ReportedBy:          &reportedBy,
	}
	if err := s.reports.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().Str("report_id", d.ID).Str("reported_by", a.ID).Msg("deceased report filed")
	s.notifier.Send(ctx, Message{
		Title: "New Deceased Report",
		Body:  fmt.Sprintf("A deceased report for %s has been submitted and is awaiting confirmation.", d.FullName),
		Type:  domain.NotificationWarning,
	}, s.notifier.Office(ctx)...)

	return d, nil
}

func (s *DeceasedService) List(ctx context.Context, a *actor.Actor, page, perPage int) ([]*domain.DeceasedReport, int64, error) {
	if err := requireRole(a, domain.Staff...); err != nil {
		return nil, 0, err
	}
	return s.reports.List(ctx, page, perPage)
}

func (s *DeceasedService) Get(ctx context.Context, a *actor.Actor, id string) (*domain.DeceasedReport, error) {
	if err := requireRole(a, domain.Staff...); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

// ConfirmResult reports what a confirmation removed.
type ConfirmResult struct {
	Report              *domain.DeceasedReport `json:"report"`
	BeneficiaryIDs      []string               `json:"beneficiary_ids"`
	DeletedApplications int64                  `json:"deleted_applications"`
}

// Confirm marks a report confirmed and deletes the applications of every
// matched beneficiary in the same transaction. A report names its
// beneficiary either directly by id or by first and last name.
func (s *DeceasedService) Confirm(ctx context.Context, a *actor.Actor, id string) (*ConfirmResult, error) {
	if err := requireRole(a, domain.Office...); err != nil {
		return nil, err
	}

	result := &ConfirmResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		report, err := s.reports.Confirm(ctx, id, a.ID)
		if err != nil {
			return err
		}
		result.Report = report

		ids, err := s.match(ctx, report)
		if err != nil {
			return err
		}
		result.BeneficiaryIDs = ids

		result.DeletedApplications, err = s.apps.DeleteByBeneficiaries(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", id).
		Strs("beneficiary_ids", result.BeneficiaryIDs).
		Int64("deleted_applications", result.DeletedApplications).
		Msg("deceased report confirmed")

	s.events.PublishDeceasedConfirmed(ctx, result.Report, result.BeneficiaryIDs, result.DeletedApplications)

	msg := Message{
		Title: "Deceased Report Confirmed",
		Body:  fmt.Sprintf("A deceased report for %s has been confirmed. Related applications have been removed.", result.Report.FullName),
		Type:  domain.NotificationWarning,
	}
	for _, bid := range result.BeneficiaryIDs {
		b, err := s.beneficiaries.GetByID(ctx, bid)
		if err != nil {
			s.logger.Warn().Err(err).Str("beneficiary_id", bid).Msg("failed to load matched beneficiary")
			continue
		}
		s.notifier.Send(ctx, msg, b.UserID)
	}

	return result, nil
}

func (s *DeceasedService) match(ctx context.Context, report *domain.DeceasedReport) ([]string, error) {
	if report.BeneficiaryID != nil && *report.BeneficiaryID != "" {
		return []string{*report.BeneficiaryID}, nil
	}

	name := report.FullName
	if report.BeneficiaryName != nil && strings.TrimSpace(*report.BeneficiaryName) != "" {
		name = *report.BeneficiaryName
	}
	first, last, ok := domain.NameParts(name)
	if !ok {
		return nil, nil
	}
	return s.beneficiaries.IDsByName(ctx, first, last)
}

func (s *DeceasedService) Delete(ctx context.Context, a *actor.Actor, id string) error {
	if err := requireRole(a, domain.Office...); err != nil {
		return err
	}
	return s.reports.Delete(ctx, id)
}

// Update applies a PATCH body. Only confirmation is patchable.
func (s *DeceasedService) Update(ctx context.Context, a *actor.Actor, id string, confirmed *bool) (*ConfirmResult, error) {
	if confirmed == nil || !*confirmed {
		return nil, errors.Validation(map[string]string{"confirmed": "must be true"})
	}
	return s.Confirm(ctx, a, id)
}
