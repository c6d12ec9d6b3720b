package service

import (
	"context"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/repository"
)

// TxRunner groups store calls into one unit of work. *database.DB
// satisfies it; tests use a pass-through.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(context.Context) error) error
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role *domain.Role, page, perPage int) ([]*domain.User, int64, error)
	IDsByRole(ctx context.Context, role domain.Role) ([]string, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (*domain.UserCounts, error)
}

type AssignmentStore interface {
	Create(ctx context.Context, a *domain.BHWAssignment) error
	ListByUser(ctx context.Context, bhwUserID string) ([]*domain.BHWAssignment, error)
	Barangays(ctx context.Context, bhwUserID string) ([]string, error)
	UserIDsForBarangay(ctx context.Context, barangay string) ([]string, error)
	Delete(ctx context.Context, bhwUserID, id string) error
}

type BeneficiaryStore interface {
	Create(ctx context.Context, b *domain.Beneficiary) error
	GetByID(ctx context.Context, id string) (*domain.BeneficiaryView, error)
	GetByUserID(ctx context.Context, userID string) (*domain.BeneficiaryView, error)
	List(ctx context.Context, scope domain.Scope, page, perPage int) ([]*domain.BeneficiaryView, int64, error)
	Update(ctx context.Context, b *domain.Beneficiary) error
	IDsByName(ctx context.Context, first, last string) ([]string, error)
	BarangayStats(ctx context.Context) ([]domain.BarangayStat, error)
}

type ProgramStore interface {
	Create(ctx context.Context, p *domain.Program) error
	GetByID(ctx context.Context, id string) (*domain.Program, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Program, error)
	Update(ctx context.Context, p *domain.Program) error
	Delete(ctx context.Context, id string) error
}

type ApplicationStore interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.ApplicationView, error)
	List(ctx context.Context, scope domain.Scope, filter domain.ApplicationFilter, page, perPage int) ([]*domain.ApplicationView, int64, error)
	ListAll(ctx context.Context, scope domain.Scope, filter domain.ApplicationFilter) ([]*domain.ApplicationView, error)
	ListByBeneficiaryProgram(ctx context.Context, beneficiaryID, programID string) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id string, expected domain.Status, u repository.StatusUpdate) (*domain.Application, error)
	UpdateNotes(ctx context.Context, id string, bhwNotes, mswdoNotes, denialReason *string) (*domain.Application, error)
	StatusCounts(ctx context.Context, scope domain.Scope) (*domain.StatusCounts, error)
	DeleteByBeneficiaries(ctx context.Context, beneficiaryIDs []string) (int64, error)
	AddDocuments(ctx context.Context, docs []domain.ApplicationDocument) error
	Documents(ctx context.Context, applicationID string) ([]domain.ApplicationDocument, error)
}

type ScheduleStore interface {
	Create(ctx context.Context, s *domain.ReleaseSchedule) error
	GetByApplication(ctx context.Context, applicationID string) (*domain.ReleaseSchedule, error)
	MarkClaimed(ctx context.Context, applicationID, staffID string, notes *string) (*domain.ReleaseSchedule, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
	Delete(ctx context.Context, id, userID string) error
}

type DeceasedReportStore interface {
	Create(ctx context.Context, d *domain.DeceasedReport) error
	GetByID(ctx context.Context, id string) (*domain.DeceasedReport, error)
	List(ctx context.Context, page, perPage int) ([]*domain.DeceasedReport, int64, error)
	Confirm(ctx context.Context, id, confirmedBy string) (*domain.DeceasedReport, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ UserStore           = (*repository.UserRepository)(nil)
	_ AssignmentStore     = (*repository.AssignmentRepository)(nil)
	_ BeneficiaryStore    = (*repository.BeneficiaryRepository)(nil)
	_ ProgramStore        = (*repository.ProgramRepository)(nil)
	_ ApplicationStore    = (*repository.ApplicationRepository)(nil)
	_ ScheduleStore       = (*repository.ScheduleRepository)(nil)
	_ NotificationStore   = (*repository.NotificationRepository)(nil)
	_ DeceasedReportStore = (*repository.DeceasedReportRepository)(nil)
)
