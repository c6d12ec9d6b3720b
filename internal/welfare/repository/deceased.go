package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

const deceasedColumns = `id, full_name, date_of_birth, gender, nationality, email, phone_number, address,
	beneficiary_id, beneficiary_name, beneficiary_barangay, date_time_of_death, cause_of_death,
	source_of_information, reported_by, confirmed, confirmed_by, confirmed_at, created_at`

// DeceasedReportRepository handles deceased report persistence
type DeceasedReportRepository struct {
	db *database.DB
}

func NewDeceasedReportRepository(db *database.DB) *DeceasedReportRepository {
	return &DeceasedReportRepository{db: db}
}

func (r *DeceasedReportRepository) Create(ctx context.Context, d *domain.DeceasedReport) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO deceased_reports (id, full_name, date_of_birth, gender, nationality, email, phone_number,
		    address, beneficiary_id, beneficiary_name, beneficiary_barangay, date_time_of_death,
		    cause_of_death, source_of_information, reported_by)
		VALUES (:id, :full_name, :date_of_birth, :gender, :nationality, :email, :phone_number,
		    :address, :beneficiary_id, :beneficiary_name, :beneficiary_barangay, :date_time_of_death,
		    :cause_of_death, :source_of_information, :reported_by)
	`
	if _, err := r.db.Conn(ctx).NamedExecContext(ctx, query, d); err != nil {
		return database.MapError(err)
	}
	return nil
}

func (r *DeceasedReportRepository) GetByID(ctx context.Context, id string) (*domain.DeceasedReport, error) {
	var d domain.DeceasedReport
	if err := r.db.Conn(ctx).GetContext(ctx, &d, `SELECT `+deceasedColumns+` FROM deceased_reports WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "deceased report")
	}
	return &d, nil
}

func (r *DeceasedReportRepository) List(ctx context.Context, page, perPage int) ([]*domain.DeceasedReport, int64, error) {
	var total int64
	if err := r.db.Conn(ctx).GetContext(ctx, &total, `SELECT COUNT(*) FROM deceased_reports`); err != nil {
		return nil, 0, err
	}

	w := &where{}
	query := `SELECT ` + deceasedColumns + ` FROM deceased_reports ORDER BY created_at DESC` + w.page(page, perPage)
	out := []*domain.DeceasedReport{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &out, query, w.args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Confirm flips an unconfirmed report to confirmed. A report that is
// already confirmed yields a StateConflict.
func (r *DeceasedReportRepository) Confirm(ctx context.Context, id, confirmedBy string) (*domain.DeceasedReport, error) {
	var d domain.DeceasedReport
	err := r.db.Conn(ctx).GetContext(ctx, &d, `
		UPDATE deceased_reports
		SET confirmed = TRUE, confirmed_by = $2, confirmed_at = now()
		WHERE id = $1 AND NOT confirmed
		RETURNING `+deceasedColumns, id, confirmedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.StateConflict("deceased report is already confirmed")
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return &d, nil
}

func (r *DeceasedReportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM deceased_reports WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err)
	}
	return affected(res, "deceased report")
}
