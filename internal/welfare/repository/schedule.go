package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
)

const scheduleColumns = `id, application_id, release_date, release_time, venue, instructions,
	claimed_at, claimed_by_staff, notes, created_at`

// ScheduleRepository stores release appointments, one per application.
type ScheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *domain.ReleaseSchedule) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	query := `
		INSERT INTO release_schedules (id, application_id, release_date, release_time, venue, instructions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		s.ID, s.ApplicationID, s.ReleaseDate, s.ReleaseTime, s.Venue, s.Instructions,
	).Scan(&s.CreatedAt)
	return database.MapError(err)
}

func (r *ScheduleRepository) GetByApplication(ctx context.Context, applicationID string) (*domain.ReleaseSchedule, error) {
	var s domain.ReleaseSchedule
	err := r.db.Conn(ctx).GetContext(ctx, &s, `SELECT `+scheduleColumns+` FROM release_schedules WHERE application_id = $1`, applicationID)
	if err != nil {
		return nil, notFound(err, "release schedule")
	}
	return &s, nil
}

// MarkClaimed records the hand-over on the schedule row.
func (r *ScheduleRepository) MarkClaimed(ctx context.Context, applicationID, staffID string, notes *string) (*domain.ReleaseSchedule, error) {
	query := `
		UPDATE release_schedules
		SET claimed_at = now(), claimed_by_staff = $2, notes = COALESCE($3, notes)
		WHERE application_id = $1
		RETURNING ` + scheduleColumns

	var s domain.ReleaseSchedule
	if err := r.db.Conn(ctx).GetContext(ctx, &s, query, applicationID, staffID, notes); err != nil {
		return nil, notFound(err, "release schedule")
	}
	return &s, nil
}
