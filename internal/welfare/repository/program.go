package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
)

const programColumns = `id, name, description, classification, requirements, program_type, is_active,
	waiting_period_days, is_one_time, created_at, updated_at`

// ProgramRepository handles program persistence
type ProgramRepository struct {
	db *database.DB
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *database.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) Create(ctx context.Context, p *domain.Program) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO programs (id, name, description, classification, requirements, program_type,
		                      is_active, waiting_period_days, is_one_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.Classification, p.Requirements, p.ProgramType,
		p.IsActive, p.WaitingPeriodDays, p.IsOneTime,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return database.MapError(err)
}

func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	var p domain.Program
	if err := r.db.Conn(ctx).GetContext(ctx, &p, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "program")
	}
	return &p, nil
}

// List returns programs, newest first. activeOnly hides retired programs.
func (r *ProgramRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	out := []*domain.Program{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, query)
	return out, err
}

func (r *ProgramRepository) Update(ctx context.Context, p *domain.Program) error {
	query := `
		UPDATE programs
		SET name = $2, description = $3, classification = $4, requirements = $5, program_type = $6,
		    is_active = $7, waiting_period_days = $8, is_one_time = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.Classification, p.Requirements, p.ProgramType,
		p.IsActive, p.WaitingPeriodDays, p.IsOneTime,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return notFound(err, "program")
	}
	return nil
}

// Delete removes a program and, by cascade, its applications.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err)
	}
	return affected(res, "program")
}
