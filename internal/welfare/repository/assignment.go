package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
)

// AssignmentRepository stores which barangays each health worker covers.
type AssignmentRepository struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a; a duplicate (bhw_user_id, barangay) pair is a Conflict.
func (r *AssignmentRepository) Create(ctx context.Context, a *domain.BHWAssignment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO bhw_assignments (id, bhw_user_id, barangay)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query, a.ID, a.BHWUserID, a.Barangay).Scan(&a.CreatedAt)
	return database.MapError(err)
}

func (r *AssignmentRepository) ListByUser(ctx context.Context, bhwUserID string) ([]*domain.BHWAssignment, error) {
	out := []*domain.BHWAssignment{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, `
		SELECT id, bhw_user_id, barangay, created_at
		FROM bhw_assignments
		WHERE bhw_user_id = $1
		ORDER BY barangay
	`, bhwUserID)
	return out, err
}

// Barangays returns the barangay names assigned to a health worker.
func (r *AssignmentRepository) Barangays(ctx context.Context, bhwUserID string) ([]string, error) {
	out := []string{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, `SELECT barangay FROM bhw_assignments WHERE bhw_user_id = $1`, bhwUserID)
	return out, err
}

// UserIDsForBarangay returns the health workers covering barangay.
func (r *AssignmentRepository) UserIDsForBarangay(ctx context.Context, barangay string) ([]string, error) {
	out := []string{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, `
		SELECT DISTINCT bhw_user_id
		FROM bhw_assignments
		WHERE lower(trim(barangay)) = $1
	`, domain.NormalizeBarangay(barangay))
	return out, err
}

func (r *AssignmentRepository) Delete(ctx context.Context, bhwUserID, id string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM bhw_assignments WHERE id = $1 AND bhw_user_id = $2`, id, bhwUserID)
	if err != nil {
		return database.MapError(err)
	}
	return affected(res, "assignment")
}
