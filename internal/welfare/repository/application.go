package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

const applicationColumns = `a.id, a.beneficiary_id, a.program_id, a.status, a.form_data,
	a.bhw_verified_at, a.bhw_verified_by, a.bhw_notes, a.mswdo_approved_at, a.mswdo_approved_by,
	a.mswdo_notes, a.denial_reason, a.created_at, a.updated_at`

const applicationViewSelect = `SELECT ` + applicationColumns + `,
	p.name AS program_name, p.program_type,
	b.user_id AS beneficiary_user_id, b.classification,
	u.first_name AS beneficiary_first_name, u.last_name AS beneficiary_last_name,
	u.address AS beneficiary_barangay
	FROM applications a
	JOIN programs p ON p.id = a.program_id
	JOIN beneficiaries b ON b.id = a.beneficiary_id
	JOIN users u ON u.id = b.user_id`

// StatusUpdate describes one workflow transition. Nil fields leave the
// stored value untouched, so metadata written by an earlier step survives.
type StatusUpdate struct {
	To           domain.Status
	VerifiedBy   *string
	ApprovedBy   *string
	BHWNotes     *string
	MSWDONotes   *string
	DenialReason *string
}

// ApplicationRepository handles application persistence
type ApplicationRepository struct {
	db *database.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *database.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application in StatusPending.
func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Status = domain.StatusPending

	query := `
		INSERT INTO applications (id, beneficiary_id, program_id, status, form_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		a.ID, a.BeneficiaryID, a.ProgramID, a.Status, a.FormData,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return database.MapError(err)
}

// GetByID returns the application joined with its program and beneficiary.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.ApplicationView, error) {
	var v domain.ApplicationView
	if err := r.db.Conn(ctx).GetContext(ctx, &v, applicationViewSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, notFound(err, "application")
	}
	return &v, nil
}

// List returns the page of applications visible under scope, newest first.
func (r *ApplicationRepository) List(ctx context.Context, scope domain.Scope, filter domain.ApplicationFilter, page, perPage int) ([]*domain.ApplicationView, int64, error) {
	w := applicationWhere(scope, filter)

	var total int64
	countQuery := `SELECT COUNT(*)
		FROM applications a
		JOIN beneficiaries b ON b.id = a.beneficiary_id
		JOIN users u ON u.id = b.user_id` + w.String()
	if err := r.db.Conn(ctx).GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, err
	}

	query := applicationViewSelect + w.String() + ` ORDER BY a.created_at DESC` + w.page(page, perPage)
	out := []*domain.ApplicationView{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &out, query, w.args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAll returns every application visible under scope without paging.
func (r *ApplicationRepository) ListAll(ctx context.Context, scope domain.Scope, filter domain.ApplicationFilter) ([]*domain.ApplicationView, error) {
	w := applicationWhere(scope, filter)
	out := []*domain.ApplicationView{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, applicationViewSelect+w.String()+` ORDER BY a.created_at DESC`, w.args...)
	return out, err
}

func applicationWhere(scope domain.Scope, filter domain.ApplicationFilter) *where {
	w := &where{}
	w.scope(scope)
	if filter.Status != nil {
		w.and("a.status = " + w.arg(*filter.Status))
	}
	if filter.ProgramID != "" {
		w.and("a.program_id = " + w.arg(filter.ProgramID))
	}
	return w
}

// ListByBeneficiaryProgram returns the prior applications the
// re-application gate looks at.
func (r *ApplicationRepository) ListByBeneficiaryProgram(ctx context.Context, beneficiaryID, programID string) ([]domain.Application, error) {
	out := []domain.Application{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, `
		SELECT `+applicationColumns+`
		FROM applications a
		WHERE a.beneficiary_id = $1 AND a.program_id = $2
		ORDER BY a.created_at DESC
	`, beneficiaryID, programID)
	return out, err
}

// UpdateStatus applies u only if the application is still in expected.
// Losing a race to another transition yields a StateConflict.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, expected domain.Status, u StatusUpdate) (*domain.Application, error) {
	query := `
		UPDATE applications a SET
		    status = $3,
		    bhw_verified_at = CASE WHEN $4::uuid IS NOT NULL THEN now() ELSE a.bhw_verified_at END,
		    bhw_verified_by = COALESCE($4::uuid, a.bhw_verified_by),
		    mswdo_approved_at = CASE WHEN $5::uuid IS NOT NULL THEN now() ELSE a.mswdo_approved_at END,
		    mswdo_approved_by = COALESCE($5::uuid, a.mswdo_approved_by),
		    bhw_notes = COALESCE($6, a.bhw_notes),
		    mswdo_notes = COALESCE($7, a.mswdo_notes),
		    denial_reason = COALESCE($8, a.denial_reason),
		    updated_at = now()
		WHERE a.id = $1 AND a.status = $2
		RETURNING ` + applicationColumns

	var a domain.Application
	err := r.db.Conn(ctx).GetContext(ctx, &a, query,
		id, expected, u.To, u.VerifiedBy, u.ApprovedBy, u.BHWNotes, u.MSWDONotes, u.DenialReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.StateConflict("application is no longer " + string(expected))
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return &a, nil
}

// UpdateNotes sets note fields without touching the status.
func (r *ApplicationRepository) UpdateNotes(ctx context.Context, id string, bhwNotes, mswdoNotes, denialReason *string) (*domain.Application, error) {
	query := `
		UPDATE applications a SET
		    bhw_notes = COALESCE($2, a.bhw_notes),
		    mswdo_notes = COALESCE($3, a.mswdo_notes),
		    denial_reason = COALESCE($4, a.denial_reason),
		    updated_at = now()
		WHERE a.id = $1
		RETURNING ` + applicationColumns

	var a domain.Application
	if err := r.db.Conn(ctx).GetContext(ctx, &a, query, id, bhwNotes, mswdoNotes, denialReason); err != nil {
		return nil, notFound(err, "application")
	}
	return &a, nil
}

// StatusCounts summarises the applications visible under scope.
func (r *ApplicationRepository) StatusCounts(ctx context.Context, scope domain.Scope) (*domain.StatusCounts, error) {
	w := &where{}
	w.scope(scope)

	query := `
		SELECT COUNT(*) FILTER (WHERE a.status = 'pending') AS pending,
		       COUNT(*) FILTER (WHERE a.status = 'bhw_verified') AS verified,
		       COUNT(*) FILTER (WHERE a.status = 'mswdo_approved') AS approved,
		       COUNT(*) FILTER (WHERE a.status = 'scheduled') AS scheduled,
		       COUNT(*) FILTER (WHERE a.status = 'claimed') AS claimed,
		       COUNT(*) FILTER (WHERE a.status = 'denied') AS denied
		FROM applications a
		JOIN beneficiaries b ON b.id = a.beneficiary_id
		JOIN users u ON u.id = b.user_id` + w.String()

	var c domain.StatusCounts
	if err := r.db.Conn(ctx).GetContext(ctx, &c, query, w.args...); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteByBeneficiaries removes every application of the given profiles.
func (r *ApplicationRepository) DeleteByBeneficiaries(ctx context.Context, beneficiaryIDs []string) (int64, error) {
	if len(beneficiaryIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM applications WHERE beneficiary_id = ANY($1)`, pq.Array(beneficiaryIDs))
	if err != nil {
		return 0, database.MapError(err)
	}
	return res.RowsAffected()
}

// AddDocuments inserts the document rows of an application.
func (r *ApplicationRepository) AddDocuments(ctx context.Context, docs []domain.ApplicationDocument) error {
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.New().String()
		}
	}

	query := r.db.Rebind(`INSERT INTO application_documents (id, application_id, document_type, document_url) VALUES ` + valuesList(len(docs), 4))
	_, err := r.db.Conn(ctx).ExecContext(ctx, query, flattenDocuments(docs)...)
	return database.MapError(err)
}

func flattenDocuments(docs []domain.ApplicationDocument) []any {
	args := make([]any, 0, len(docs)*4)
	for _, d := range docs {
		args = append(args, d.ID, d.ApplicationID, d.DocumentType, d.DocumentURL)
	}
	return args
}

// valuesList renders rows groups of cols bind vars: (?, ?), (?, ?).
func valuesList(rows, cols int) string {
	group := "(?" + strings.Repeat(", ?", cols-1) + ")"
	return group + strings.Repeat(", "+group, rows-1)
}

// Documents lists the document rows of an application.
func (r *ApplicationRepository) Documents(ctx context.Context, applicationID string) ([]domain.ApplicationDocument, error) {
	out := []domain.ApplicationDocument{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, `
		SELECT id, application_id, document_type, document_url, uploaded_at
		FROM application_documents
		WHERE application_id = $1
		ORDER BY uploaded_at
	`, applicationID)
	return out, err
}
