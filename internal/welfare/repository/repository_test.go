package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*database.DB, *testutil.MockDB) {
	t.Helper()
	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })
	return database.Wrap(mock.DB, nil), mock
}

var applicationCols = []string{
	"id", "beneficiary_id", "program_id", "status", "form_data",
	"bhw_verified_at", "bhw_verified_by", "bhw_notes", "mswdo_approved_at", "mswdo_approved_by",
	"mswdo_notes", "denial_reason", "created_at", "updated_at",
}

func TestWhere_Scope(t *testing.T) {
	w := &where{}
	w.scope(domain.AllScope())
	assert.Empty(t, w.String())

	w = &where{}
	w.scope(domain.Scope{BeneficiaryID: "b1"})
	assert.Equal(t, " WHERE b.id = $1", w.String())
	assert.Equal(t, []any{"b1"}, w.args)

	w = &where{}
	w.scope(domain.Scope{Barangays: []string{" Caraycaray", "BORAC"}})
	w.and("a.status = " + w.arg(domain.StatusPending))
	assert.Equal(t, " WHERE lower(trim(u.address)) = ANY($1) AND a.status = $2", w.String())
	assert.Equal(t, pq.Array([]string{"caraycaray", "borac"}), w.args[0])
	assert.Equal(t, " LIMIT $3 OFFSET $4", w.page(2, 20))
	assert.Equal(t, 20, w.args[3])
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(testutil.AnyUUID{}, "ana@example.com", "hash", "Ana", "Reyes", nil, "ana",
			"Caraycaray", nil, nil, domain.RoleBeneficiary).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	u := &domain.User{
		Email: "ana@example.com", PasswordHash: "hash", FirstName: "Ana", LastName: "Reyes",
		Username: "ana", Address: "Caraycaray", UserType: domain.RoleBeneficiary,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, now, u.CreatedAt)
	mock.ExpectationsWereMet(t)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{Email: "dup@example.com", UserType: domain.RoleBHW})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Contains(t, err.Error(), "email")
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE id = $1").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUserRepository_Counts(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FILTER (WHERE user_type = 'bhw')").
		WillReturnRows(testutil.MockRows("total", "beneficiaries", "bhws", "mswdo", "admins").
			AddRow(10, 6, 2, 1, 1))

	c, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.UserCounts{Total: 10, Beneficiaries: 6, BHWs: 2, MSWDO: 1, Admins: 1}, *c)
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("DELETE FROM users").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestApplicationRepository_UpdateStatus(t *testing.T) {
	db, mock := newDB(t)
	repo := NewApplicationRepository(db)
	now := time.Now()
	bhw := "bhw-1"
	notes := "documents complete"

	mock.ExpectQuery("WHERE a.id = $1 AND a.status = $2").
		WithArgs("app-1", domain.StatusPending, domain.StatusBHWVerified, &bhw, nil, &notes, nil, nil).
		WillReturnRows(testutil.MockRows(applicationCols...).AddRow(
			"app-1", "ben-1", "prog-1", "bhw_verified", []byte(`{"reason":"medicine"}`),
			now, bhw, notes, nil, nil, nil, nil, now, now,
		))

	app, err := repo.UpdateStatus(context.Background(), "app-1", domain.StatusPending, StatusUpdate{
		To: domain.StatusBHWVerified, VerifiedBy: &bhw, BHWNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBHWVerified, app.Status)
	assert.Equal(t, "medicine", app.FormData["reason"])
	require.NotNil(t, app.BHWVerifiedBy)
	assert.Equal(t, bhw, *app.BHWVerifiedBy)
	mock.ExpectationsWereMet(t)
}

func TestApplicationRepository_UpdateStatusLostRace(t *testing.T) {
	db, mock := newDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("WHERE a.id = $1 AND a.status = $2").
		WillReturnRows(testutil.MockRows(applicationCols...))

	_, err := repo.UpdateStatus(context.Background(), "app-1", domain.StatusBHWVerified, StatusUpdate{To: domain.StatusMSWDOApproved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStateConflict))
}

func TestApplicationRepository_ScanRejectsUnknownStatus(t *testing.T) {
	db, mock := newDB(t)
	repo := NewApplicationRepository(db)
	now := time.Now()

	mock.ExpectQuery("FROM applications a").
		WillReturnRows(testutil.MockRows(applicationCols...).AddRow(
			"app-1", "ben-1", "prog-1", "archived", []byte(`{}`),
			nil, nil, nil, nil, nil, nil, nil, now, now,
		))

	_, err := repo.ListByBeneficiaryProgram(context.Background(), "ben-1", "prog-1")
	assert.Error(t, err)
}

func TestApplicationRepository_ListScopedToBarangays(t *testing.T) {
	db, mock := newDB(t)
	repo := NewApplicationRepository(db)
	pending := domain.StatusPending

	mock.ExpectQuery("SELECT COUNT(*)").
		WithArgs(sqlmock.AnyArg(), domain.StatusPending).
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	mock.ExpectQuery("lower(trim(u.address)) = ANY($1) AND a.status = $2 ORDER BY a.created_at DESC LIMIT $3 OFFSET $4").
		WithArgs(sqlmock.AnyArg(), domain.StatusPending, 20, 0).
		WillReturnRows(testutil.MockRows(applicationCols...))

	apps, total, err := repo.List(context.Background(),
		domain.Scope{Barangays: []string{"Caraycaray"}},
		domain.ApplicationFilter{Status: &pending}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, apps)
	mock.ExpectationsWereMet(t)
}

func TestApplicationRepository_AddDocuments(t *testing.T) {
	db, mock := newDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)").
		WithArgs("d1", "app-1", "medical_certificate", "/uploads/a.pdf", testutil.AnyUUID{}, "app-1", "photos", "/uploads/b.png").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.AddDocuments(context.Background(), []domain.ApplicationDocument{
		{ID: "d1", ApplicationID: "app-1", DocumentType: "medical_certificate", DocumentURL: "/uploads/a.pdf"},
		{ApplicationID: "app-1", DocumentType: "photos", DocumentURL: "/uploads/b.png"},
	})
	require.NoError(t, err)
	mock.ExpectationsWereMet(t)

	require.NoError(t, repo.AddDocuments(context.Background(), nil))
}

func TestApplicationRepository_DeleteByBeneficiaries(t *testing.T) {
	db, mock := newDB(t)
	repo := NewApplicationRepository(db)

	n, err := repo.DeleteByBeneficiaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec("DELETE FROM applications WHERE beneficiary_id = ANY($1)").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err = repo.DeleteByBeneficiaries(context.Background(), []string{"b1", "b2"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeceasedReportRepository_ConfirmTwice(t *testing.T) {
	db, mock := newDB(t)
	repo := NewDeceasedReportRepository(db)

	mock.ExpectQuery("WHERE id = $1 AND NOT confirmed").
		WithArgs("r1", "admin-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Confirm(context.Background(), "r1", "admin-1")
	assert.True(t, errors.Is(err, errors.ErrStateConflict))
}

func TestNotificationRepository_MarkReadOtherUser(t *testing.T) {
	db, mock := newDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("UPDATE notifications SET is_read = TRUE").
		WithArgs("n1", "someone-else").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), "n1", "someone-else")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestProgramRepository_CreateRejectsNegativeWait(t *testing.T) {
	db, mock := newDB(t)
	repo := NewProgramRepository(db)

	mock.ExpectQuery("INSERT INTO programs").
		WillReturnError(&pq.Error{Code: "23514", Constraint: "programs_waiting_period_nonnegative"})

	err := repo.Create(context.Background(), &domain.Program{Name: "Burial", ProgramType: domain.ProgramCashAssistance, WaitingPeriodDays: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
