package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/messaging"
)

// ============================================================================
// Scope resolution
// ============================================================================

func TestScopeResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	admin := f.user(domain.RoleAdmin, "Ada", "Admin", "Lico")
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	f.assign(bhw, "Lico", "Sabang")
	idle := f.user(domain.RoleBHW, "Idle", "Worker", "Lico")
	ben, benID := f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)
	noProfile := f.user(domain.RoleBeneficiary, "New", "Comer", "Lico")

	tests := []struct {
		name  string
		actor *actor.Actor
		want  domain.Scope
	}{
		{"office sees all", admin, domain.AllScope()},
		{"worker sees assigned barangays", bhw, domain.Scope{Barangays: []string{"Lico", "Sabang"}}},
		{"worker without assignments sees nothing", idle, domain.EmptyScope()},
		{"beneficiary sees own profile", ben, domain.Scope{BeneficiaryID: benID}},
		{"beneficiary without profile sees nothing", noProfile, domain.EmptyScope()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.scopes.Resolve(ctx, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := f.scopes.Resolve(ctx, nil)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

// ============================================================================
// Beneficiaries
// ============================================================================

func TestBeneficiaryService_CreateOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ben := f.user(domain.RoleBeneficiary, "Ana", "Lim", "Lico")

	view, err := f.beneficiaries.Create(ctx, ben, domain.BeneficiaryInput{Classification: domain.ClassificationSoloParent})
	require.NoError(t, err)
	assert.Equal(t, ben.ID, view.UserID)
	assert.Equal(t, domain.BeneficiaryPending, view.Status)
	assert.Equal(t, "Lico", view.Address)

	_, err = f.beneficiaries.Create(ctx, ben, domain.BeneficiaryInput{Classification: domain.ClassificationPWD})
	assert.True(t, errors.Is(err, errors.ErrConflict))

	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	_, err = f.beneficiaries.Create(ctx, bhw, domain.BeneficiaryInput{Classification: domain.ClassificationPWD})
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestBeneficiaryService_ReadsAreScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	f.assign(bhw, "Lico")
	idle := f.user(domain.RoleBHW, "Idle", "Worker", "Lico")
	_, inLico := f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)
	other, inSabang := f.beneficiary("Ben", "Tan", "Sabang", domain.ClassificationPWD)

	_, err := f.beneficiaries.Get(ctx, bhw, inLico)
	assert.NoError(t, err)

	_, err = f.beneficiaries.Get(ctx, bhw, inSabang)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = f.beneficiaries.Get(ctx, other, inLico)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	own, err := f.beneficiaries.GetByUser(ctx, other, other.ID)
	require.NoError(t, err)
	assert.Equal(t, inSabang, own.ID)

	list, total, err := f.beneficiaries.List(ctx, bhw, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, inLico, list[0].ID)

	list, _, err = f.beneficiaries.List(ctx, idle, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBeneficiaryService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	f.assign(bhw, "Lico")
	ben, id := f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)

	approved := domain.BeneficiaryApproved
	_, err := f.beneficiaries.Update(ctx, ben, id, domain.BeneficiaryUpdate{Status: &approved})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = f.beneficiaries.Update(ctx, bhw, id, domain.BeneficiaryUpdate{GuardianName: ptr("x")})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	view, err := f.beneficiaries.Update(ctx, ben, id, domain.BeneficiaryUpdate{
		GuardianName: ptr("Pedro Lim"),
		Documents:    domain.Documents{PSAURL: ptr("/uploads/psa.pdf")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pedro Lim", *view.GuardianName)
	assert.Equal(t, "/uploads/psa.pdf", *view.PSAURL)
	assert.Equal(t, domain.ClassificationPWD, view.Classification)

	view, err = f.beneficiaries.Update(ctx, office, id, domain.BeneficiaryUpdate{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, domain.BeneficiaryApproved, view.Status)
	assert.Equal(t, "Pedro Lim", *view.GuardianName)
}

func TestBeneficiaryService_BarangayStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)
	f.beneficiary("Ben", "Tan", "Lico", domain.ClassificationSeniorCitizen)
	f.beneficiary("Cara", "Uy", "Sabang", domain.ClassificationSoloParent)

	_, err := f.beneficiaries.BarangayStats(ctx, bhw)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	stats, err := f.beneficiaries.BarangayStats(ctx, office)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.BarangayStat{Barangay: "Lico", Total: 2, SeniorCitizen: 1, PWD: 1}, stats[0])
	assert.Equal(t, int64(1), stats[1].SoloParent)
}

// ============================================================================
// Users and assignments
// ============================================================================

func TestUserService_CreateWithAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := f.user(domain.RoleAdmin, "Ada", "Admin", "Lico")
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")

	in := CreateUserInput{
		Email:            " New.Worker@Naval.test ",
		Password:         "secret123",
		FirstName:        "New",
		LastName:         "Worker",
		Username:         "newworker",
		Address:          "lico",
		UserType:         domain.RoleBHW,
		AssignedBarangay: ptr("  sabang"),
	}

	_, err := f.users.Create(ctx, office, in)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	u, err := f.users.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "new.worker@naval.test", u.Email)
	assert.Equal(t, "Lico", u.Address)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))

	list, err := f.users.Assignments(ctx, admin, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sabang", list[0].Barangay)

	in.Email, in.Username = "other@naval.test", "other"
	in.UserType = domain.RoleMSWDO
	_, err = f.users.Create(ctx, admin, in)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestUserService_Assignments(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := f.user(domain.RoleAdmin, "Ada", "Admin", "Lico")
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	ben := f.user(domain.RoleBeneficiary, "Ana", "Lim", "Lico")

	a, err := f.users.Assign(ctx, admin, bhw.ID, AssignmentInput{Barangay: "LIBTONG"})
	require.NoError(t, err)
	assert.Equal(t, "Libtong", a.Barangay)

	_, err = f.users.Assign(ctx, admin, bhw.ID, AssignmentInput{Barangay: "Libtong"})
	assert.True(t, errors.Is(err, errors.ErrConflict))

	_, err = f.users.Assign(ctx, admin, ben.ID, AssignmentInput{Barangay: "Libtong"})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = f.users.Assign(ctx, bhw, bhw.ID, AssignmentInput{Barangay: "Lico"})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	own, err := f.users.Assignments(ctx, bhw, bhw.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = f.users.Assignments(ctx, ben, bhw.ID)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	require.NoError(t, f.users.Unassign(ctx, admin, bhw.ID, a.ID))
	assert.True(t, errors.Is(f.users.Unassign(ctx, admin, bhw.ID, a.ID), errors.ErrNotFound))
}

func TestUserService_ReadUpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := f.user(domain.RoleAdmin, "Ada", "Admin", "Lico")
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")
	ben := f.user(domain.RoleBeneficiary, "Ana", "Lim", "Lico")
	other := f.user(domain.RoleBeneficiary, "Ben", "Tan", "Lico")

	_, err := f.users.Get(ctx, ben, ben.ID)
	assert.NoError(t, err)
	_, err = f.users.Get(ctx, ben, other.ID)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	_, err = f.users.Get(ctx, office, other.ID)
	assert.NoError(t, err)

	_, err = f.users.Update(ctx, other, ben.ID, domain.UserUpdate{FirstName: ptr("Mallory")})
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	_, err = f.users.Update(ctx, office, ben.ID, domain.UserUpdate{FirstName: ptr("Mallory")})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	u, err := f.users.Update(ctx, ben, ben.ID, domain.UserUpdate{ContactNumber: ptr("09171234567"), Address: ptr(" sabang ")})
	require.NoError(t, err)
	assert.Equal(t, "09171234567", *u.ContactNumber)
	assert.Equal(t, "Sabang", u.Address)
	assert.Equal(t, domain.RoleBeneficiary, u.UserType)

	_, _, err = f.users.List(ctx, ben, nil, 1, 20)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	role := domain.RoleBeneficiary
	list, total, err := f.users.List(ctx, office, &role, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 2, total)

	counts, err := f.users.Counts(ctx, office)
	require.NoError(t, err)
	assert.Equal(t, &domain.UserCounts{Total: 4, Beneficiaries: 2, MSWDO: 1, Admins: 1}, counts)

	assert.True(t, errors.Is(f.users.Delete(ctx, admin, admin.ID), errors.ErrBadRequest))
	assert.True(t, errors.Is(f.users.Delete(ctx, office, other.ID), errors.ErrForbidden))
	require.NoError(t, f.users.Delete(ctx, admin, other.ID))
	_, err = f.users.Get(ctx, admin, other.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

// ============================================================================
// Programs
// ============================================================================

func TestProgramService_VisibilityAndManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")
	ben, _ := f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)

	_, err := f.programs.Create(ctx, ben, domain.ProgramInput{Name: "x", ProgramType: domain.ProgramMedical})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	open, err := f.programs.Create(ctx, office, domain.ProgramInput{
		Name:           "Medical Assistance",
		ProgramType:    domain.ProgramMedical,
		Classification: []domain.Classification{domain.ClassificationPWD},
		Requirements:   []string{"Medical certificate"},
	})
	require.NoError(t, err)
	assert.True(t, open.IsActive)

	closed, err := f.programs.Create(ctx, office, domain.ProgramInput{Name: "Old Program", ProgramType: domain.ProgramLivelihood, IsActive: ptr(false)})
	require.NoError(t, err)

	all, err := f.programs.List(ctx, office)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := f.programs.List(ctx, ben)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, open.ID, visible[0].ID)

	_, err = f.programs.Get(ctx, ben, closed.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	updated, err := f.programs.Update(ctx, office, open.ID, domain.ProgramUpdate{WaitingPeriodDays: ptr(90)})
	require.NoError(t, err)
	assert.Equal(t, 90, updated.WaitingPeriodDays)
	assert.Equal(t, "Medical Assistance", updated.Name)

	require.NoError(t, f.programs.Delete(ctx, office, closed.ID))
	assert.True(t, errors.Is(f.programs.Delete(ctx, office, closed.ID), errors.ErrNotFound))
}

func TestProgramService_EligibilityForStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	f.assign(bhw, "Lico")
	_, inLico := f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)
	_, inSabang := f.beneficiary("Ben", "Tan", "Sabang", domain.ClassificationPWD)
	id := f.program("Aid")

	elig, err := f.programs.Eligibility(ctx, bhw, id, inLico)
	require.NoError(t, err)
	assert.True(t, elig.Eligible)

	_, err = f.programs.Eligibility(ctx, bhw, id, inSabang)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = f.programs.Eligibility(ctx, bhw, id, "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

// ============================================================================
// Notifications
// ============================================================================

func TestNotificationService_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	ben := f.user(domain.RoleBeneficiary, "Ana", "Lim", "Lico")
	other := f.user(domain.RoleBeneficiary, "Ben", "Tan", "Lico")

	_, err := f.notifications.Create(ctx, ben, CreateNotificationInput{UserID: other.ID, Title: "hi", Message: "x"})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	n, err := f.notifications.Create(ctx, bhw, CreateNotificationInput{UserID: ben.ID, Title: "Home visit", Message: "Tomorrow at 9"})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationInfo, n.Type)

	_, err = f.notifications.MarkRead(ctx, other, n.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(f.notifications.Delete(ctx, other, n.ID), errors.ErrNotFound))

	unread, err := f.notifications.List(ctx, ben, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	read, err := f.notifications.MarkRead(ctx, ben, n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err = f.notifications.List(ctx, ben, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, f.notifications.Delete(ctx, ben, n.ID))
	all, err := f.notifications.List(ctx, ben, false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNotifier_SendDeduplicates(t *testing.T) {
	f := newFixture()
	ben := f.user(domain.RoleBeneficiary, "Ana", "Lim", "Lico")

	f.notifier.Send(context.Background(), Message{Title: "Once"}, ben.ID, "", ben.ID)
	assert.Equal(t, []string{"Once"}, f.mem.Inbox(ben.ID))
}

// ============================================================================
// Deceased reports
// ============================================================================

func TestDeceasedService_ConfirmByName(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	f.assign(bhw, "Lico")
	ben, benID := f.beneficiary("Lola", "Cruz", "Lico", domain.ClassificationSeniorCitizen)
	survivor, _ := f.beneficiary("Ana", "Lim", "Lico", domain.ClassificationPWD)
	programID := f.program("Pension")

	_, err := f.engine.Submit(ctx, ben, SubmitInput{ProgramID: programID})
	require.NoError(t, err)
	_, err = f.engine.Submit(ctx, survivor, SubmitInput{ProgramID: programID})
	require.NoError(t, err)

	report, err := f.deceased.Create(ctx, bhw, domain.DeceasedReportInput{
		FullName:            "Lola Maria Cruz",
		SourceOfInformation: ptr("family"),
	})
	require.NoError(t, err)
	assert.Equal(t, bhw.ID, *report.ReportedBy)
	assert.Contains(t, f.mem.Inbox(office.ID), "New Deceased Report")

	_, err = f.deceased.Confirm(ctx, bhw, report.ID)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	res, err := f.deceased.Confirm(ctx, office, report.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{benID}, res.BeneficiaryIDs)
	assert.EqualValues(t, 1, res.DeletedApplications)
	assert.True(t, res.Report.Confirmed)
	assert.Equal(t, office.ID, *res.Report.ConfirmedBy)

	remaining, _, err := f.engine.List(ctx, office, domain.ApplicationFilter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Ana", remaining[0].BeneficiaryFirst)

	assert.Contains(t, f.mem.Inbox(ben.ID), "Deceased Report Confirmed")
	assert.Contains(t, f.mem.EventTypes(), messaging.EventDeceasedReportConfirmed)

	_, err = f.deceased.Confirm(ctx, office, report.ID)
	assert.True(t, errors.Is(err, errors.ErrStateConflict))
}

func TestDeceasedService_ConfirmByExplicitBeneficiary(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := f.user(domain.RoleAdmin, "Ada", "Admin", "Lico")
	ben, benID := f.beneficiary("Lola", "Cruz", "Lico", domain.ClassificationSeniorCitizen)
	_, err := f.engine.Submit(ctx, ben, SubmitInput{ProgramID: f.program("Pension")})
	require.NoError(t, err)

	report, err := f.deceased.Create(ctx, admin, domain.DeceasedReportInput{
		FullName:      "Someone Else Entirely",
		BeneficiaryID: &benID,
	})
	require.NoError(t, err)

	res, err := f.deceased.Update(ctx, admin, report.ID, ptr(true))
	require.NoError(t, err)
	assert.Equal(t, []string{benID}, res.BeneficiaryIDs)
	assert.EqualValues(t, 1, res.DeletedApplications)

	_, err = f.deceased.Update(ctx, admin, report.ID, ptr(false))
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestDeceasedService_SingleWordNameMatchesNobody(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := f.user(domain.RoleAdmin, "Ada", "Admin", "Lico")
	f.beneficiary("Lola", "Cruz", "Lico", domain.ClassificationSeniorCitizen)

	report, err := f.deceased.Create(ctx, admin, domain.DeceasedReportInput{FullName: "Lola"})
	require.NoError(t, err)

	res, err := f.deceased.Confirm(ctx, admin, report.ID)
	require.NoError(t, err)
	assert.Empty(t, res.BeneficiaryIDs)
	assert.Zero(t, res.DeletedApplications)
}

func TestDeceasedService_Access(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	office := f.user(domain.RoleMSWDO, "Maria", "Santos", "Lico")
	bhw := f.user(domain.RoleBHW, "Jose", "Reyes", "Lico")
	ben := f.user(domain.RoleBeneficiary, "Ana", "Lim", "Lico")

	_, err := f.deceased.Create(ctx, ben, domain.DeceasedReportInput{FullName: "A B"})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	report, err := f.deceased.Create(ctx, bhw, domain.DeceasedReportInput{FullName: "A B"})
	require.NoError(t, err)

	_, _, err = f.deceased.List(ctx, ben, 1, 20)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	list, total, err := f.deceased.List(ctx, bhw, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 1, total)

	assert.True(t, errors.Is(f.deceased.Delete(ctx, bhw, report.ID), errors.ErrForbidden))
	require.NoError(t, f.deceased.Delete(ctx, office, report.ID))
	_, err = f.deceased.Get(ctx, office, report.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
