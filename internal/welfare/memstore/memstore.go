// Package memstore implements every welfare store interface over plain
// maps. It backs the service and handler tests; the transaction runner is
// a pass-through, so a failing step leaves earlier writes in place.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/repository"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// Store holds all rows. Adapters such as Users or Applications view it
// through one store interface each.
type Store struct {
	mu  sync.Mutex
	seq int
	Now time.Time

	users         map[string]*domain.User
	assignments   []*domain.BHWAssignment
	beneficiaries map[string]*domain.Beneficiary
	programs      map[string]*domain.Program
	apps          map[string]*domain.Application
	documents     []domain.ApplicationDocument
	schedules     map[string]*domain.ReleaseSchedule
	notifications []*domain.Notification
	reports       map[string]*domain.DeceasedReport

	FailNotifications bool
	events            []recordedEvent
}

type recordedEvent struct {
	Type string
	Data interface{}
}

// New returns an empty store whose clock reads 2026-06-15 09:00 UTC.
func New() *Store {
	return &Store{
		Now:           time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC),
		users:         map[string]*domain.User{},
		beneficiaries: map[string]*domain.Beneficiary{},
		programs:      map[string]*domain.Program{},
		apps:          map[string]*domain.Application{},
		schedules:     map[string]*domain.ReleaseSchedule{},
		reports:       map[string]*domain.DeceasedReport{},
	}
}

// nextID returns UUID-shaped ids that sort in creation order.
func (m *Store) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
}

func (m *Store) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Publish records workflow events in place of a broker.
func (m *Store) Publish(_ context.Context, eventType string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (m *Store) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// Inbox returns the titles of a user's notifications in creation order.
func (m *Store) Inbox(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n.Title)
		}
	}
	return out
}

// ============================================================================
// Users and assignments
// ============================================================================

type Users struct{ *Store }

func (s Users) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return errors.Conflict("email or username already exists")
		}
	}
	u.ID = s.nextID()
	u.CreatedAt, u.UpdatedAt = s.Now, s.Now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (s Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.NotFound("user")
}

func (s Users) List(_ context.Context, role *domain.Role, page, perPage int) ([]*domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.User
	for _, u := range s.users {
		if role == nil || u.UserType == *role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s Users) IDsByRole(_ context.Context, role domain.Role) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, u := range s.users {
		if u.UserType == role {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s Users) Update(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return errors.NotFound("user")
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errors.NotFound("user")
	}
	delete(s.users, id)
	return nil
}

func (s Users) Counts(_ context.Context) (*domain.UserCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &domain.UserCounts{}
	for _, u := range s.users {
		c.Total++
		switch u.UserType {
		case domain.RoleBeneficiary:
			c.Beneficiaries++
		case domain.RoleBHW:
			c.BHWs++
		case domain.RoleMSWDO:
			c.MSWDO++
		case domain.RoleAdmin:
			c.Admins++
		}
	}
	return c, nil
}

type Assignments struct{ *Store }

func (s Assignments) Create(_ context.Context, a *domain.BHWAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.BHWUserID == a.BHWUserID && domain.SameBarangay(existing.Barangay, a.Barangay) {
			return errors.Conflict("barangay already assigned")
		}
	}
	a.ID = s.nextID()
	a.CreatedAt = s.Now
	cp := *a
	s.assignments = append(s.assignments, &cp)
	return nil
}

func (s Assignments) ListByUser(_ context.Context, bhwUserID string) ([]*domain.BHWAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.BHWAssignment{}
	for _, a := range s.assignments {
		if a.BHWUserID == bhwUserID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s Assignments) Barangays(ctx context.Context, bhwUserID string) ([]string, error) {
	list, _ := s.ListByUser(ctx, bhwUserID)
	var out []string
	for _, a := range list {
		out = append(out, a.Barangay)
	}
	return out, nil
}

func (s Assignments) UserIDsForBarangay(_ context.Context, barangay string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, a := range s.assignments {
		if domain.SameBarangay(a.Barangay, barangay) {
			ids = append(ids, a.BHWUserID)
		}
	}
	return ids, nil
}

func (s Assignments) Delete(_ context.Context, bhwUserID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.assignments {
		if a.ID == id && a.BHWUserID == bhwUserID {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("assignment")
}

// ============================================================================
// Beneficiaries and programs
// ============================================================================

type Beneficiaries struct{ *Store }

func (s Beneficiaries) Create(_ context.Context, b *domain.Beneficiary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.beneficiaries {
		if existing.UserID == b.UserID {
			return errors.Conflict("beneficiary profile already exists")
		}
	}
	b.ID = s.nextID()
	b.CreatedAt = s.Now
	if b.Status == "" {
		b.Status = domain.BeneficiaryPending
	}
	cp := *b
	s.beneficiaries[b.ID] = &cp
	return nil
}

// view must be called with mu held.
func (s Beneficiaries) view(b *domain.Beneficiary) *domain.BeneficiaryView {
	v := &domain.BeneficiaryView{Beneficiary: *b}
	if u, ok := s.users[b.UserID]; ok {
		v.FirstName, v.LastName, v.MiddleName = u.FirstName, u.LastName, u.MiddleName
		v.Email, v.Address, v.ContactNumber = u.Email, u.Address, u.ContactNumber
	}
	return v
}

func (s Beneficiaries) GetByID(_ context.Context, id string) (*domain.BeneficiaryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beneficiaries[id]
	if !ok {
		return nil, errors.NotFound("beneficiary")
	}
	return s.view(b), nil
}

func (s Beneficiaries) GetByUserID(_ context.Context, userID string) (*domain.BeneficiaryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.beneficiaries {
		if b.UserID == userID {
			return s.view(b), nil
		}
	}
	return nil, errors.NotFound("beneficiary")
}

func (s Beneficiaries) List(_ context.Context, scope domain.Scope, page, perPage int) ([]*domain.BeneficiaryView, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.BeneficiaryView{}
	for _, b := range s.beneficiaries {
		v := s.view(b)
		if scope.Allows(v.ID, v.Address) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s Beneficiaries) Update(_ context.Context, b *domain.Beneficiary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.beneficiaries[b.ID]; !ok {
		return errors.NotFound("beneficiary")
	}
	cp := *b
	s.beneficiaries[b.ID] = &cp
	return nil
}

func (s Beneficiaries) IDsByName(_ context.Context, first, last string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, b := range s.beneficiaries {
		u := s.users[b.UserID]
		if u != nil && strings.EqualFold(u.FirstName, first) && strings.EqualFold(u.LastName, last) {
			ids = append(ids, b.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s Beneficiaries) BarangayStats(_ context.Context) ([]domain.BarangayStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName := map[string]*domain.BarangayStat{}
	for _, b := range s.beneficiaries {
		addr := strings.TrimSpace(s.users[b.UserID].Address)
		st, ok := byName[addr]
		if !ok {
			st = &domain.BarangayStat{Barangay: addr}
			byName[addr] = st
		}
		st.Total++
		switch b.Classification {
		case domain.ClassificationSeniorCitizen:
			st.SeniorCitizen++
		case domain.ClassificationPWD:
			st.PWD++
		case domain.ClassificationSoloParent:
			st.SoloParent++
		}
	}
	var out []domain.BarangayStat
	for _, st := range byName {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barangay < out[j].Barangay })
	return out, nil
}

type Programs struct{ *Store }

func (s Programs) Create(_ context.Context, p *domain.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	p.CreatedAt, p.UpdatedAt = s.Now, s.Now
	cp := *p
	s.programs[p.ID] = &cp
	return nil
}

func (s Programs) GetByID(_ context.Context, id string) (*domain.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok {
		return nil, errors.NotFound("program")
	}
	cp := *p
	return &cp, nil
}

func (s Programs) List(_ context.Context, activeOnly bool) ([]*domain.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Program{}
	for _, p := range s.programs {
		if !activeOnly || p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s Programs) Update(_ context.Context, p *domain.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.programs[p.ID]; !ok {
		return errors.NotFound("program")
	}
	cp := *p
	s.programs[p.ID] = &cp
	return nil
}

func (s Programs) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.programs[id]; !ok {
		return errors.NotFound("program")
	}
	delete(s.programs, id)
	for appID, a := range s.apps {
		if a.ProgramID == id {
			delete(s.apps, appID)
		}
	}
	return nil
}

// ============================================================================
// Applications and schedules
// ============================================================================

type Applications struct{ *Store }

func (s Applications) Create(_ context.Context, a *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	a.Status = domain.StatusPending
	a.CreatedAt, a.UpdatedAt = s.Now, s.Now
	cp := *a
	s.apps[a.ID] = &cp
	return nil
}

// view must be called with mu held.
func (s Applications) view(a *domain.Application) *domain.ApplicationView {
	v := &domain.ApplicationView{Application: *a}
	if p, ok := s.programs[a.ProgramID]; ok {
		v.ProgramName, v.ProgramType = p.Name, p.ProgramType
	}
	if b, ok := s.beneficiaries[a.BeneficiaryID]; ok {
		v.BeneficiaryUserID, v.Classification = b.UserID, b.Classification
		if u, ok := s.users[b.UserID]; ok {
			v.BeneficiaryFirst, v.BeneficiaryLast, v.BeneficiaryBarangay = u.FirstName, u.LastName, u.Address
		}
	}
	return v
}

func (s Applications) GetByID(_ context.Context, id string) (*domain.ApplicationView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, errors.NotFound("application")
	}
	return s.view(a), nil
}

func (s Applications) ListAll(_ context.Context, scope domain.Scope, filter domain.ApplicationFilter) ([]*domain.ApplicationView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.ApplicationView{}
	for _, a := range s.apps {
		v := s.view(a)
		if !scope.Allows(v.BeneficiaryID, v.BeneficiaryBarangay) {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.ProgramID != "" && v.ProgramID != filter.ProgramID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s Applications) List(ctx context.Context, scope domain.Scope, filter domain.ApplicationFilter, page, perPage int) ([]*domain.ApplicationView, int64, error) {
	out, _ := s.ListAll(ctx, scope, filter)
	return out, int64(len(out)), nil
}

func (s Applications) ListByBeneficiaryProgram(_ context.Context, beneficiaryID, programID string) ([]domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Application
	for _, a := range s.apps {
		if a.BeneficiaryID == beneficiaryID && a.ProgramID == programID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s Applications) UpdateStatus(_ context.Context, id string, expected domain.Status, u repository.StatusUpdate) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Status != expected {
		return nil, errors.StateConflict("application is no longer " + string(expected))
	}
	now := s.Now
	a.Status = u.To
	if u.VerifiedBy != nil {
		a.BHWVerifiedAt, a.BHWVerifiedBy = &now, u.VerifiedBy
	}
	if u.ApprovedBy != nil {
		a.MSWDOApprovedAt, a.MSWDOApprovedBy = &now, u.ApprovedBy
	}
	coalesce(&a.BHWNotes, u.BHWNotes)
	coalesce(&a.MSWDONotes, u.MSWDONotes)
	coalesce(&a.DenialReason, u.DenialReason)
	a.UpdatedAt = now
	cp := *a
	return &cp, nil
}

func (s Applications) UpdateNotes(_ context.Context, id string, bhwNotes, mswdoNotes, denialReason *string) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, errors.NotFound("application")
	}
	coalesce(&a.BHWNotes, bhwNotes)
	coalesce(&a.MSWDONotes, mswdoNotes)
	coalesce(&a.DenialReason, denialReason)
	cp := *a
	return &cp, nil
}

func (s Applications) StatusCounts(ctx context.Context, scope domain.Scope) (*domain.StatusCounts, error) {
	list, _ := s.ListAll(ctx, scope, domain.ApplicationFilter{})
	c := &domain.StatusCounts{}
	for _, a := range list {
		switch a.Status {
		case domain.StatusPending:
			c.Pending++
		case domain.StatusBHWVerified:
			c.Verified++
		case domain.StatusMSWDOApproved:
			c.Approved++
		case domain.StatusScheduled:
			c.Scheduled++
		case domain.StatusClaimed:
			c.Claimed++
		case domain.StatusDenied:
			c.Denied++
		}
	}
	return c, nil
}

func (s Applications) DeleteByBeneficiaries(_ context.Context, beneficiaryIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, a := range s.apps {
		for _, bid := range beneficiaryIDs {
			if a.BeneficiaryID == bid {
				delete(s.apps, id)
				n++
				break
			}
		}
	}
	return n, nil
}

func (s Applications) AddDocuments(_ context.Context, docs []domain.ApplicationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		d.ID = s.nextID()
		d.UploadedAt = s.Now
		s.documents = append(s.documents, d)
	}
	return nil
}

func (s Applications) Documents(_ context.Context, applicationID string) ([]domain.ApplicationDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ApplicationDocument
	for _, d := range s.documents {
		if d.ApplicationID == applicationID {
			out = append(out, d)
		}
	}
	return out, nil
}

type Schedules struct{ *Store }

func (s Schedules) Create(_ context.Context, r *domain.ReleaseSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[r.ApplicationID]; ok {
		return errors.Conflict("application already has a release schedule")
	}
	r.ID = s.nextID()
	r.CreatedAt = s.Now
	cp := *r
	s.schedules[r.ApplicationID] = &cp
	return nil
}

func (s Schedules) GetByApplication(_ context.Context, applicationID string) (*domain.ReleaseSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.schedules[applicationID]
	if !ok {
		return nil, errors.NotFound("release schedule")
	}
	cp := *r
	return &cp, nil
}

func (s Schedules) MarkClaimed(_ context.Context, applicationID, staffID string, notes *string) (*domain.ReleaseSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.schedules[applicationID]
	if !ok {
		return nil, errors.NotFound("release schedule")
	}
	now := s.Now
	r.ClaimedAt, r.ClaimedByStaff = &now, &staffID
	coalesce(&r.Notes, notes)
	cp := *r
	return &cp, nil
}

// ============================================================================
// Notifications and deceased reports
// ============================================================================

type Notifications struct{ *Store }

func (s Notifications) Create(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNotifications {
		return errors.Internal("notification store unavailable")
	}
	n.ID = s.nextID()
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}
	n.CreatedAt = s.Now
	cp := *n
	s.notifications = append(s.notifications, &cp)
	return nil
}

func (s Notifications) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s Notifications) MarkRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, errors.NotFound("notification")
}

func (s Notifications) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id && n.UserID == userID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("notification")
}

type Reports struct{ *Store }

func (s Reports) Create(_ context.Context, d *domain.DeceasedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID()
	d.CreatedAt = s.Now
	cp := *d
	s.reports[d.ID] = &cp
	return nil
}

func (s Reports) GetByID(_ context.Context, id string) (*domain.DeceasedReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.reports[id]
	if !ok {
		return nil, errors.NotFound("deceased report")
	}
	cp := *d
	return &cp, nil
}

func (s Reports) List(_ context.Context, page, perPage int) ([]*domain.DeceasedReport, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.DeceasedReport{}
	for _, d := range s.reports {
		cp := *d
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (s Reports) Confirm(_ context.Context, id, confirmedBy string) (*domain.DeceasedReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.reports[id]
	if !ok {
		return nil, errors.NotFound("deceased report")
	}
	if d.Confirmed {
		return nil, errors.StateConflict("deceased report is already confirmed")
	}
	now := s.Now
	d.Confirmed, d.ConfirmedBy, d.ConfirmedAt = true, &confirmedBy, &now
	cp := *d
	return &cp, nil
}

func (s Reports) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return errors.NotFound("deceased report")
	}
	delete(s.reports, id)
	return nil
}

func coalesce(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}


func (m *Store) Users() Users                 { return Users{m} }
func (m *Store) Assignments() Assignments     { return Assignments{m} }
func (m *Store) Beneficiaries() Beneficiaries { return Beneficiaries{m} }
func (m *Store) Programs() Programs           { return Programs{m} }
func (m *Store) Applications() Applications   { return Applications{m} }
func (m *Store) Schedules() Schedules         { return Schedules{m} }
func (m *Store) Notifications() Notifications { return Notifications{m} }
func (m *Store) Reports() Reports             { return Reports{m} }
