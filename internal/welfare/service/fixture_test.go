package service

import (
	"context"
	"strings"
	"time"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/events"
	"github.com/mesias/mswdo-backend/internal/welfare/memstore"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// fixture wires every service over one in-memory store.
type fixture struct {
	mem *memstore.Store

	scopes        *ScopeResolver
	notifier      *Notifier
	engine        *Engine
	beneficiaries *BeneficiaryService
	users         *UserService
	programs      *ProgramService
	notifications *NotificationService
	deceased      *DeceasedService
}

func newFixture() *fixture {
	mem := memstore.New()
	log := logger.Nop()

	users := mem.Users()
	assignments := mem.Assignments()
	bens := mem.Beneficiaries()
	programs := mem.Programs()
	apps := mem.Applications()
	schedules := mem.Schedules()
	notes := mem.Notifications()
	reports := mem.Reports()

	publisher := events.NewWelfareEventPublisher(mem, log)
	scopes := NewScopeResolver(assignments, bens)
	notifier := NewNotifier(notes, users, assignments, log)

	engine := NewEngine(mem, apps, schedules, bens, programs, scopes, notifier, publisher, log)
	engine.now = func() time.Time { return mem.Now }

	programSvc := NewProgramService(programs, apps, bens, scopes, log)
	programSvc.now = func() time.Time { return mem.Now }

	return &fixture{
		mem:           mem,
		scopes:        scopes,
		notifier:      notifier,
		engine:        engine,
		beneficiaries: NewBeneficiaryService(bens, scopes, log),
		users:         NewUserService(mem, users, assignments, log),
		programs:      programSvc,
		notifications: NewNotificationService(notes),
		deceased:      NewDeceasedService(mem, reports, bens, apps, notifier, publisher, log),
	}
}

// user stores an account directly and returns its actor.
func (f *fixture) user(role domain.Role, first, last, barangay string) *actor.Actor {
	u := &domain.User{
		Email:     strings.ToLower(first+"."+last) + "@naval.test",
		FirstName: first,
		LastName:  last,
		Username:  strings.ToLower(first + last),
		Address:   barangay,
		UserType:  role,
	}
	if err := f.mem.Users().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return &actor.Actor{ID: u.ID, Role: string(role), Email: u.Email}
}

func (f *fixture) assign(bhw *actor.Actor, barangays ...string) {
	for _, b := range barangays {
		if err := f.mem.Assignments().Create(context.Background(), &domain.BHWAssignment{BHWUserID: bhw.ID, Barangay: b}); err != nil {
			panic(err)
		}
	}
}

// beneficiary creates a beneficiary account with a profile.
func (f *fixture) beneficiary(first, last, barangay string, c domain.Classification) (*actor.Actor, string) {
	a := f.user(domain.RoleBeneficiary, first, last, barangay)
	b := &domain.Beneficiary{UserID: a.ID, Classification: c}
	if err := f.mem.Beneficiaries().Create(context.Background(), b); err != nil {
		panic(err)
	}
	return a, b.ID
}

func (f *fixture) program(name string, mutate ...func(*domain.Program)) string {
	p := &domain.Program{Name: name, ProgramType: domain.ProgramCashAssistance, IsActive: true}
	for _, fn := range mutate {
		fn(p)
	}
	if err := f.mem.Programs().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p.ID
}

func ptr[T any](v T) *T { return &v }
