package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesias/mswdo-backend/internal/auth/jwt"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/events"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/config"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	profiles []*domain.Beneficiary
	events   []string
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*domain.User{}}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *fakeStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return errors.Conflict("email or username already registered")
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	s.users[u.ID] = u
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("user")
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, errors.NotFound("user")
}

func (s *fakeStore) Publish(_ context.Context, eventType string, _ interface{}) error {
	s.mu.Lock()
	s.events = append(s.events, eventType)
	s.mu.Unlock()
	return nil
}

type profileStore struct{ s *fakeStore }

func (p profileStore) Create(_ context.Context, b *domain.Beneficiary) error {
	if p.s.failNext != nil {
		return p.s.failNext
	}
	b.ID = uuid.NewString()
	p.s.profiles = append(p.s.profiles, b)
	return nil
}

func newService(t *testing.T) (*AuthService, *fakeStore, *jwt.Manager) {
	t.Helper()
	store := newFakeStore()
	manager := jwt.NewManager(&config.JWTConfig{Secret: "test-secret", Expiry: 168 * time.Hour, Issuer: "mswdo-test"})
	log := logger.Nop()
	svc := NewAuthService(store, store, profileStore{store}, manager, events.NewWelfareEventPublisher(store, log), log)
	return svc, store, manager
}

func signup(email string, role domain.Role) *SignupRequest {
	return &SignupRequest{
		Email:     email,
		Password:  "secret123",
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Username:  strings.Split(email, "@")[0],
		Address:   " agpangi ",
		UserType:  role,
	}
}

func TestSignup(t *testing.T) {
	svc, store, manager := newService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signup("Juan@Example.com", domain.RoleBeneficiary))
	require.NoError(t, err)

	assert.Equal(t, "juan@example.com", resp.User.Email)
	assert.Equal(t, "Agpangi", resp.User.Address)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("secret123")))

	claims, err := manager.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "beneficiary", claims.UserType)

	assert.Equal(t, []string{"user.registered"}, store.events)
	assert.Empty(t, store.profiles)
}

func TestSignup_WithClassificationCreatesProfile(t *testing.T) {
	svc, store, _ := newService(t)
	req := signup("lola@example.com", domain.RoleBeneficiary)
	senior := domain.ClassificationSeniorCitizen
	req.Classification = &senior

	resp, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, store.profiles, 1)
	assert.Equal(t, resp.User.ID, store.profiles[0].UserID)
	assert.Equal(t, domain.BeneficiaryPending, store.profiles[0].Status)
}

func TestSignup_Rejections(t *testing.T) {
	t.Run("classification on a health worker", func(t *testing.T) {
		svc, _, _ := newService(t)
		req := signup("bhw@example.com", domain.RoleBHW)
		pwd := domain.ClassificationPWD
		req.Classification = &pwd

		_, err := svc.Signup(context.Background(), req)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, store, _ := newService(t)
		_, err := svc.Signup(context.Background(), signup("dup@example.com", domain.RoleBeneficiary))
		require.NoError(t, err)

		_, err = svc.Signup(context.Background(), signup("DUP@example.com", domain.RoleBeneficiary))
		assert.True(t, errors.Is(err, errors.ErrConflict))
		assert.Len(t, store.events, 1)
	})

	t.Run("profile failure surfaces", func(t *testing.T) {
		svc, store, _ := newService(t)
		store.failNext = errors.Internal("insert failed")
		req := signup("fail@example.com", domain.RoleBeneficiary)
		solo := domain.ClassificationSoloParent
		req.Classification = &solo

		_, err := svc.Signup(context.Background(), req)
		require.Error(t, err)
		assert.Empty(t, store.events)
	})
}

func TestLogin(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, signup("maria@example.com", domain.RoleBHW))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "maria@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBHW, resp.User.UserType)
	assert.NotEmpty(t, resp.Token)

	_, wrongPassword := svc.Login(ctx, &LoginRequest{Email: "maria@example.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})

	for _, err := range []error{wrongPassword, unknownEmail} {
		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	}
}

func TestLogin_UnknownEmailStillHashes(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, signup("maria@example.com", domain.RoleBHW))
	require.NoError(t, err)

	var compared [][]byte
	svc.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err = svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
	_, err = svc.Login(ctx, &LoginRequest{Email: "maria@example.com", Password: "nope"})
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	require.Len(t, compared, 2)
	cost, err := bcrypt.Cost(compared[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestMe(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	resp, err := svc.Signup(ctx, signup("me@example.com", domain.RoleBeneficiary))
	require.NoError(t, err)

	u, err := svc.Me(ctx, &actor.Actor{ID: resp.User.ID, Role: "beneficiary"})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", u.Email)

	_, err = svc.Me(ctx, nil)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = svc.Me(ctx, &actor.Actor{ID: "deleted-user"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
