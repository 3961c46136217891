package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/models"
	"github.com/Gigatchad/e-learning/internal/mykafka"
	"github.com/Gigatchad/e-learning/internal/repo"
	"github.com/Gigatchad/e-learning/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []mykafka.AuthEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(mykafka.AuthEvent); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Course{}, &models.Lesson{}, &models.Enrollment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*AuthService, *recordingPublisher) {
	t.Helper()

	events := &recordingPublisher{}
	svc := &AuthService{
		Repo: repo.NewGormRepo(initTestDB(t)),
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    24 * time.Hour,
		},
		Events: events,
	}
	return svc, events
}

func storedRefresh(t *testing.T, svc *AuthService, email string) *string {
	t.Helper()

	user, err := svc.Repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.RefreshToken
}

func TestRegisterThenDuplicate(t *testing.T) {
	t.Parallel()

	svc, events := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "Alice", "alice@x.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, result.User.Role)
	assert.True(t, result.User.Active)
	assert.NotEmpty(t, result.Pair.AccessToken)
	assert.NotEmpty(t, result.Pair.RefreshToken)
	assert.NotEqual(t, result.Pair.AccessToken, result.Pair.RefreshToken)

	stored := storedRefresh(t, svc, "alice@x.com")
	require.NotNil(t, stored)
	assert.Equal(t, result.Pair.RefreshToken, *stored)

	// same email, any case, is taken
	_, err = svc.Register(ctx, "Alice Again", "ALICE@X.COM", "Other456")
	assert.ErrorIs(t, err, domain.ErrConflict)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.Contains(t, events.types(), mykafka.EventUserRegistered)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, events := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Bob", "bob@x.com", "Secret123")
	require.NoError(t, err)

	// unknown email and wrong password read identically
	_, errUnknown := svc.Login(ctx, "nobody@x.com", "Secret123")
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	_, errWrongPw := svc.Login(ctx, "bob@x.com", "wrong-password")
	assert.ErrorIs(t, errWrongPw, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())

	result, err := svc.Login(ctx, "bob@x.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", result.User.Email)

	// login supersedes the registration session
	stored := storedRefresh(t, svc, "bob@x.com")
	require.NotNil(t, stored)
	assert.Equal(t, result.Pair.RefreshToken, *stored)
	assert.NotEqual(t, registered.Pair.RefreshToken, *stored)

	assert.Contains(t, events.types(), mykafka.EventUserLoggedIn)
}

func TestLoginDeactivated(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "Carol", "carol@x.com", "Secret123")
	require.NoError(t, err)

	_, err = svc.SetUserActive(ctx, result.User.UUID, false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Login(ctx, "carol@x.com", "Secret123")
		assert.ErrorIs(t, err, domain.ErrAccountDeactivated)
	}
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()

	svc, events := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Dave", "dave@x.com", "Secret123")
	require.NoError(t, err)
	t1 := registered.Pair.RefreshToken

	second, err := svc.Refresh(ctx, t1)
	require.NoError(t, err)
	t2 := second.Pair.RefreshToken
	assert.NotEqual(t, t1, t2)

	// replaying the exchanged token hard-fails
	_, err = svc.Refresh(ctx, t1)
	assert.ErrorIs(t, err, domain.ErrTokenMismatch)

	// the current token still exchanges fine
	third, err := svc.Refresh(ctx, t2)
	require.NoError(t, err)
	assert.NotEqual(t, t2, third.Pair.RefreshToken)

	assert.Contains(t, events.types(), mykafka.EventTokenRefreshed)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// an access token must not pass as a refresh token
	registered, err := svc.Register(ctx, "Eve", "eve@x.com", "Secret123")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, registered.Pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshUserGone(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Frank", "frank@x.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Repo.DB.Where("email = ?", "frank@x.com").Delete(&models.User{}).Error)

	_, err = svc.Refresh(ctx, registered.Pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUserGone)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshDeactivated(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Grace", "grace@x.com", "Secret123")
	require.NoError(t, err)

	_, err = svc.SetUserActive(ctx, registered.User.UUID, false)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, registered.Pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrAccountDeactivated)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	svc, events := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Heidi", "heidi@x.com", "Secret123")
	require.NoError(t, err)

	user, err := svc.Repo.FindByEmail(ctx, "heidi@x.com")
	require.NoError(t, err)
	ident := domain.Identity{ID: user.ID, UUID: user.UUID, Email: user.Email, Role: user.Role, Active: user.Active}

	require.NoError(t, svc.Logout(ctx, ident))
	assert.Nil(t, storedRefresh(t, svc, "heidi@x.com"))

	// idempotent
	require.NoError(t, svc.Logout(ctx, ident))

	// the cleared token no longer refreshes
	_, err = svc.Refresh(ctx, registered.Pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenMismatch)

	assert.Contains(t, events.types(), mykafka.EventUserLoggedOut)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc, events := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ivan", "ivan@x.com", "OldSecret1")
	require.NoError(t, err)

	user, err := svc.Repo.FindByEmail(ctx, "ivan@x.com")
	require.NoError(t, err)
	ident := domain.Identity{ID: user.ID, UUID: user.UUID, Email: user.Email, Role: user.Role, Active: user.Active}

	err = svc.ChangePassword(ctx, ident, "wrong-current", "NewSecret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, ident, "OldSecret1", "NewSecret1"))

	// every session is dead until the next login
	assert.Nil(t, storedRefresh(t, svc, "ivan@x.com"))
	_, err = svc.Refresh(ctx, registered.Pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenMismatch)

	_, err = svc.Login(ctx, "ivan@x.com", "OldSecret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ivan@x.com", "NewSecret1")
	require.NoError(t, err)

	assert.Contains(t, events.types(), mykafka.EventPasswordChanged)
}

func TestSetUserActiveUnknown(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.SetUserActive(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
