package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/models"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()

	first := &models.User{UUID: uuid.New(), Name: "A", Email: "dup@example.com", PasswordHash: "h", Role: models.RoleStudent, Active: true}
	require.NoError(t, r.CreateUser(ctx, first))

	second := &models.User{UUID: uuid.New(), Name: "B", Email: "dup@example.com", PasswordHash: "h", Role: models.RoleStudent, Active: true}
	err := r.CreateUser(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var count int64
	require.NoError(t, r.DB.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindByEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	seeded := seedUser(t, r.DB, "Alice@Example.com", models.RoleStudent)

	found, err := r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	found, err = r.FindByEmail(ctx, "ALICE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	_, err = r.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByUUID(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	seeded := seedUser(t, r.DB, "uuid@example.com", models.RoleInstructor)

	found, err := r.FindByUUID(ctx, seeded.UUID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, models.RoleInstructor, found.Role)

	_, err = r.FindByUUID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	u := seedUser(t, r.DB, "rotate@example.com", models.RoleStudent)

	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "t1"))

	// first exchange wins
	require.NoError(t, r.RotateRefreshToken(ctx, u.ID, "t1", "t2"))

	// replaying the superseded token loses
	err := r.RotateRefreshToken(ctx, u.ID, "t1", "t3")
	assert.ErrorIs(t, err, domain.ErrTokenMismatch)

	// the current token still works
	require.NoError(t, r.RotateRefreshToken(ctx, u.ID, "t2", "t3"))

	reloaded, err := r.FindByUUID(ctx, u.UUID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.RefreshToken)
	assert.Equal(t, "t3", *reloaded.RefreshToken)
}

func TestRotateAgainstEmptySlot(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	u := seedUser(t, r.DB, "empty@example.com", models.RoleStudent)

	err := r.RotateRefreshToken(ctx, u.ID, "anything", "new")
	assert.ErrorIs(t, err, domain.ErrTokenMismatch)
}

func TestClearRefreshTokenIdempotent(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	u := seedUser(t, r.DB, "clear@example.com", models.RoleStudent)

	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "t1"))
	require.NoError(t, r.ClearRefreshToken(ctx, u.ID))
	require.NoError(t, r.ClearRefreshToken(ctx, u.ID))

	reloaded, err := r.FindByUUID(ctx, u.UUID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.RefreshToken)
}

func TestUpdatePasswordClearsRefreshToken(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	u := seedUser(t, r.DB, "pw@example.com", models.RoleStudent)
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "t1"))

	require.NoError(t, r.UpdatePassword(ctx, u.ID, "$2a$12$newhash"))

	reloaded, err := r.FindByUUID(ctx, u.UUID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$newhash", reloaded.PasswordHash)
	assert.Nil(t, reloaded.RefreshToken)
}

func TestSetActive(t *testing.T) {
	t.Parallel()

	r := NewGormRepo(initTestDB(t))
	ctx := context.Background()
	u := seedUser(t, r.DB, "flag@example.com", models.RoleStudent)
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "t1"))

	deactivated, err := r.SetActive(ctx, u.UUID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.Nil(t, deactivated.RefreshToken, "deactivation should drop the session")

	reactivated, err := r.SetActive(ctx, u.UUID, true)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)
	assert.Nil(t, reactivated.RefreshToken, "reactivation must not resurrect a session")

	_, err = r.SetActive(ctx, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotFound)
}
