package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
	"github.com/iliyamo/swim-club-backend/internal/utils"
)

const testSecret = "test-secret"

func newUserService(e *env) *UserService {
	return NewUserService(e.deps, AuthConfig{
		JWTSecret:  testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		BcryptCost: 4,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	svc := newUserService(e)

	pair, err := svc.Register(e.ctx, UserInput{Email: " Ana@Example.com ", Password: "tajna1234", FullName: "Ana", Role: model.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, model.RoleParent, pair.User.Role, "self-signup is always a parent")
	assert.Equal(t, "ana@example.com", pair.User.Email)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := utils.ParseAccessToken(testSecret, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, claims.UserID)
	assert.Equal(t, model.RoleParent, claims.Role)

	_, err = svc.Register(e.ctx, UserInput{Email: "ana@example.com", Password: "tajna1234", FullName: "Ana 2"})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = svc.Register(e.ctx, UserInput{Email: "b@example.com", Password: "short", FullName: "B"})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = svc.Login(e.ctx, "ANA@example.com", "tajna1234")
	require.NoError(t, err)
	_, err = svc.Login(e.ctx, "ana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(e.ctx, "nobody@example.com", "tajna1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	svc := newUserService(e)
	pair, err := svc.Register(e.ctx, UserInput{Email: "ana@example.com", Password: "tajna1234", FullName: "Ana"})
	require.NoError(t, err)

	at, err := svc.RefreshAccess(e.ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, at.Token)

	next, err := svc.Refresh(e.ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(e.ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "a rotated token cannot be reused")
	_, err = svc.Refresh(e.ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	id := Identity{UserID: next.User.ID, Role: next.User.Role}
	require.NoError(t, svc.Logout(e.ctx, id, ""))
	_, err = svc.RefreshAccess(e.ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	svc := newUserService(e)
	pair, err := svc.Register(e.ctx, UserInput{Email: "ana@example.com", Password: "tajna1234", FullName: "Ana"})
	require.NoError(t, err)
	id := Identity{UserID: pair.User.ID, Role: pair.User.Role}

	assert.Equal(t, KindInvalidInput, KindOf(svc.ChangePassword(e.ctx, id, "wrong-old", "nova12345")))
	require.NoError(t, svc.ChangePassword(e.ctx, id, "tajna1234", "nova12345"))

	_, err = svc.Refresh(e.ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "sessions are revoked")
	_, err = svc.Login(e.ctx, "ana@example.com", "nova12345")
	require.NoError(t, err)

	me, err := svc.Me(e.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.FullName)
}

func TestAdminCreateAndList(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	svc := newUserService(e)
	owner := e.user(model.RoleOwner, "Owner")
	parent := e.user(model.RoleParent, "Ana")

	_, err := svc.AdminCreate(e.ctx, parent, UserInput{Email: "c@example.com", Password: "tajna1234", FullName: "C", Role: "coach"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.AdminCreate(e.ctx, owner, UserInput{Email: "c@example.com", Password: "tajna1234", FullName: "C", Role: "ADMIN"})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	coach, err := svc.AdminCreate(e.ctx, owner, UserInput{Email: "c@example.com", Password: "tajna1234", FullName: "C", Role: "coach"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCoach, coach.Role)

	coaches, err := svc.List(e.ctx, owner, "COACH", 0, 0)
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, coach.ID, coaches[0].ID)

	page, err := svc.List(e.ctx, owner, "", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, parent.UserID, page[0].ID)

	_, err = svc.List(e.ctx, parent, "", 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	svc := newUserService(e)
	owner := e.user(model.RoleOwner, "Owner")
	coach := e.user(model.RoleCoach, "Coach")
	parent := e.user(model.RoleParent, "Ana")
	e.member(parent, "Mila")
	coachID := coach.UserID
	s := model.Schedule{DayOfWeek: model.DayMonday, StartTime: "08:00", EndTime: "09:00", Capacity: 5, IsActive: true, CoachID: &coachID}
	e.tx(func(tx repository.Tx) error { return tx.Schedules().Create(e.ctx, &s) })

	assert.ErrorIs(t, svc.Delete(e.ctx, owner, owner.UserID), InvalidState("cannot delete your own account"))
	assert.ErrorIs(t, svc.Delete(e.ctx, coach, parent.UserID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(e.ctx, owner, parent.UserID), ErrLinkedData)
	assert.ErrorIs(t, svc.Delete(e.ctx, owner, 9999), NotFound("user"))

	require.NoError(t, svc.Delete(e.ctx, owner, coach.UserID))
	e.tx(func(tx repository.Tx) error {
		got, err := tx.Schedules().Get(e.ctx, s.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CoachID)
		return nil
	})
}
