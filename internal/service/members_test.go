package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

func TestMemberCreateAndUpdate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	other := e.user(model.RoleParent, "Bojan")
	coach := e.user(model.RoleCoach, "Coach")
	owner := e.user(model.RoleOwner, "Owner")
	svc := NewMemberService(e.deps)
	dob := model.NewDate(2017, 1, 5)

	_, err := svc.Create(e.ctx, coach, MemberInput{FullName: "X", DateOfBirth: dob})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Create(e.ctx, parent, MemberInput{FullName: "  ", DateOfBirth: dob})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	m, err := svc.Create(e.ctx, parent, MemberInput{FullName: " Mila ", DateOfBirth: dob, ParentID: other.UserID})
	require.NoError(t, err)
	assert.Equal(t, parent.UserID, m.ParentID, "parents always register under themselves")
	assert.Equal(t, "Mila", m.FullName)
	assert.True(t, m.Active)

	mine, err := svc.Mine(e.ctx, parent)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = svc.Update(e.ctx, other, m.ID, MemberInput{FullName: "Hack", DateOfBirth: dob})
	assert.ErrorIs(t, err, ErrForbidden)
	up, err := svc.Update(e.ctx, parent, m.ID, MemberInput{FullName: "Mila P.", DateOfBirth: dob})
	require.NoError(t, err)
	assert.Equal(t, "Mila P.", up.FullName)

	_, err = svc.AdminCreate(e.ctx, parent, MemberInput{FullName: "Y", DateOfBirth: dob, ParentID: other.UserID})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.AdminCreate(e.ctx, owner, MemberInput{FullName: "Y", DateOfBirth: dob, ParentID: 9999})
	assert.ErrorIs(t, err, NotFound("parent"))
	y, err := svc.AdminCreate(e.ctx, owner, MemberInput{FullName: "Y", DateOfBirth: dob, ParentID: other.UserID})
	require.NoError(t, err)
	assert.Equal(t, other.UserID, y.ParentID)

	_, err = svc.ListAll(e.ctx, parent)
	assert.ErrorIs(t, err, ErrForbidden)
	all, err := svc.ListAll(e.ctx, coach)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemberDeactivateKeepsEnrollments(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	m := e.member(parent, "Mila")
	e.enroll(m, e.schedule(model.DayMonday, 5, true))
	svc := NewMemberService(e.deps)

	require.NoError(t, svc.Deactivate(e.ctx, parent, m.ID))
	e.tx(func(tx repository.Tx) error {
		got, err := tx.Members().Get(e.ctx, m.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
		n, err := tx.Enrollments().CountActiveByMember(e.ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	assert.ErrorIs(t, svc.Deactivate(e.ctx, parent, 999), NotFound("member"))
}

func TestMemberPurge(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	coach := e.user(model.RoleCoach, "Coach")
	parent := e.user(model.RoleParent, "Ana")
	s := e.schedule(model.DayMonday, 5, true)
	first := e.member(parent, "A")
	second := e.member(parent, "B")
	e.enroll(first, s)
	e.enroll(second, s)
	_, err := NewAttendanceService(e.deps).Save(e.ctx, coach, s.ID, model.DateOf(monday), []uint64{first.ID})
	require.NoError(t, err)
	svc := NewMemberService(e.deps)

	_, err = svc.Purge(e.ctx, coach, first.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := svc.Purge(e.ctx, owner, first.ID)
	require.NoError(t, err)
	assert.False(t, res.ParentDeleted)

	res, err = svc.Purge(e.ctx, owner, second.ID)
	require.NoError(t, err)
	assert.True(t, res.ParentDeleted)
	e.tx(func(tx repository.Tx) error {
		_, err := tx.Users().GetByID(e.ctx, parent.UserID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		return nil
	})
}

func TestMemberPurgeBlockedByPayment(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	parent := e.user(model.RoleParent, "Ana")
	m := e.member(parent, "A")
	e.enroll(m, e.schedule(model.DayMonday, 5, true))
	e.pay(m, 3000, 9, 2024)

	_, err := NewMemberService(e.deps).Purge(e.ctx, owner, m.ID)
	assert.ErrorIs(t, err, ErrLinkedData)

	// nothing was removed
	e.tx(func(tx repository.Tx) error {
		_, err := tx.Members().Get(e.ctx, m.ID)
		require.NoError(t, err)
		n, err := tx.Enrollments().CountActiveByMember(e.ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
}

func TestPurgeKeepsNonParentAccounts(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	m := e.member(owner, "Own kid")

	res, err := NewMemberService(e.deps).Purge(e.ctx, owner, m.ID)
	require.NoError(t, err)
	assert.False(t, res.ParentDeleted)
}
