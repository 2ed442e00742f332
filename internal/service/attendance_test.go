package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

func intp(v int) *int { return &v }

func TestAttendanceSheetAndSave(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	coach := e.user(model.RoleCoach, "Coach")
	parent := e.user(model.RoleParent, "Ana")
	s := e.schedule(model.DayMonday, 10, true)
	a := e.enroll(e.member(parent, "A"), s)
	b := e.enroll(e.member(parent, "B"), s)
	c := e.enroll(e.member(parent, "C"), s)
	outsider := e.member(parent, "Z")
	day := model.DateOf(monday)
	svc := NewAttendanceService(e.deps)

	sheet, err := svc.Sheet(e.ctx, s.ID, day)
	require.NoError(t, err)
	require.Len(t, sheet, 3)
	for _, row := range sheet {
		assert.Zero(t, row.ID, "unrecorded rows carry id 0")
		assert.False(t, row.IsPresent)
		require.NotNil(t, row.ParentPhone)
		assert.Equal(t, "astma", *row.MedicalNotes)
	}
	assert.Equal(t, []string{"A", "B", "C"}, []string{sheet[0].MemberName, sheet[1].MemberName, sheet[2].MemberName})

	res, err := svc.Save(e.ctx, coach, s.ID, day, []uint64{a.MemberID, c.MemberID, outsider.ID})
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Saved: 3, Present: 2}, res)

	sheet, err = svc.Sheet(e.ctx, s.ID, day)
	require.NoError(t, err)
	present := map[uint64]bool{}
	for _, row := range sheet {
		assert.NotZero(t, row.ID)
		present[row.MemberID] = row.IsPresent
	}
	assert.Equal(t, map[uint64]bool{a.MemberID: true, b.MemberID: false, c.MemberID: true}, present)

	// a second save replaces the first one entirely
	res, err = svc.Save(e.ctx, coach, s.ID, day, []uint64{b.MemberID})
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Saved: 3, Present: 1}, res)
	e.tx(func(tx repository.Tx) error {
		rows, err := tx.Attendance().ListBySchedule(e.ctx, s.ID, day)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
		return nil
	})
	assert.Equal(t, []string{queue.TypeAttendanceSaved, queue.TypeAttendanceSaved}, e.events.types())
}

func TestAttendanceSaveRules(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	owner := e.user(model.RoleOwner, "Owner")
	svc := NewAttendanceService(e.deps)
	day := model.DateOf(monday)

	_, err := svc.Save(e.ctx, parent, 1, day, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Save(e.ctx, owner, 1, model.Date{}, nil)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = svc.Save(e.ctx, owner, 999, day, nil)
	assert.ErrorIs(t, err, NotFound("schedule"))
	_, err = svc.Sheet(e.ctx, 999, day)
	assert.ErrorIs(t, err, NotFound("schedule"))

	empty := e.schedule(model.DayMonday, 4, true)
	res, err := svc.Save(e.ctx, owner, empty.ID, day, []uint64{1, 2})
	require.NoError(t, err)
	assert.Zero(t, res.Saved)
}

func TestMemberStats(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	coach := e.user(model.RoleCoach, "Coach")
	parent := e.user(model.RoleParent, "Ana")
	s := e.schedule(model.DayMonday, 10, true)
	m := e.member(parent, "Mila")
	e.enroll(m, s)
	svc := NewAttendanceService(e.deps)

	days := []struct {
		date    model.Date
		present bool
	}{
		{model.NewDate(2024, 8, 26), true},
		{model.NewDate(2024, 9, 2), true},
		{model.NewDate(2024, 9, 9), false},
	}
	for _, d := range days {
		var ids []uint64
		if d.present {
			ids = []uint64{m.ID}
		}
		_, err := svc.Save(e.ctx, coach, s.ID, d.date, ids)
		require.NoError(t, err)
	}

	_, err := svc.MemberStats(e.ctx, coach, m.ID, StatsPeriod{})
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := svc.MemberStats(e.ctx, owner, m.ID, StatsPeriod{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 2, all.Present)
	assert.Equal(t, 66.7, all.Percentage)
	require.Len(t, all.History, 3)
	assert.Equal(t, "2024-09-09", all.History[0].Date.String())

	sept, err := svc.MemberStats(e.ctx, owner, m.ID, StatsPeriod{Month: intp(9), Year: intp(2024)})
	require.NoError(t, err)
	assert.Equal(t, 2, sept.Total)
	assert.Equal(t, 50.0, sept.Percentage)

	monthOnly, err := svc.MemberStats(e.ctx, owner, m.ID, StatsPeriod{Month: intp(9)})
	require.NoError(t, err)
	assert.Equal(t, 3, monthOnly.Total)

	none, err := svc.MemberStats(e.ctx, owner, m.ID, StatsPeriod{Year: intp(2023)})
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Zero(t, none.Percentage)
	assert.Empty(t, none.History)

	_, err = svc.MemberStats(e.ctx, owner, m.ID, StatsPeriod{Month: intp(13), Year: intp(2024)})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = svc.MemberStats(e.ctx, owner, 4040, StatsPeriod{})
	assert.ErrorIs(t, err, NotFound("member"))
}

func TestPercentage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, percentage(0, 0))
	assert.Equal(t, 100.0, percentage(4, 4))
	assert.Equal(t, 33.3, percentage(1, 3))
}
