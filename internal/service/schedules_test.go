package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
)

func TestScheduleAdmin(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	coach := e.user(model.RoleCoach, "Coach")
	parent := e.user(model.RoleParent, "Ana")
	svc := NewScheduleService(e.deps)

	_, err := svc.CreateSchedule(e.ctx, coach, ScheduleInput{DayOfWeek: "PON", StartTime: "17:00", EndTime: "18:00"})
	assert.ErrorIs(t, err, ErrForbidden)
	invalid := []ScheduleInput{
		{DayOfWeek: "MON", StartTime: "17:00", EndTime: "18:00"},
		{DayOfWeek: "PON", StartTime: "18:00", EndTime: "17:00"},
		{DayOfWeek: "PON", StartTime: "5pm", EndTime: "18:00"},
		{DayOfWeek: "PON", StartTime: "17:00", EndTime: "18:00", Capacity: -1},
		{DayOfWeek: "PON", StartTime: "17:00", EndTime: "18:00", CoachID: &parent.UserID},
	}
	for _, in := range invalid {
		_, err := svc.CreateSchedule(e.ctx, owner, in)
		assert.Equal(t, KindInvalidInput, KindOf(err), "%+v", in)
	}

	s, err := svc.CreateSchedule(e.ctx, owner, ScheduleInput{DayOfWeek: "pon", StartTime: "7:30", EndTime: "08:15:00", CoachID: &coach.UserID})
	require.NoError(t, err)
	assert.Equal(t, model.DayMonday, s.DayOfWeek)
	assert.Equal(t, "07:30", s.StartTime)
	assert.Equal(t, "08:15", s.EndTime)
	assert.Equal(t, DefaultCapacity, s.Capacity)
	assert.True(t, s.IsActive)

	closed := false
	up, err := svc.UpdateSchedule(e.ctx, owner, s.ID, ScheduleInput{DayOfWeek: "UTO", StartTime: "07:30", EndTime: "08:15", Capacity: 3, IsActive: &closed})
	require.NoError(t, err)
	assert.False(t, up.IsActive)
	assert.Nil(t, up.CoachID)

	day := model.NewDate(2024, 9, 3)
	_, err = svc.CancelSession(e.ctx, parent, s.ID, day, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.CancelSession(e.ctx, coach, s.ID, day, nil)
	require.NoError(t, err)
	_, err = svc.CancelSession(e.ctx, owner, s.ID, day, nil)
	assert.Equal(t, KindInvalidState, KindOf(err))
	cancels, err := svc.ListCancellations(e.ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, cancels, 1)

	assert.Equal(t, KindInvalidInput, KindOf(svc.RequestSchedule(e.ctx, parent, " ")))
	require.NoError(t, svc.RequestSchedule(e.ctx, parent, "Subota ujutru?"))
	assert.Equal(t, []string{queue.TypeScheduleRequested}, e.events.types())

	assert.ErrorIs(t, svc.DeleteSchedule(e.ctx, owner, s.ID), ErrLinkedData)
	spare := e.schedule(model.DayFriday, 5, true)
	require.NoError(t, svc.DeleteSchedule(e.ctx, owner, spare.ID))
	assert.ErrorIs(t, svc.DeleteSchedule(e.ctx, owner, spare.ID), NotFound("schedule"))
}
