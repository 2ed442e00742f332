package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
)

func TestEnrollSucceeds(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	m := e.member(parent, "Mila")
	s := e.schedule(model.DayMonday, 10, true)
	svc := NewEnrollmentService(e.deps)

	got, err := svc.Enroll(e.ctx, parent, EnrollInput{MemberID: m.ID, ScheduleID: s.ID, StartDate: model.NewDate(2024, 9, 2)})
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Nil(t, got.EndDate)
	assert.NotZero(t, got.ID)
	assert.Equal(t, []string{queue.TypeEnrollmentCreated}, e.events.types())

	list, err := svc.ListMemberEnrollments(e.ctx, parent, m.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].Schedule.ID)
}

func TestEnrollCheckOrder(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	parent := e.user(model.RoleParent, "Ana")
	stranger := e.user(model.RoleParent, "Bojan")
	coach := e.user(model.RoleCoach, "Coach")

	m := e.member(parent, "Mila")
	full := e.schedule(model.DayMonday, 1, true)
	e.enroll(e.member(stranger, "Other"), full)
	closed := e.schedule(model.DayTuesday, 5, false)
	open := e.schedule(model.DayWednesday, 5, true)

	busy := e.member(parent, "Luka")
	e.enroll(busy, e.schedule(model.DayThursday, 5, true))
	e.enroll(busy, e.schedule(model.DayFriday, 5, true))

	twice := e.member(parent, "Sara")
	e.enroll(twice, open)

	svc := NewEnrollmentService(e.deps)
	start := model.NewDate(2024, 9, 2)
	tests := []struct {
		name string
		id   Identity
		in   EnrollInput
		want error
	}{
		{"missing member wins over everything", stranger, EnrollInput{MemberID: 9999, ScheduleID: 9999, StartDate: start}, NotFound("member")},
		{"foreign parent before missing schedule", stranger, EnrollInput{MemberID: m.ID, ScheduleID: 9999, StartDate: start}, ErrForbidden},
		{"coach may not enroll", coach, EnrollInput{MemberID: m.ID, ScheduleID: open.ID, StartDate: start}, ErrForbidden},
		{"missing schedule", parent, EnrollInput{MemberID: m.ID, ScheduleID: 9999, StartDate: start}, NotFound("schedule")},
		{"closed schedule", owner, EnrollInput{MemberID: m.ID, ScheduleID: closed.ID, StartDate: start}, InvalidState("schedule closed")},
		{"full schedule", parent, EnrollInput{MemberID: busy.ID, ScheduleID: full.ID, StartDate: start}, ErrCapacityExceeded},
		{"slot limit", parent, EnrollInput{MemberID: busy.ID, ScheduleID: open.ID, StartDate: start}, ErrSlotLimitExceeded},
		{"duplicate", parent, EnrollInput{MemberID: twice.ID, ScheduleID: open.ID, StartDate: start}, ErrDuplicateEnrollment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enroll(e.ctx, tt.id, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want.Error(), err.Error())
		})
	}
}

func TestEnrollRequiresStartDate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	_, err := NewEnrollmentService(e.deps).Enroll(e.ctx, parent, EnrollInput{MemberID: 1, ScheduleID: 1})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestConcurrentEnrollRespectsCapacity(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	parent := e.user(model.RoleParent, "Ana")
	const capacity, contenders = 3, 12
	s := e.schedule(model.DayMonday, capacity, true)
	members := make([]model.Member, contenders)
	for i := range members {
		members[i] = e.member(parent, "Dete")
	}
	svc := NewEnrollmentService(e.deps)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for _, m := range members {
		wg.Add(1)
		go func(m model.Member) {
			defer wg.Done()
			_, err := svc.Enroll(e.ctx, owner, EnrollInput{MemberID: m.ID, ScheduleID: s.ID, StartDate: model.DateOf(monday)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case KindOf(err) == KindCapacityExceeded:
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(m)
	}
	wg.Wait()

	assert.Equal(t, capacity, ok)
	assert.Equal(t, contenders-capacity, full)
	list, err := svc.ListSchedules(e.ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, capacity, list[0].CurrentEnrollmentsCount)
}

func TestConcurrentEnrollRespectsSlotLimit(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	m := e.member(parent, "Mila")
	schedules := make([]model.Schedule, 8)
	for i := range schedules {
		schedules[i] = e.schedule(model.DaySaturday, 10, true)
	}
	svc := NewEnrollmentService(e.deps)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, capped int
	)
	for _, s := range schedules {
		wg.Add(1)
		go func(s model.Schedule) {
			defer wg.Done()
			_, err := svc.Enroll(e.ctx, parent, EnrollInput{MemberID: m.ID, ScheduleID: s.ID, StartDate: model.DateOf(monday)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if KindOf(err) == KindSlotLimitExceeded {
				capped++
			}
		}(s)
	}
	wg.Wait()

	assert.Equal(t, model.MaxActiveEnrollmentsPerMember, ok)
	assert.Equal(t, len(schedules)-model.MaxActiveEnrollmentsPerMember, capped)
}

func TestCancelEnrollment(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	other := e.user(model.RoleParent, "Bojan")
	m := e.member(parent, "Mila")
	s := e.schedule(model.DayMonday, 1, true)
	en := e.enroll(m, s)
	svc := NewEnrollmentService(e.deps)

	_, err := svc.CancelEnrollment(e.ctx, other, en.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	before := model.NewDate(2024, 8, 1)
	_, err = svc.CancelEnrollment(e.ctx, parent, en.ID, &before)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	got, err := svc.CancelEnrollment(e.ctx, parent, en.ID, nil)
	require.NoError(t, err)
	assert.False(t, got.Active)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, "2024-09-02", got.EndDate.String())

	_, err = svc.CancelEnrollment(e.ctx, parent, en.ID, nil)
	assert.ErrorIs(t, err, InvalidState("enrollment already inactive"))

	_, err = svc.CancelEnrollment(e.ctx, parent, 4242, nil)
	assert.ErrorIs(t, err, NotFound("enrollment"))

	// the freed seat can be taken again
	_, err = svc.Enroll(e.ctx, parent, EnrollInput{MemberID: m.ID, ScheduleID: s.ID, StartDate: model.DateOf(monday)})
	require.NoError(t, err)
	assert.Contains(t, e.events.types(), queue.TypeEnrollmentCancelled)
}

func TestListMemberEnrollmentsVisibility(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	parent := e.user(model.RoleParent, "Ana")
	other := e.user(model.RoleParent, "Bojan")
	coach := e.user(model.RoleCoach, "Coach")
	m := e.member(parent, "Mila")
	svc := NewEnrollmentService(e.deps)

	_, err := svc.ListMemberEnrollments(e.ctx, other, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	list, err := svc.ListMemberEnrollments(e.ctx, coach, m.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = svc.ListMemberEnrollments(e.ctx, coach, 777)
	assert.ErrorIs(t, err, NotFound("member"))
}
