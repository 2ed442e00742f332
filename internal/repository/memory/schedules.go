package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type scheduleRepo struct{ t *tx }

func sortSchedules(ss []model.Schedule) {
	sort.Slice(ss, func(i, j int) bool {
		a, b := ss[i], ss[j]
		if da, db := model.DayIndex(a.DayOfWeek), model.DayIndex(b.DayOfWeek); da != db {
			return da < db
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}

func (r scheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	if !r.t.optionalUserExists(s.CoachID) {
		return repository.ErrLinkedData
	}
	s.ID = r.t.st.nextID()
	r.t.st.schedules[s.ID] = *s
	return nil
}

func (r scheduleRepo) Get(_ context.Context, id uint64) (model.Schedule, error) {
	s, ok := r.t.st.schedules[id]
	if !ok {
		return model.Schedule{}, repository.ErrNotFound
	}
	return s, nil
}

func (r scheduleRepo) GetForUpdate(ctx context.Context, id uint64) (model.Schedule, error) {
	return r.Get(ctx, id)
}

func (r scheduleRepo) filter(keep func(model.Schedule) bool) []model.Schedule {
	out := []model.Schedule{}
	for _, s := range r.t.st.schedules {
		if keep(s) {
			out = append(out, s)
		}
	}
	sortSchedules(out)
	return out
}

func (r scheduleRepo) List(_ context.Context, activeOnly bool) ([]model.Schedule, error) {
	return r.filter(func(s model.Schedule) bool { return !activeOnly || s.IsActive }), nil
}

func (r scheduleRepo) ListActiveByDay(_ context.Context, dayCode string) ([]model.Schedule, error) {
	return r.filter(func(s model.Schedule) bool { return s.IsActive && s.DayOfWeek == dayCode }), nil
}

func (r scheduleRepo) Update(_ context.Context, s model.Schedule) error {
	if _, ok := r.t.st.schedules[s.ID]; !ok {
		return nil
	}
	if !r.t.optionalUserExists(s.CoachID) {
		return repository.ErrLinkedData
	}
	r.t.st.schedules[s.ID] = s
	return nil
}

func (r scheduleRepo) Delete(_ context.Context, id uint64) error {
	st := r.t.st
	if _, ok := st.schedules[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range st.enrollments {
		if e.ScheduleID == id {
			return repository.ErrLinkedData
		}
	}
	for _, a := range st.attendance {
		if a.ScheduleID == id {
			return repository.ErrLinkedData
		}
	}
	for _, c := range st.cancellations {
		if c.ScheduleID == id {
			return repository.ErrLinkedData
		}
	}
	for _, m := range st.messages {
		if m.TargetScheduleID != nil && *m.TargetScheduleID == id {
			return repository.ErrLinkedData
		}
	}
	delete(st.schedules, id)
	return nil
}

func (r scheduleRepo) AddCancellation(_ context.Context, c *model.ScheduleCancellation) error {
	if !r.t.scheduleExists(c.ScheduleID) {
		return repository.ErrLinkedData
	}
	for _, ex := range r.t.st.cancellations {
		if ex.ScheduleID == c.ScheduleID && ex.CancelDate.Equal(c.CancelDate) {
			return repository.ErrDuplicate
		}
	}
	c.ID = r.t.st.nextID()
	r.t.st.cancellations[c.ID] = *c
	return nil
}

func (r scheduleRepo) ListCancellations(_ context.Context, scheduleID uint64) ([]model.ScheduleCancellation, error) {
	out := []model.ScheduleCancellation{}
	for _, c := range r.t.st.cancellations {
		if c.ScheduleID == scheduleID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CancelDate.Equal(out[j].CancelDate) {
			return out[i].CancelDate.Before(out[j].CancelDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r scheduleRepo) IsCancelled(_ context.Context, scheduleID uint64, date model.Date) (bool, error) {
	for _, c := range r.t.st.cancellations {
		if c.ScheduleID == scheduleID && c.CancelDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}
