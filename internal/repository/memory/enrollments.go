package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type enrollmentRepo struct{ t *tx }

func (r enrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	if !r.t.memberExists(e.MemberID) || !r.t.scheduleExists(e.ScheduleID) {
		return repository.ErrLinkedData
	}
	if e.Active {
		for _, ex := range r.t.st.enrollments {
			if ex.Active && ex.MemberID == e.MemberID && ex.ScheduleID == e.ScheduleID {
				return repository.ErrDuplicate
			}
		}
	}
	e.ID = r.t.st.nextID()
	r.t.st.enrollments[e.ID] = *e
	return nil
}

func (r enrollmentRepo) Get(_ context.Context, id uint64) (model.Enrollment, error) {
	e, ok := r.t.st.enrollments[id]
	if !ok {
		return model.Enrollment{}, repository.ErrNotFound
	}
	return e, nil
}

func (r enrollmentRepo) active(keep func(model.Enrollment) bool) []model.Enrollment {
	out := []model.Enrollment{}
	for _, e := range r.t.st.enrollments {
		if e.Active && keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r enrollmentRepo) CountActiveBySchedule(_ context.Context, scheduleID uint64) (int, error) {
	return len(r.active(func(e model.Enrollment) bool { return e.ScheduleID == scheduleID })), nil
}

func (r enrollmentRepo) CountActiveByMember(_ context.Context, memberID uint64) (int, error) {
	return len(r.active(func(e model.Enrollment) bool { return e.MemberID == memberID })), nil
}

func (r enrollmentRepo) ActiveExists(_ context.Context, memberID, scheduleID uint64) (bool, error) {
	return len(r.active(func(e model.Enrollment) bool {
		return e.MemberID == memberID && e.ScheduleID == scheduleID
	})) > 0, nil
}

func (r enrollmentRepo) ActiveCounts(_ context.Context) (map[uint64]int, error) {
	out := map[uint64]int{}
	for _, e := range r.active(func(model.Enrollment) bool { return true }) {
		out[e.ScheduleID]++
	}
	return out, nil
}

func (r enrollmentRepo) ListActiveByMember(_ context.Context, memberID uint64) ([]model.EnrollmentDetail, error) {
	out := []model.EnrollmentDetail{}
	for _, e := range r.active(func(e model.Enrollment) bool { return e.MemberID == memberID }) {
		out = append(out, model.EnrollmentDetail{Enrollment: e, Schedule: r.t.st.schedules[e.ScheduleID]})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Schedule, out[j].Schedule
		if da, db := model.DayIndex(a.DayOfWeek), model.DayIndex(b.DayOfWeek); da != db {
			return da < db
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r enrollmentRepo) Roster(_ context.Context, scheduleID uint64) ([]model.MemberWithParent, error) {
	members := []model.Member{}
	for _, e := range r.active(func(e model.Enrollment) bool { return e.ScheduleID == scheduleID }) {
		if m, ok := r.t.st.members[e.MemberID]; ok {
			members = append(members, m)
		}
	}
	sortMembers(members)
	out := make([]model.MemberWithParent, 0, len(members))
	for _, m := range members {
		mp := model.MemberWithParent{Member: m}
		if p, ok := r.t.st.users[m.ParentID]; ok {
			mp.ParentName = ptr(p.FullName)
			mp.ParentPhone = p.PhoneNumber
			mp.ParentRole = p.Role
		}
		out = append(out, mp)
	}
	return out, nil
}

func (r enrollmentRepo) ActiveScheduleIDsForParent(_ context.Context, parentID uint64) ([]uint64, error) {
	seen := map[uint64]bool{}
	out := []uint64{}
	for _, e := range r.active(func(e model.Enrollment) bool {
		m, ok := r.t.st.members[e.MemberID]
		return ok && m.ParentID == parentID
	}) {
		if !seen[e.ScheduleID] {
			seen[e.ScheduleID] = true
			out = append(out, e.ScheduleID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r enrollmentRepo) Deactivate(_ context.Context, id uint64, endDate model.Date) error {
	e, ok := r.t.st.enrollments[id]
	if !ok || !e.Active {
		return repository.ErrNotFound
	}
	e.Active = false
	e.EndDate = ptr(endDate)
	r.t.st.enrollments[id] = e
	return nil
}

func (r enrollmentRepo) DeleteByMember(_ context.Context, memberID uint64) error {
	for id, e := range r.t.st.enrollments {
		if e.MemberID == memberID {
			delete(r.t.st.enrollments, id)
		}
	}
	return nil
}
