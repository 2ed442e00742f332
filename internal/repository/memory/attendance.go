package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type attendanceRepo struct{ t *tx }

func (r attendanceRepo) ListBySchedule(_ context.Context, scheduleID uint64, date model.Date) ([]model.Attendance, error) {
	out := []model.Attendance{}
	for _, a := range r.t.st.attendance {
		if a.ScheduleID == scheduleID && a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r attendanceRepo) DeleteBySchedule(_ context.Context, scheduleID uint64, date model.Date) (int64, error) {
	var n int64
	for id, a := range r.t.st.attendance {
		if a.ScheduleID == scheduleID && a.Date.Equal(date) {
			delete(r.t.st.attendance, id)
			n++
		}
	}
	return n, nil
}

// InsertBatch is all or nothing, like a multi-row INSERT.
func (r attendanceRepo) InsertBatch(_ context.Context, rows []model.Attendance) error {
	for _, a := range rows {
		if !r.t.scheduleExists(a.ScheduleID) || !r.t.memberExists(a.MemberID) || !r.t.optionalUserExists(a.CoachID) {
			return repository.ErrLinkedData
		}
	}
	for _, a := range rows {
		a.ID = r.t.st.nextID()
		r.t.st.attendance[a.ID] = a
	}
	return nil
}

func (r attendanceRepo) ListByMember(_ context.Context, memberID uint64, dr repository.DateRange) ([]model.Attendance, error) {
	out := []model.Attendance{}
	for _, a := range r.t.st.attendance {
		if a.MemberID == memberID && dr.Contains(a.Date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r attendanceRepo) CountPresentOn(_ context.Context, date model.Date) (int, error) {
	n := 0
	for _, a := range r.t.st.attendance {
		if a.IsPresent && a.Date.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (r attendanceRepo) CountPresentBySchedule(_ context.Context, scheduleID uint64, date model.Date) (int, error) {
	n := 0
	for _, a := range r.t.st.attendance {
		if a.IsPresent && a.ScheduleID == scheduleID && a.Date.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (r attendanceRepo) DeleteByMember(_ context.Context, memberID uint64) error {
	for id, a := range r.t.st.attendance {
		if a.MemberID == memberID {
			delete(r.t.st.attendance, id)
		}
	}
	return nil
}
