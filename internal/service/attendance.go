package service

import (
	"context"
	"math"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// AttendanceService builds attendance sheets from the current roster and
// stores them as a full replacement per schedule and day.
type AttendanceService struct {
	Deps
}

func NewAttendanceService(d Deps) *AttendanceService {
	return &AttendanceService{Deps: mustDeps(d, "NewAttendanceService")}
}

// Sheet returns one row per member actively enrolled in the schedule,
// ordered by name. Members without a stored record get ID 0 and
// IsPresent false; those rows are never written.
func (s *AttendanceService) Sheet(ctx context.Context, scheduleID uint64, date model.Date) ([]model.AttendanceRow, error) {
	var out []model.AttendanceRow
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.Schedules().Get(ctx, scheduleID); err != nil {
			return fromStore(err, "schedule")
		}
		roster, err := tx.Enrollments().Roster(ctx, scheduleID)
		if err != nil {
			return err
		}
		recorded, err := tx.Attendance().ListBySchedule(ctx, scheduleID, date)
		if err != nil {
			return err
		}
		byMember := make(map[uint64]model.Attendance, len(recorded))
		for _, a := range recorded {
			byMember[a.MemberID] = a
		}

		out = make([]model.AttendanceRow, 0, len(roster))
		for _, m := range roster {
			row := model.AttendanceRow{
				MemberID:     m.ID,
				MemberName:   m.FullName,
				BirthDate:    m.DateOfBirth,
				Date:         date,
				ParentPhone:  m.ParentPhone,
				MedicalNotes: m.Notes,
			}
			if a, ok := byMember[m.ID]; ok {
				row.ID = a.ID
				row.IsPresent = a.IsPresent
			}
			out = append(out, row)
		}
		return nil
	})
	return out, fromStore(err, "schedule")
}

// SaveResult reports what a save wrote.
type SaveResult struct {
	Saved   int `json:"saved"`
	Present int `json:"present"`
}

// Save replaces the schedule's records for date: every existing row is
// deleted and one row per rostered member is written, present when listed
// in presentIDs. IDs not on the roster are ignored. Saves for the same
// schedule are serialized on the schedule row lock.
func (s *AttendanceService) Save(ctx context.Context, id Identity, scheduleID uint64, date model.Date, presentIDs []uint64) (SaveResult, error) {
	if !id.IsStaff() {
		return SaveResult{}, ErrForbidden
	}
	if date.IsZero() {
		return SaveResult{}, InvalidInput("date is required")
	}
	present := make(map[uint64]bool, len(presentIDs))
	for _, mid := range presentIDs {
		present[mid] = true
	}

	var res SaveResult
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Schedules().GetForUpdate(ctx, scheduleID); err != nil {
			return fromStore(err, "schedule")
		}
		if _, err := tx.Attendance().DeleteBySchedule(ctx, scheduleID, date); err != nil {
			return err
		}
		roster, err := tx.Enrollments().Roster(ctx, scheduleID)
		if err != nil {
			return err
		}
		coach := id.UserID
		rows := make([]model.Attendance, 0, len(roster))
		for _, m := range roster {
			rows = append(rows, model.Attendance{
				ScheduleID: scheduleID,
				MemberID:   m.ID,
				CoachID:    &coach,
				Date:       date,
				IsPresent:  present[m.ID],
			})
			if present[m.ID] {
				res.Present++
			}
		}
		res.Saved = len(rows)
		return tx.Attendance().InsertBatch(ctx, rows)
	})
	if err != nil {
		return SaveResult{}, fromStore(err, "schedule")
	}
	s.publish(ctx, queue.TypeAttendanceSaved, id.UserID, queue.AttendanceSaved{
		ScheduleID: scheduleID,
		Date:       date.String(),
		Saved:      res.Saved,
		Present:    res.Present,
	})
	return res, nil
}

// StatsPeriod optionally narrows stats to a year or a month of a year. A
// month without a year is ignored.
type StatsPeriod struct {
	Month *int
	Year  *int
}

func (p StatsPeriod) dateRange() (repository.DateRange, error) {
	if p.Month != nil && (*p.Month < 1 || *p.Month > 12) {
		return repository.DateRange{}, InvalidInput("month must be between 1 and 12")
	}
	if p.Year == nil {
		return repository.DateRange{}, nil
	}
	if *p.Year < 1 || *p.Year > 9999 {
		return repository.DateRange{}, InvalidInput("year is out of range")
	}
	if p.Month != nil {
		from := model.NewDate(*p.Year, time.Month(*p.Month), 1)
		return repository.DateRange{From: from, To: model.DateOf(from.AddDate(0, 1, 0))}, nil
	}
	from := model.NewDate(*p.Year, time.January, 1)
	return repository.DateRange{From: from, To: model.DateOf(from.AddDate(1, 0, 0))}, nil
}

// MemberStats summarizes a member's attendance, newest first. Owner only.
func (s *AttendanceService) MemberStats(ctx context.Context, id Identity, memberID uint64, period StatsPeriod) (model.AttendanceStats, error) {
	if !id.IsOwner() {
		return model.AttendanceStats{}, ErrForbidden
	}
	dr, err := period.dateRange()
	if err != nil {
		return model.AttendanceStats{}, err
	}
	var out model.AttendanceStats
	err = s.Store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.Members().Get(ctx, memberID); err != nil {
			return fromStore(err, "member")
		}
		records, err := tx.Attendance().ListByMember(ctx, memberID, dr)
		if err != nil {
			return err
		}
		out = model.AttendanceStats{History: make([]model.AttendanceHistoryEntry, 0, len(records))}
		for _, a := range records {
			out.Total++
			if a.IsPresent {
				out.Present++
			}
			out.History = append(out.History, model.AttendanceHistoryEntry{ID: a.ID, Date: a.Date, IsPresent: a.IsPresent})
		}
		out.Percentage = percentage(out.Present, out.Total)
		return nil
	})
	return out, fromStore(err, "member")
}

// percentage is present/total*100 rounded to one decimal, 0 for no records.
func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*1000) / 10
}
