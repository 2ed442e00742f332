package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

const scheduleColumns = "id, day_of_week, start_time, end_time, coach_id, capacity, group_name, location, is_active"

// scheduleOrder sorts by weekday (Monday first) and start time.
const scheduleOrder = " ORDER BY FIELD(day_of_week,'PON','UTO','SRE','CET','PET','SUB','NED'), start_time, id"

// ScheduleRepo persists weekly class slots and their one-off cancellations.
type ScheduleRepo struct{ q DBTX }

func NewScheduleRepo(q DBTX) *ScheduleRepo { return &ScheduleRepo{q: q} }

func scanSchedule(row rowScanner) (model.Schedule, error) {
	var (
		s               model.Schedule
		start, end      string
		coachID         sql.NullInt64
		group, location sql.NullString
	)
	if err := row.Scan(&s.ID, &s.DayOfWeek, &start, &end, &coachID, &s.Capacity, &group, &location, &s.IsActive); err != nil {
		return model.Schedule{}, translate(err)
	}
	// TIME columns come back as "HH:MM:SS".
	s.StartTime, s.EndTime = clock(start), clock(end)
	s.CoachID = uint64Ptr(coachID)
	s.GroupName = stringPtr(group)
	s.Location = stringPtr(location)
	return s, nil
}

func (r *ScheduleRepo) querySchedules(ctx context.Context, q string, args ...any) ([]model.Schedule, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO schedules (day_of_week, start_time, end_time, coach_id, capacity, group_name, location, is_active)
		 VALUES (?,?,?,?,?,?,?,?)`,
		s.DayOfWeek, s.StartTime, s.EndTime, nullUint64(s.CoachID), s.Capacity,
		nullString(s.GroupName), nullString(s.Location), s.IsActive)
	if err != nil {
		return translate(err)
	}
	s.ID, err = insertID(res)
	return err
}

func (r *ScheduleRepo) Get(ctx context.Context, id uint64) (model.Schedule, error) {
	return scanSchedule(r.q.QueryRowContext(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE id=?", id))
}

// GetForUpdate locks the schedule row; capacity checks and attendance
// saves for one schedule are serialized on it.
func (r *ScheduleRepo) GetForUpdate(ctx context.Context, id uint64) (model.Schedule, error) {
	return scanSchedule(r.q.QueryRowContext(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE id=? FOR UPDATE", id))
}

func (r *ScheduleRepo) List(ctx context.Context, activeOnly bool) ([]model.Schedule, error) {
	q := "SELECT " + scheduleColumns + " FROM schedules"
	if activeOnly {
		q += " WHERE is_active=1"
	}
	return r.querySchedules(ctx, q+scheduleOrder)
}

func (r *ScheduleRepo) ListActiveByDay(ctx context.Context, dayCode string) ([]model.Schedule, error) {
	return r.querySchedules(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE is_active=1 AND day_of_week=? ORDER BY start_time, id",
		dayCode)
}

func (r *ScheduleRepo) Update(ctx context.Context, s model.Schedule) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE schedules SET day_of_week=?, start_time=?, end_time=?, coach_id=?, capacity=?,
		 group_name=?, location=?, is_active=? WHERE id=?`,
		s.DayOfWeek, s.StartTime, s.EndTime, nullUint64(s.CoachID), s.Capacity,
		nullString(s.GroupName), nullString(s.Location), s.IsActive, s.ID)
	return translate(err)
}

func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.q.ExecContext(ctx, "DELETE FROM schedules WHERE id=?", id))
}

// AddCancellation records that one session does not take place. A second
// cancellation for the same day yields ErrDuplicate.
func (r *ScheduleRepo) AddCancellation(ctx context.Context, c *model.ScheduleCancellation) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO schedule_cancellations (schedule_id, cancel_date, reason) VALUES (?,?,?)",
		c.ScheduleID, c.CancelDate, nullString(c.Reason))
	if err != nil {
		return translate(err)
	}
	c.ID, err = insertID(res)
	return err
}

func (r *ScheduleRepo) ListCancellations(ctx context.Context, scheduleID uint64) ([]model.ScheduleCancellation, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id, schedule_id, cancel_date, reason FROM schedule_cancellations WHERE schedule_id=? ORDER BY cancel_date, id",
		scheduleID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.ScheduleCancellation{}
	for rows.Next() {
		var (
			c      model.ScheduleCancellation
			reason sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ScheduleID, &c.CancelDate, &reason); err != nil {
			return nil, translate(err)
		}
		c.Reason = stringPtr(reason)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) IsCancelled(ctx context.Context, scheduleID uint64, date model.Date) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM schedule_cancellations WHERE schedule_id=? AND cancel_date=?)",
		scheduleID, date).Scan(&ok)
	return ok, translate(err)
}
