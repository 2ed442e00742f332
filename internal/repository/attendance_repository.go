package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

// AttendanceRepo persists per-session presence records.
type AttendanceRepo struct{ q DBTX }

func NewAttendanceRepo(q DBTX) *AttendanceRepo { return &AttendanceRepo{q: q} }

func (r *AttendanceRepo) query(ctx context.Context, q string, args ...any) ([]model.Attendance, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Attendance{}
	for rows.Next() {
		var (
			a       model.Attendance
			coachID sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.MemberID, &coachID, &a.Date, &a.IsPresent); err != nil {
			return nil, translate(err)
		}
		a.CoachID = uint64Ptr(coachID)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AttendanceRepo) ListBySchedule(ctx context.Context, scheduleID uint64, date model.Date) ([]model.Attendance, error) {
	return r.query(ctx,
		"SELECT id, schedule_id, member_id, coach_id, date, is_present FROM attendance WHERE schedule_id=? AND date=? ORDER BY id",
		scheduleID, date)
}

func (r *AttendanceRepo) DeleteBySchedule(ctx context.Context, scheduleID uint64, date model.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM attendance WHERE schedule_id=? AND date=?", scheduleID, date)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// InsertBatch writes all rows in a single multi-row INSERT.
func (r *AttendanceRepo) InsertBatch(ctx context.Context, rows []model.Attendance) error {
	if len(rows) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT INTO attendance (schedule_id, member_id, coach_id, date, is_present) VALUES ")
	args := make([]any, 0, len(rows)*5)
	for i, a := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?,?,?,?,?)")
		args = append(args, a.ScheduleID, a.MemberID, nullUint64(a.CoachID), a.Date, a.IsPresent)
	}
	_, err := r.q.ExecContext(ctx, b.String(), args...)
	return translate(err)
}

func (r *AttendanceRepo) ListByMember(ctx context.Context, memberID uint64, dr DateRange) ([]model.Attendance, error) {
	q := "SELECT id, schedule_id, member_id, coach_id, date, is_present FROM attendance WHERE member_id=?"
	args := []any{memberID}
	if !dr.From.IsZero() {
		q += " AND date >= ?"
		args = append(args, dr.From)
	}
	if !dr.To.IsZero() {
		q += " AND date < ?"
		args = append(args, dr.To)
	}
	return r.query(ctx, q+" ORDER BY date DESC, id DESC", args...)
}

func (r *AttendanceRepo) CountPresentOn(ctx context.Context, date model.Date) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE date=? AND is_present=1", date).Scan(&n)
	return n, translate(err)
}

func (r *AttendanceRepo) CountPresentBySchedule(ctx context.Context, scheduleID uint64, date model.Date) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE schedule_id=? AND date=? AND is_present=1", scheduleID, date).Scan(&n)
	return n, translate(err)
}

func (r *AttendanceRepo) DeleteByMember(ctx context.Context, memberID uint64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM attendance WHERE member_id=?", memberID)
	return translate(err)
}
