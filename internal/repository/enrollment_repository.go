package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

// EnrollmentRepo persists member-to-schedule enrollments. The table keeps a
// generated active_key column with a unique index over
// (member_id, schedule_id, active_key), so at most one active row exists
// per pair.
type EnrollmentRepo struct{ q DBTX }

func NewEnrollmentRepo(q DBTX) *EnrollmentRepo { return &EnrollmentRepo{q: q} }

func scanEnrollment(row rowScanner) (model.Enrollment, error) {
	var (
		e   model.Enrollment
		end model.Date
	)
	if err := row.Scan(&e.ID, &e.MemberID, &e.ScheduleID, &e.StartDate, &end, &e.Active); err != nil {
		return model.Enrollment{}, translate(err)
	}
	if !end.IsZero() {
		e.EndDate = &end
	}
	return e, nil
}

func (r *EnrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	var end any
	if e.EndDate != nil {
		end = *e.EndDate
	}
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO enrollments (member_id, schedule_id, start_date, end_date, active) VALUES (?,?,?,?,?)",
		e.MemberID, e.ScheduleID, e.StartDate, end, e.Active)
	if err != nil {
		return translate(err)
	}
	e.ID, err = insertID(res)
	return err
}

func (r *EnrollmentRepo) Get(ctx context.Context, id uint64) (model.Enrollment, error) {
	return scanEnrollment(r.q.QueryRowContext(ctx,
		"SELECT id, member_id, schedule_id, start_date, end_date, active FROM enrollments WHERE id=?", id))
}

func (r *EnrollmentRepo) count(ctx context.Context, q string, arg any) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, q, arg).Scan(&n)
	return n, translate(err)
}

func (r *EnrollmentRepo) CountActiveBySchedule(ctx context.Context, scheduleID uint64) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM enrollments WHERE schedule_id=? AND active=1", scheduleID)
}

func (r *EnrollmentRepo) CountActiveByMember(ctx context.Context, memberID uint64) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM enrollments WHERE member_id=? AND active=1", memberID)
}

func (r *EnrollmentRepo) ActiveExists(ctx context.Context, memberID, scheduleID uint64) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM enrollments WHERE member_id=? AND schedule_id=? AND active=1)",
		memberID, scheduleID).Scan(&ok)
	return ok, translate(err)
}

func (r *EnrollmentRepo) ActiveCounts(ctx context.Context) (map[uint64]int, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT schedule_id, COUNT(*) FROM enrollments WHERE active=1 GROUP BY schedule_id")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := map[uint64]int{}
	for rows.Next() {
		var (
			id uint64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, translate(err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *EnrollmentRepo) ListActiveByMember(ctx context.Context, memberID uint64) ([]model.EnrollmentDetail, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT e.id, e.member_id, e.schedule_id, e.start_date, e.end_date, e.active,
		       s.id, s.day_of_week, s.start_time, s.end_time, s.coach_id, s.capacity, s.group_name, s.location, s.is_active
		FROM enrollments e
		JOIN schedules s ON s.id = e.schedule_id
		WHERE e.member_id=? AND e.active=1
		ORDER BY FIELD(s.day_of_week,'PON','UTO','SRE','CET','PET','SUB','NED'), s.start_time, e.id`, memberID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.EnrollmentDetail{}
	for rows.Next() {
		var (
			d               model.EnrollmentDetail
			end             model.Date
			start, stop     string
			coachID         sql.NullInt64
			group, location sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.MemberID, &d.ScheduleID, &d.StartDate, &end, &d.Active,
			&d.Schedule.ID, &d.Schedule.DayOfWeek, &start, &stop, &coachID, &d.Schedule.Capacity,
			&group, &location, &d.Schedule.IsActive); err != nil {
			return nil, translate(err)
		}
		if !end.IsZero() {
			d.EndDate = &end
		}
		d.Schedule.StartTime = clock(start)
		d.Schedule.EndTime = clock(stop)
		d.Schedule.CoachID = uint64Ptr(coachID)
		d.Schedule.GroupName = stringPtr(group)
		d.Schedule.Location = stringPtr(location)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *EnrollmentRepo) Roster(ctx context.Context, scheduleID uint64) ([]model.MemberWithParent, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT m.id, m.parent_id, m.full_name, m.date_of_birth, m.notes, m.active, m.created_at,
		       u.full_name, u.phone_number, u.role
		FROM enrollments e
		JOIN members m ON m.id = e.member_id
		LEFT JOIN users u ON u.id = m.parent_id
		WHERE e.schedule_id=? AND e.active=1
		ORDER BY m.full_name, m.id`, scheduleID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.MemberWithParent{}
	for rows.Next() {
		var (
			mp                       model.MemberWithParent
			notes, pname, pphone, pr sql.NullString
		)
		if err := rows.Scan(&mp.ID, &mp.ParentID, &mp.FullName, &mp.DateOfBirth, &notes, &mp.Active, &mp.CreatedAt,
			&pname, &pphone, &pr); err != nil {
			return nil, translate(err)
		}
		mp.Notes = stringPtr(notes)
		mp.ParentName = stringPtr(pname)
		mp.ParentPhone = stringPtr(pphone)
		mp.ParentRole = pr.String
		out = append(out, mp)
	}
	return out, rows.Err()
}

func (r *EnrollmentRepo) ActiveScheduleIDsForParent(ctx context.Context, parentID uint64) ([]uint64, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT DISTINCT e.schedule_id
		FROM enrollments e
		JOIN members m ON m.id = e.member_id
		WHERE m.parent_id=? AND e.active=1
		ORDER BY e.schedule_id`, parentID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Deactivate ends an active enrollment. It returns ErrNotFound when no
// active row has the id.
func (r *EnrollmentRepo) Deactivate(ctx context.Context, id uint64, endDate model.Date) error {
	return mustAffect(r.q.ExecContext(ctx,
		"UPDATE enrollments SET active=0, end_date=? WHERE id=? AND active=1", endDate, id))
}

func (r *EnrollmentRepo) DeleteByMember(ctx context.Context, memberID uint64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM enrollments WHERE member_id=?", memberID)
	return translate(err)
}

// clock trims a TIME column value to HH:MM, leaving unexpected input as is.
func clock(v string) string {
	if s, err := model.NormalizeClock(v); err == nil {
		return s
	}
	return v
}
