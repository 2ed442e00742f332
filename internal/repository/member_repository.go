package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

const memberColumns = "id, parent_id, full_name, date_of_birth, notes, active, created_at"

// MemberRepo persists children registered under parent accounts.
type MemberRepo struct{ q DBTX }

func NewMemberRepo(q DBTX) *MemberRepo { return &MemberRepo{q: q} }

func scanMember(row rowScanner) (model.Member, error) {
	var (
		m     model.Member
		notes sql.NullString
	)
	if err := row.Scan(&m.ID, &m.ParentID, &m.FullName, &m.DateOfBirth, &notes, &m.Active, &m.CreatedAt); err != nil {
		return model.Member{}, translate(err)
	}
	m.Notes = stringPtr(notes)
	return m, nil
}

func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO members (parent_id, full_name, date_of_birth, notes, active) VALUES (?,?,?,?,?)",
		m.ParentID, m.FullName, m.DateOfBirth, nullString(m.Notes), m.Active)
	if err != nil {
		return translate(err)
	}
	if m.ID, err = insertID(res); err != nil {
		return err
	}
	m.CreatedAt = time.Now().UTC()
	return nil
}

func (r *MemberRepo) Get(ctx context.Context, id uint64) (model.Member, error) {
	return scanMember(r.q.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id=?", id))
}

// GetForUpdate reads the member and locks its row until the transaction
// ends. Enrollment changes for one member are serialized on this lock.
func (r *MemberRepo) GetForUpdate(ctx context.Context, id uint64) (model.Member, error) {
	return scanMember(r.q.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id=? FOR UPDATE", id))
}

func (r *MemberRepo) ListByParent(ctx context.Context, parentID uint64) ([]model.Member, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE parent_id=? ORDER BY full_name, id", parentID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListAll returns every member with the parent's name and phone.
func (r *MemberRepo) ListAll(ctx context.Context) ([]model.MemberListing, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT m.id, m.full_name, m.date_of_birth, u.full_name, u.phone_number, m.notes, m.active
		FROM members m
		LEFT JOIN users u ON u.id = m.parent_id
		ORDER BY m.full_name, m.id`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.MemberListing{}
	for rows.Next() {
		var (
			ml                       model.MemberListing
			parentName, phone, notes sql.NullString
		)
		if err := rows.Scan(&ml.ID, &ml.FullName, &ml.DateOfBirth, &parentName, &phone, &notes, &ml.Active); err != nil {
			return nil, translate(err)
		}
		ml.ParentName = stringPtr(parentName)
		ml.ParentPhone = stringPtr(phone)
		ml.Notes = stringPtr(notes)
		out = append(out, ml)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields: name, birth date and notes.
func (r *MemberRepo) Update(ctx context.Context, m model.Member) error {
	_, err := r.q.ExecContext(ctx,
		"UPDATE members SET full_name=?, date_of_birth=?, notes=? WHERE id=?",
		m.FullName, m.DateOfBirth, nullString(m.Notes), m.ID)
	return translate(err)
}

func (r *MemberRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.q.ExecContext(ctx, "UPDATE members SET active=? WHERE id=?", active, id)
	return translate(err)
}

func (r *MemberRepo) CountByParent(ctx context.Context, parentID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE parent_id=?", parentID).Scan(&n)
	return n, translate(err)
}

func (r *MemberRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE active=1").Scan(&n)
	return n, translate(err)
}

func (r *MemberRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.q.ExecContext(ctx, "DELETE FROM members WHERE id=?", id))
}
