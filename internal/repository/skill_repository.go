package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

// SkillRepo persists the skills catalog and the skills each member holds.
type SkillRepo struct{ q DBTX }

func NewSkillRepo(q DBTX) *SkillRepo { return &SkillRepo{q: q} }

func scanSkill(row rowScanner) (model.Skill, error) {
	var (
		s           model.Skill
		desc, label sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &desc, &label, &s.DisplayOrder); err != nil {
		return model.Skill{}, translate(err)
	}
	s.Description = stringPtr(desc)
	s.CategoryLabel = stringPtr(label)
	return s, nil
}

func (r *SkillRepo) List(ctx context.Context) ([]model.Skill, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id, name, description, category_label, display_order FROM skills ORDER BY display_order, id")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SkillRepo) Get(ctx context.Context, id uint64) (model.Skill, error) {
	return scanSkill(r.q.QueryRowContext(ctx,
		"SELECT id, name, description, category_label, display_order FROM skills WHERE id=?", id))
}

func (r *SkillRepo) Create(ctx context.Context, s *model.Skill) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO skills (name, description, category_label, display_order) VALUES (?,?,?,?)",
		s.Name, nullString(s.Description), nullString(s.CategoryLabel), s.DisplayOrder)
	if err != nil {
		return translate(err)
	}
	s.ID, err = insertID(res)
	return err
}

func scanMemberSkill(row rowScanner) (model.MemberSkill, error) {
	var (
		ms      model.MemberSkill
		coachID sql.NullInt64
	)
	if err := row.Scan(&ms.ID, &ms.MemberID, &ms.SkillID, &ms.AcquiredAt, &coachID); err != nil {
		return model.MemberSkill{}, translate(err)
	}
	ms.CoachID = uint64Ptr(coachID)
	return ms, nil
}

func (r *SkillRepo) GetMemberSkill(ctx context.Context, memberID, skillID uint64) (model.MemberSkill, error) {
	return scanMemberSkill(r.q.QueryRowContext(ctx,
		"SELECT id, member_id, skill_id, acquired_at, coach_id FROM member_skills WHERE member_id=? AND skill_id=?",
		memberID, skillID))
}

// AddMemberSkill inserts the row. AcquiredAt defaults to today.
func (r *SkillRepo) AddMemberSkill(ctx context.Context, ms *model.MemberSkill) error {
	if ms.AcquiredAt.IsZero() {
		ms.AcquiredAt = model.DateOf(time.Now())
	}
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO member_skills (member_id, skill_id, acquired_at, coach_id) VALUES (?,?,?,?)",
		ms.MemberID, ms.SkillID, ms.AcquiredAt, nullUint64(ms.CoachID))
	if err != nil {
		return translate(err)
	}
	ms.ID, err = insertID(res)
	return err
}

func (r *SkillRepo) RemoveMemberSkill(ctx context.Context, memberID, skillID uint64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM member_skills WHERE member_id=? AND skill_id=?", memberID, skillID)
	return translate(err)
}

func (r *SkillRepo) ListMemberSkills(ctx context.Context, memberID uint64) ([]model.MemberSkill, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id, member_id, skill_id, acquired_at, coach_id FROM member_skills WHERE member_id=? ORDER BY acquired_at, id",
		memberID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.MemberSkill{}
	for rows.Next() {
		ms, err := scanMemberSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ms)
	}
	return out, rows.Err()
}

func (r *SkillRepo) DeleteMemberSkills(ctx context.Context, memberID uint64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM member_skills WHERE member_id=?", memberID)
	return translate(err)
}
