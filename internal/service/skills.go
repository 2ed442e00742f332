package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// SkillService manages the skills catalog and members' progress through it.
type SkillService struct {
	Deps
}

func NewSkillService(d Deps) *SkillService {
	return &SkillService{Deps: mustDeps(d, "NewSkillService")}
}

func (s *SkillService) List(ctx context.Context) ([]model.Skill, error) {
	var out []model.Skill
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Skills().List(ctx)
		return err
	})
	return out, fromStore(err, "skill")
}

func (s *SkillService) Create(ctx context.Context, id Identity, sk model.Skill) (model.Skill, error) {
	if !id.IsOwner() {
		return model.Skill{}, ErrForbidden
	}
	sk.Name = strings.TrimSpace(sk.Name)
	if sk.Name == "" {
		return model.Skill{}, InvalidInput("name is required")
	}
	sk.ID = 0
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.Skills().Create(ctx, &sk); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return InvalidInput("skill already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.Skill{}, fromStore(err, "skill")
	}
	return sk, nil
}

// Award records that the member mastered the skill. Awarding twice returns
// the existing record.
func (s *SkillService) Award(ctx context.Context, id Identity, memberID, skillID uint64) (model.MemberSkill, error) {
	if !id.IsStaff() {
		return model.MemberSkill{}, ErrForbidden
	}
	var out model.MemberSkill
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Members().GetForUpdate(ctx, memberID); err != nil {
			return fromStore(err, "member")
		}
		if _, err := tx.Skills().Get(ctx, skillID); err != nil {
			return fromStore(err, "skill")
		}
		existing, err := tx.Skills().GetMemberSkill(ctx, memberID, skillID)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		coach := id.UserID
		out = model.MemberSkill{MemberID: memberID, SkillID: skillID, AcquiredAt: s.today(), CoachID: &coach}
		return tx.Skills().AddMemberSkill(ctx, &out)
	})
	return out, fromStore(err, "member")
}

// Revoke removes the award; it is a no-op when the member lacks the skill.
func (s *SkillService) Revoke(ctx context.Context, id Identity, memberID, skillID uint64) error {
	if !id.IsStaff() {
		return ErrForbidden
	}
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Skills().RemoveMemberSkill(ctx, memberID, skillID)
	})
	return fromStore(err, "member")
}

// MemberSkills lists a member's awards. Parents only see their own
// children.
func (s *SkillService) MemberSkills(ctx context.Context, id Identity, memberID uint64) ([]model.MemberSkill, error) {
	var out []model.MemberSkill
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().Get(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsStaff() && !id.owns(m) {
			return ErrForbidden
		}
		out, err = tx.Skills().ListMemberSkills(ctx, memberID)
		return err
	})
	return out, fromStore(err, "member")
}

// Status lists the whole catalog flagged with what the member has mastered.
func (s *SkillService) Status(ctx context.Context, id Identity, memberID uint64) ([]model.SkillStatus, error) {
	var out []model.SkillStatus
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().Get(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsStaff() && !id.owns(m) {
			return ErrForbidden
		}
		catalog, err := tx.Skills().List(ctx)
		if err != nil {
			return err
		}
		held, err := tx.Skills().ListMemberSkills(ctx, memberID)
		if err != nil {
			return err
		}
		has := make(map[uint64]bool, len(held))
		for _, ms := range held {
			has[ms.SkillID] = true
		}
		out = make([]model.SkillStatus, 0, len(catalog))
		for _, sk := range catalog {
			out = append(out, model.SkillStatus{SkillID: sk.ID, SkillName: sk.Name, IsMastered: has[sk.ID]})
		}
		return nil
	})
	return out, fromStore(err, "member")
}

// BatchReplace sets the member's skills to exactly skillIDs. Rows for skills
// kept in the set retain their original date and coach.
func (s *SkillService) BatchReplace(ctx context.Context, id Identity, memberID uint64, skillIDs []uint64) ([]model.MemberSkill, error) {
	if !id.IsStaff() {
		return nil, ErrForbidden
	}
	want := make(map[uint64]bool, len(skillIDs))
	for _, sid := range skillIDs {
		want[sid] = true
	}
	var out []model.MemberSkill
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Members().GetForUpdate(ctx, memberID); err != nil {
			return fromStore(err, "member")
		}
		for sid := range want {
			if _, err := tx.Skills().Get(ctx, sid); err != nil {
				return fromStore(err, "skill")
			}
		}
		current, err := tx.Skills().ListMemberSkills(ctx, memberID)
		if err != nil {
			return err
		}
		have := make(map[uint64]bool, len(current))
		for _, ms := range current {
			have[ms.SkillID] = true
			if !want[ms.SkillID] {
				if err := tx.Skills().RemoveMemberSkill(ctx, memberID, ms.SkillID); err != nil {
					return err
				}
			}
		}
		coach := id.UserID
		for _, sid := range skillIDs {
			if have[sid] {
				continue
			}
			have[sid] = true
			ms := model.MemberSkill{MemberID: memberID, SkillID: sid, AcquiredAt: s.today(), CoachID: &coach}
			if err := tx.Skills().AddMemberSkill(ctx, &ms); err != nil {
				return err
			}
		}
		out, err = tx.Skills().ListMemberSkills(ctx, memberID)
		return err
	})
	return out, fromStore(err, "member")
}
