package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type skillRepo struct{ t *tx }

func (r skillRepo) List(_ context.Context) ([]model.Skill, error) {
	out := make([]model.Skill, 0, len(r.t.st.skills))
	for _, s := range r.t.st.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r skillRepo) Get(_ context.Context, id uint64) (model.Skill, error) {
	s, ok := r.t.st.skills[id]
	if !ok {
		return model.Skill{}, repository.ErrNotFound
	}
	return s, nil
}

func (r skillRepo) Create(_ context.Context, s *model.Skill) error {
	for _, ex := range r.t.st.skills {
		if ex.Name == s.Name {
			return repository.ErrDuplicate
		}
	}
	s.ID = r.t.st.nextID()
	r.t.st.skills[s.ID] = *s
	return nil
}

func (r skillRepo) GetMemberSkill(_ context.Context, memberID, skillID uint64) (model.MemberSkill, error) {
	for _, ms := range r.t.st.memberSkills {
		if ms.MemberID == memberID && ms.SkillID == skillID {
			return ms, nil
		}
	}
	return model.MemberSkill{}, repository.ErrNotFound
}

func (r skillRepo) AddMemberSkill(ctx context.Context, ms *model.MemberSkill) error {
	if _, ok := r.t.st.skills[ms.SkillID]; !ok || !r.t.memberExists(ms.MemberID) || !r.t.optionalUserExists(ms.CoachID) {
		return repository.ErrLinkedData
	}
	if _, err := r.GetMemberSkill(ctx, ms.MemberID, ms.SkillID); err == nil {
		return repository.ErrDuplicate
	}
	if ms.AcquiredAt.IsZero() {
		ms.AcquiredAt = model.DateOf(r.t.now())
	}
	ms.ID = r.t.st.nextID()
	r.t.st.memberSkills[ms.ID] = *ms
	return nil
}

func (r skillRepo) RemoveMemberSkill(_ context.Context, memberID, skillID uint64) error {
	for id, ms := range r.t.st.memberSkills {
		if ms.MemberID == memberID && ms.SkillID == skillID {
			delete(r.t.st.memberSkills, id)
		}
	}
	return nil
}

func (r skillRepo) ListMemberSkills(_ context.Context, memberID uint64) ([]model.MemberSkill, error) {
	out := []model.MemberSkill{}
	for _, ms := range r.t.st.memberSkills {
		if ms.MemberID == memberID {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AcquiredAt.Equal(out[j].AcquiredAt) {
			return out[i].AcquiredAt.Before(out[j].AcquiredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r skillRepo) DeleteMemberSkills(_ context.Context, memberID uint64) error {
	for id, ms := range r.t.st.memberSkills {
		if ms.MemberID == memberID {
			delete(r.t.st.memberSkills, id)
		}
	}
	return nil
}
