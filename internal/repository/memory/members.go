package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type memberRepo struct{ t *tx }

func sortMembers(ms []model.Member) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].FullName != ms[j].FullName {
			return ms[i].FullName < ms[j].FullName
		}
		return ms[i].ID < ms[j].ID
	})
}

func (r memberRepo) Create(_ context.Context, m *model.Member) error {
	if !r.t.userExists(m.ParentID) {
		return repository.ErrLinkedData
	}
	m.ID = r.t.st.nextID()
	m.CreatedAt = r.t.now().UTC()
	r.t.st.members[m.ID] = *m
	return nil
}

func (r memberRepo) Get(_ context.Context, id uint64) (model.Member, error) {
	m, ok := r.t.st.members[id]
	if !ok {
		return model.Member{}, repository.ErrNotFound
	}
	return m, nil
}

// GetForUpdate needs no lock: the transaction already holds the store.
func (r memberRepo) GetForUpdate(ctx context.Context, id uint64) (model.Member, error) {
	return r.Get(ctx, id)
}

func (r memberRepo) ListByParent(_ context.Context, parentID uint64) ([]model.Member, error) {
	out := []model.Member{}
	for _, m := range r.t.st.members {
		if m.ParentID == parentID {
			out = append(out, m)
		}
	}
	sortMembers(out)
	return out, nil
}

func (r memberRepo) ListAll(_ context.Context) ([]model.MemberListing, error) {
	all := make([]model.Member, 0, len(r.t.st.members))
	for _, m := range r.t.st.members {
		all = append(all, m)
	}
	sortMembers(all)
	out := make([]model.MemberListing, 0, len(all))
	for _, m := range all {
		ml := model.MemberListing{
			ID:          m.ID,
			FullName:    m.FullName,
			DateOfBirth: m.DateOfBirth,
			Notes:       m.Notes,
			Active:      m.Active,
		}
		if p, ok := r.t.st.users[m.ParentID]; ok {
			ml.ParentName = ptr(p.FullName)
			ml.ParentPhone = p.PhoneNumber
		}
		out = append(out, ml)
	}
	return out, nil
}

func (r memberRepo) Update(_ context.Context, m model.Member) error {
	cur, ok := r.t.st.members[m.ID]
	if !ok {
		return nil
	}
	cur.FullName = m.FullName
	cur.DateOfBirth = m.DateOfBirth
	cur.Notes = m.Notes
	r.t.st.members[m.ID] = cur
	return nil
}

func (r memberRepo) SetActive(_ context.Context, id uint64, active bool) error {
	cur, ok := r.t.st.members[id]
	if !ok {
		return nil
	}
	cur.Active = active
	r.t.st.members[id] = cur
	return nil
}

func (r memberRepo) CountByParent(_ context.Context, parentID uint64) (int, error) {
	n := 0
	for _, m := range r.t.st.members {
		if m.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (r memberRepo) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, m := range r.t.st.members {
		if m.Active {
			n++
		}
	}
	return n, nil
}

func (r memberRepo) Delete(_ context.Context, id uint64) error {
	st := r.t.st
	if _, ok := st.members[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range st.enrollments {
		if e.MemberID == id {
			return repository.ErrLinkedData
		}
	}
	for _, a := range st.attendance {
		if a.MemberID == id {
			return repository.ErrLinkedData
		}
	}
	for _, ms := range st.memberSkills {
		if ms.MemberID == id {
			return repository.ErrLinkedData
		}
	}
	for _, p := range st.payments {
		if p.MemberID == id {
			return repository.ErrLinkedData
		}
	}
	delete(st.members, id)
	return nil
}
