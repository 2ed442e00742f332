package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type userRepo struct{ t *tx }

func (r userRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.t.st.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := r.t.now().UTC()
	u.ID = r.t.st.nextID()
	u.CreatedAt, u.UpdatedAt = now, now
	r.t.st.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := r.t.st.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range r.t.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r userRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, error) {
	all := []model.User{}
	for _, u := range r.t.st.users {
		if role == "" || u.Role == role {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []model.User{}, nil
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r userRepo) UpdatePassword(_ context.Context, id uint64, hash string) error {
	u, ok := r.t.st.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.t.now().UTC()
	r.t.st.users[id] = u
	return nil
}

func (r userRepo) DetachCoach(_ context.Context, coachID uint64) error {
	st := r.t.st
	for id, s := range st.schedules {
		if s.CoachID != nil && *s.CoachID == coachID {
			s.CoachID = nil
			st.schedules[id] = s
		}
	}
	for id, a := range st.attendance {
		if a.CoachID != nil && *a.CoachID == coachID {
			a.CoachID = nil
			st.attendance[id] = a
		}
	}
	for id, ms := range st.memberSkills {
		if ms.CoachID != nil && *ms.CoachID == coachID {
			ms.CoachID = nil
			st.memberSkills[id] = ms
		}
	}
	return nil
}

func (r userRepo) Delete(_ context.Context, id uint64) error {
	st := r.t.st
	if _, ok := st.users[id]; !ok {
		return repository.ErrNotFound
	}
	if r.referenced(id) {
		return repository.ErrLinkedData
	}
	delete(st.users, id)
	return nil
}

func (r userRepo) referenced(id uint64) bool {
	st := r.t.st
	is := func(p *uint64) bool { return p != nil && *p == id }
	for _, m := range st.members {
		if m.ParentID == id {
			return true
		}
	}
	for _, tok := range st.tokens {
		if tok.userID == id {
			return true
		}
	}
	for _, m := range st.messages {
		if m.SenderID == id || is(m.RecipientID) {
			return true
		}
	}
	for _, s := range st.schedules {
		if is(s.CoachID) {
			return true
		}
	}
	for _, a := range st.attendance {
		if is(a.CoachID) {
			return true
		}
	}
	for _, ms := range st.memberSkills {
		if is(ms.CoachID) {
			return true
		}
	}
	return false
}

type tokenRepo struct{ t *tx }

func (r tokenRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	if !r.t.userExists(userID) {
		return repository.ErrLinkedData
	}
	for _, tok := range r.t.st.tokens {
		if tok.hash == tokenHash {
			return repository.ErrDuplicate
		}
	}
	r.t.st.tokens[r.t.st.nextID()] = tokenRow{userID: userID, hash: tokenHash, expiresAt: exp}
	return nil
}

func (r tokenRepo) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	for _, tok := range r.t.st.tokens {
		if tok.hash != tokenHash {
			continue
		}
		if tok.revoked || r.t.now().UTC().After(tok.expiresAt) {
			return 0, repository.ErrNotFound
		}
		return tok.userID, nil
	}
	return 0, repository.ErrNotFound
}

func (r tokenRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	for id, tok := range r.t.st.tokens {
		if tok.hash == tokenHash {
			tok.revoked = true
			r.t.st.tokens[id] = tok
		}
	}
	return nil
}

func (r tokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	for id, tok := range r.t.st.tokens {
		if tok.userID == userID {
			tok.revoked = true
			r.t.st.tokens[id] = tok
		}
	}
	return nil
}

func (r tokenRepo) DeleteForUser(_ context.Context, userID uint64) error {
	for id, tok := range r.t.st.tokens {
		if tok.userID == userID {
			delete(r.t.st.tokens, id)
		}
	}
	return nil
}
