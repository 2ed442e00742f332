package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type messageRepo struct{ t *tx }

func (r messageRepo) Create(_ context.Context, m *model.Message) error {
	if !r.t.userExists(m.SenderID) || !r.t.optionalUserExists(m.RecipientID) {
		return repository.ErrLinkedData
	}
	if m.TargetScheduleID != nil && !r.t.scheduleExists(*m.TargetScheduleID) {
		return repository.ErrLinkedData
	}
	if m.SentAt.IsZero() {
		m.SentAt = r.t.now().UTC()
	}
	m.ID = r.t.st.nextID()
	stored := *m
	stored.SenderName = ""
	r.t.st.messages[m.ID] = stored
	return nil
}

func (r messageRepo) visible(m model.Message, f model.InboxFilter) bool {
	switch {
	case m.SenderID == f.UserID:
		return true
	case m.Scope == model.ScopeDirect && m.RecipientID != nil && *m.RecipientID == f.UserID:
		return true
	case slices.Contains(f.Scopes, m.Scope):
		return true
	case m.Scope == model.ScopeGroupSchedule && m.TargetScheduleID != nil:
		return slices.Contains(f.ScheduleIDs, *m.TargetScheduleID)
	}
	return false
}

func (r messageRepo) Inbox(_ context.Context, f model.InboxFilter) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range r.t.st.messages {
		if !r.visible(m, f) {
			continue
		}
		if u, ok := r.t.st.users[m.SenderID]; ok {
			m.SenderName = u.FullName
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.After(out[j].SentAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r messageRepo) DeleteBySender(_ context.Context, userID uint64) error {
	for id, m := range r.t.st.messages {
		if m.SenderID == userID {
			delete(r.t.st.messages, id)
		}
	}
	return nil
}

func (r messageRepo) DetachRecipient(_ context.Context, userID uint64) error {
	for id, m := range r.t.st.messages {
		if m.RecipientID != nil && *m.RecipientID == userID {
			m.RecipientID = nil
			r.t.st.messages[id] = m
		}
	}
	return nil
}
