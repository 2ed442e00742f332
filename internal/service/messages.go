package service

import (
	"context"
	"strings"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// MessageService sends and lists in-app messages.
type MessageService struct {
	Deps
}

func NewMessageService(d Deps) *MessageService {
	return &MessageService{Deps: mustDeps(d, "NewMessageService")}
}

// MessageInput is a message to send.
type MessageInput struct {
	Content          string
	Scope            string
	RecipientID      *uint64
	TargetScheduleID *uint64
	ImageURL         *string
}

// Send validates the scope against the caller's role and the scope's
// target. Parents may only write DIRECT messages; only the owner
// broadcasts to everyone.
func (s *MessageService) Send(ctx context.Context, id Identity, in MessageInput) (model.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return model.Message{}, InvalidInput("content is required")
	}
	scope := strings.ToUpper(strings.TrimSpace(in.Scope))
	if scope == "" {
		scope = model.ScopeDirect
	}
	switch scope {
	case model.ScopeDirect, model.ScopeGroupSchedule, model.ScopeBroadcastAll, model.ScopeInternalStaff:
	default:
		return model.Message{}, InvalidInput("scope must be DIRECT, GROUP_SCHEDULE, BROADCAST_ALL or INTERNAL_STAFF")
	}
	if id.IsParent() && scope != model.ScopeDirect {
		return model.Message{}, ErrForbidden
	}
	if scope == model.ScopeBroadcastAll && !id.IsOwner() {
		return model.Message{}, ErrForbidden
	}

	out := model.Message{
		SenderID: id.UserID,
		Content:  content,
		ImageURL: in.ImageURL,
		Scope:    scope,
		SentAt:   s.now().UTC(),
	}
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		switch scope {
		case model.ScopeDirect:
			if in.RecipientID == nil {
				return InvalidInput("recipient_id is required for DIRECT messages")
			}
			if _, err := tx.Users().GetByID(ctx, *in.RecipientID); err != nil {
				return fromStore(err, "recipient")
			}
			out.RecipientID = in.RecipientID
		case model.ScopeGroupSchedule:
			if in.TargetScheduleID == nil {
				return InvalidInput("target_schedule_id is required for GROUP_SCHEDULE messages")
			}
			if _, err := tx.Schedules().Get(ctx, *in.TargetScheduleID); err != nil {
				return fromStore(err, "schedule")
			}
			out.TargetScheduleID = in.TargetScheduleID
		}
		sender, err := tx.Users().GetByID(ctx, id.UserID)
		if err != nil {
			return fromStore(err, "user")
		}
		if err := tx.Messages().Create(ctx, &out); err != nil {
			return err
		}
		out.SenderName = sender.FullName
		return nil
	})
	if err != nil {
		return model.Message{}, fromStore(err, "message")
	}
	return out, nil
}

// Inbox lists what the caller may read, newest first: their own sent and
// direct messages, broadcasts, and group messages for relevant schedules.
// Staff also see internal messages and every group message; parents see
// group messages only for schedules their children attend.
func (s *MessageService) Inbox(ctx context.Context, id Identity) ([]model.Message, error) {
	var out []model.Message
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		f := model.InboxFilter{UserID: id.UserID}
		switch {
		case id.IsStaff():
			f.Scopes = []string{model.ScopeInternalStaff, model.ScopeBroadcastAll, model.ScopeGroupSchedule}
		case id.IsParent():
			f.Scopes = []string{model.ScopeBroadcastAll}
			ids, err := tx.Enrollments().ActiveScheduleIDsForParent(ctx, id.UserID)
			if err != nil {
				return err
			}
			f.ScheduleIDs = ids
		}
		var err error
		out, err = tx.Messages().Inbox(ctx, f)
		return err
	})
	return out, fromStore(err, "message")
}
