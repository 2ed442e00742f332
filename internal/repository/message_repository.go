package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

// MessageRepo persists in-app messages.
type MessageRepo struct{ q DBTX }

func NewMessageRepo(q DBTX) *MessageRepo { return &MessageRepo{q: q} }

func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO messages (sender_id, content, image_url, sent_at, scope, target_schedule_id, recipient_id)
		 VALUES (?,?,?,?,?,?,?)`,
		m.SenderID, m.Content, nullString(m.ImageURL), m.SentAt, m.Scope,
		nullUint64(m.TargetScheduleID), nullUint64(m.RecipientID))
	if err != nil {
		return translate(err)
	}
	m.ID, err = insertID(res)
	return err
}

func (r *MessageRepo) Inbox(ctx context.Context, f model.InboxFilter) ([]model.Message, error) {
	where := "(m.sender_id = ? OR (m.scope = 'DIRECT' AND m.recipient_id = ?)"
	args := []any{f.UserID, f.UserID}
	if len(f.Scopes) > 0 {
		where += " OR m.scope IN (" + placeholders(len(f.Scopes)) + ")"
		for _, s := range f.Scopes {
			args = append(args, s)
		}
	}
	if len(f.ScheduleIDs) > 0 {
		where += " OR (m.scope = 'GROUP_SCHEDULE' AND m.target_schedule_id IN (" + placeholders(len(f.ScheduleIDs)) + "))"
		for _, id := range f.ScheduleIDs {
			args = append(args, id)
		}
	}
	where += ")"

	rows, err := r.q.QueryContext(ctx, `
		SELECT m.id, m.sender_id, COALESCE(u.full_name, ''), m.content, m.image_url, m.sent_at,
		       m.scope, m.target_schedule_id, m.recipient_id
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		WHERE `+where+`
		ORDER BY m.sent_at DESC, m.id DESC`, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Message{}
	for rows.Next() {
		var (
			m                 model.Message
			image             sql.NullString
			target, recipient sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.Content, &image, &m.SentAt,
			&m.Scope, &target, &recipient); err != nil {
			return nil, translate(err)
		}
		m.ImageURL = stringPtr(image)
		m.TargetScheduleID = uint64Ptr(target)
		m.RecipientID = uint64Ptr(recipient)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepo) DeleteBySender(ctx context.Context, userID uint64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM messages WHERE sender_id=?", userID)
	return translate(err)
}

func (r *MessageRepo) DetachRecipient(ctx context.Context, userID uint64) error {
	_, err := r.q.ExecContext(ctx, "UPDATE messages SET recipient_id=NULL WHERE recipient_id=?", userID)
	return translate(err)
}
