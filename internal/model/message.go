package model

import "time"

// Message scopes.
const (
	ScopeDirect        = "DIRECT"
	ScopeGroupSchedule = "GROUP_SCHEDULE"
	ScopeBroadcastAll  = "BROADCAST_ALL"
	ScopeInternalStaff = "INTERNAL_STAFF"
)

// Message is an in-app message. Who can see it depends on Scope.
type Message struct {
	ID               uint64    `json:"id"`
	SenderID         uint64    `json:"sender_id"`
	SenderName       string    `json:"sender_name"`
	Content          string    `json:"content"`
	ImageURL         *string   `json:"image_url"`
	SentAt           time.Time `json:"sent_at"`
	Scope            string    `json:"scope"`
	TargetScheduleID *uint64   `json:"target_schedule_id"`
	RecipientID      *uint64   `json:"recipient_id"`
}

// InboxFilter selects the messages visible to one user. Messages the user
// sent or received directly are always included.
type InboxFilter struct {
	UserID      uint64
	Scopes      []string // scopes visible regardless of sender or recipient
	ScheduleIDs []uint64 // GROUP_SCHEDULE targets visible in addition to Scopes
}
