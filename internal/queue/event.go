// Package queue carries domain events over RabbitMQ: the envelope and
// payload types, a publisher used by the services and a consumer that
// appends every event to an activity log.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeEnrollmentCreated   = "enrollment.created"
	TypeEnrollmentCancelled = "enrollment.cancelled"
	TypeAttendanceSaved     = "attendance.saved"
	TypePaymentRecorded     = "payment.recorded"
	TypeScheduleRequested   = "schedule.requested"
)

// Event is the envelope every message on the queue uses.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	ActorID    uint64          `json:"actor_id"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent wraps payload in an envelope with a fresh id.
func NewEvent(typ string, actorID uint64, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload:    body,
	}, nil
}

// EnrollmentCreated is the payload of enrollment.created.
type EnrollmentCreated struct {
	EnrollmentID uint64 `json:"enrollment_id"`
	MemberID     uint64 `json:"member_id"`
	ScheduleID   uint64 `json:"schedule_id"`
	StartDate    string `json:"start_date"`
}

// EnrollmentCancelled is the payload of enrollment.cancelled.
type EnrollmentCancelled struct {
	EnrollmentID uint64 `json:"enrollment_id"`
	MemberID     uint64 `json:"member_id"`
	ScheduleID   uint64 `json:"schedule_id"`
	EndDate      string `json:"end_date"`
}

// AttendanceSaved is the payload of attendance.saved.
type AttendanceSaved struct {
	ScheduleID uint64 `json:"schedule_id"`
	Date       string `json:"date"`
	Saved      int    `json:"saved"`
	Present    int    `json:"present"`
}

// PaymentRecorded is the payload of payment.recorded.
type PaymentRecorded struct {
	PaymentID uint64  `json:"payment_id"`
	MemberID  uint64  `json:"member_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
}

// ScheduleRequested is the payload of schedule.requested.
type ScheduleRequested struct {
	UserID  uint64 `json:"user_id"`
	Message string `json:"message"`
}
