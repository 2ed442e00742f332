package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/swim-club-backend/internal/config"
)

// ActivityLogName is the file the consumer appends to inside its log dir.
const ActivityLogName = "activity.log"

// StartActivityConsumer consumes cfg.Queue and appends one line per event to
// <cfg.LogDir>/activity.log. It reconnects with exponential backoff (capped
// at 30s) and returns only when ctx is cancelled. Messages that cannot be
// handled are rejected without requeue.
func StartActivityConsumer(ctx context.Context, cfg config.QueueConfig) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.QueueConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("activity-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(cfg.LogDir, d.Body); err != nil {
				log.Printf("activity-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(dir string, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, ActivityLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders one activity log line, terminated by a newline.
func formatLine(ev Event) string {
	head := fmt.Sprintf("[%s] %s | id=%s | actor_id=%d", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.ID, ev.ActorID)
	switch ev.Type {
	case TypeEnrollmentCreated:
		var p EnrollmentCreated
		if json.Unmarshal(ev.Payload, &p) == nil {
			return fmt.Sprintf("%s | enrollment_id=%d | member_id=%d | schedule_id=%d | start_date=%s\n",
				head, p.EnrollmentID, p.MemberID, p.ScheduleID, p.StartDate)
		}
	case TypeEnrollmentCancelled:
		var p EnrollmentCancelled
		if json.Unmarshal(ev.Payload, &p) == nil {
			return fmt.Sprintf("%s | enrollment_id=%d | member_id=%d | schedule_id=%d | end_date=%s\n",
				head, p.EnrollmentID, p.MemberID, p.ScheduleID, p.EndDate)
		}
	case TypeAttendanceSaved:
		var p AttendanceSaved
		if json.Unmarshal(ev.Payload, &p) == nil {
			return fmt.Sprintf("%s | schedule_id=%d | date=%s | saved=%d | present=%d\n",
				head, p.ScheduleID, p.Date, p.Saved, p.Present)
		}
	case TypePaymentRecorded:
		var p PaymentRecorded
		if json.Unmarshal(ev.Payload, &p) == nil {
			return fmt.Sprintf("%s | payment_id=%d | member_id=%d | amount=%.2f %s | period=%02d/%d\n",
				head, p.PaymentID, p.MemberID, p.Amount, p.Currency, p.Month, p.Year)
		}
	case TypeScheduleRequested:
		var p ScheduleRequested
		if json.Unmarshal(ev.Payload, &p) == nil {
			return fmt.Sprintf("%s | message=%q\n", head, p.Message)
		}
	}
	return fmt.Sprintf("%s | payload=%s\n", head, string(ev.Payload))
}
