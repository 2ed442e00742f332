package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/swim-club-backend/internal/config"
)

// Publisher sends events to a durable queue. Each Publish opens its own
// connection, so a broker outage only affects the calls made during it.
type Publisher struct {
	url   string
	queue string
}

// NewPublisher returns nil when publishing is disabled; callers treat a nil
// publisher as "drop events".
func NewPublisher(cfg config.QueueConfig) *Publisher {
	if !cfg.PublishEnabled {
		return nil
	}
	return &Publisher{url: cfg.URL, queue: cfg.Queue}
}

// Publish marshals ev and publishes it as a persistent message. Errors are
// logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
