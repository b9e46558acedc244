package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/edgarhovh/auth-service/internal/queue"
)

// ActivityPublisher pushes audit events to the auth.activity queue so
// external consumers (alerting, SIEM export) can follow along without
// polling the database.  Publishing is strictly best-effort: every error
// is logged and returned, and callers ignore it — the database row is the
// authoritative record.  A nil publisher (no broker configured) is valid
// and drops events silently.
type ActivityPublisher struct {
	url string
}

// NewActivityPublisher returns a publisher for the given broker URL, or
// nil when the URL is empty.  The URL is injected here once at startup;
// nothing re-reads the environment later.
func NewActivityPublisher(url string) *ActivityPublisher {
	if url == "" {
		return nil
	}
	return &ActivityPublisher{url: url}
}

// Publish sends one event to the auth.activity queue.  The queue is
// declared durable on every publish so ordering against the consumer's
// startup does not matter.  Messages are marked persistent.
func (p *ActivityPublisher) Publish(ctx context.Context, event q.ActivityEvent) error {
	if p == nil {
		return nil
	}
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

	if _, err := ch.QueueDeclare(q.ActivityQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal failed: %v", err)
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(pubCtx, "", q.ActivityQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
	return err
}
