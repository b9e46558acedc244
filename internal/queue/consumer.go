package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartActivityConsumer connects to RabbitMQ, declares the auth.activity
// queue (durable) and starts consuming.  Each event is appended to
// logs/activity.log in a single-line, human-friendly format.  The function
// runs a reconnect loop with capped backoff and never returns under normal
// operation; malformed messages are rejected without requeue so a poison
// message cannot wedge the queue.
func StartActivityConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.Consume(ActivityQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		var event ActivityEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Printf("activity-consumer: bad message: %v", err)
			_ = d.Reject(false)
			continue
		}
		if err := appendActivityLine(event); err != nil {
			log.Printf("activity-consumer: write failed: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func appendActivityLine(event ActivityEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "activity.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	user := event.UserID
	if user == "" {
		user = "-"
	}
	line := fmt.Sprintf("%s action=%s user=%s ip=%s ua=%q\n",
		event.OccurredAt.UTC().Format(time.RFC3339), event.Action, user, event.IP, event.UA)
	_, err = f.WriteString(line)
	return err
}
