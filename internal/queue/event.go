// Package queue defines the activity event contract shared by the
// publisher and the background consumer, plus the consumer itself.
package queue

import "time"

// ActivityQueueName is the durable queue audit events are published to.
const ActivityQueueName = "auth.activity"

// ActivityEvent mirrors an activity_logs row on the wire.  The database
// insert is the authoritative record; queue delivery is best-effort
// fan-out for external consumers.
type ActivityEvent struct {
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	IP         string    `json:"ip,omitempty"`
	UA         string    `json:"ua,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
