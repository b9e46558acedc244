package service

import (
	"context"
	"log"
	"time"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	q "github.com/edgarhovh/auth-service/internal/queue"
)

// ActivityRecorder writes audit entries to the append-only store and fans
// them out to the activity queue.  The store insert is authoritative and
// its failure propagates; the queue publish never does.
type ActivityRecorder struct {
	store     ActivityStore
	publisher *ActivityPublisher
}

func NewActivityRecorder(store ActivityStore, publisher *ActivityPublisher) *ActivityRecorder {
	return &ActivityRecorder{store: store, publisher: publisher}
}

// Record appends one audit entry.  UserID may be empty for events without
// an attributable account.
func (r *ActivityRecorder) Record(ctx context.Context, userID, action string, client ClientContext) error {
	entry := model.ActivityLog{
		UserID: userID,
		Action: action,
		IP:     client.IP,
		UA:     client.UA,
	}
	if err := r.store.Insert(ctx, entry); err != nil {
		return apperr.Wrap(apperr.KindServer, "AUDIT_WRITE_FAILED", "could not record activity", err)
	}
	if err := r.publisher.Publish(ctx, q.ActivityEvent{
		UserID:     userID,
		Action:     action,
		IP:         client.IP,
		UA:         client.UA,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		// Best-effort fan-out; the DB row above is the source of truth.
		log.Printf("activity: publish failed for %s: %v", action, err)
	}
	return nil
}
