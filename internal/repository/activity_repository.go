package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/edgarhovh/auth-service/internal/model"
)

// ActivityRepo appends audit entries and answers the analytics queries
// built over them.  Rows are append-only; there is no update or delete.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Insert appends one audit entry.
func (r *ActivityRepo) Insert(ctx context.Context, e model.ActivityLog) error {
	var userID, metadata any
	if e.UserID != "" {
		userID = e.UserID
	}
	if e.Metadata != "" {
		metadata = e.Metadata
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO activity_logs (user_id, action, ip, ua, metadata) VALUES (?,?,?,?,?)",
		userID, e.Action, e.IP, e.UA, metadata)
	return err
}

// ListForUser returns a user's most recent audit entries, newest first.
func (r *ActivityRepo) ListForUser(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, COALESCE(user_id,''), action, COALESCE(ip,''), COALESCE(ua,''), COALESCE(metadata,''), created_at
		 FROM activity_logs WHERE user_id=? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ActivityLog
	for rows.Next() {
		var e model.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.IP, &e.UA, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountUsers returns the total number of user rows.
func (r *ActivityRepo) CountUsers(ctx context.Context) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM users")
}

// CountUsersSince returns how many users registered after the cutoff.
func (r *ActivityRepo) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM users WHERE created_at >= ?", since)
}

// CountActiveUsersSince returns how many distinct users produced activity
// after the cutoff.
func (r *ActivityRepo) CountActiveUsersSince(ctx context.Context, since time.Time) (int, error) {
	return r.countRow(ctx,
		"SELECT COUNT(DISTINCT user_id) FROM activity_logs WHERE user_id IS NOT NULL AND created_at >= ?", since)
}

// CountActionsSince returns how many entries with the given action were
// recorded after the cutoff.
func (r *ActivityRepo) CountActionsSince(ctx context.Context, action string, since time.Time) (int, error) {
	return r.countRow(ctx,
		"SELECT COUNT(*) FROM activity_logs WHERE action=? AND created_at >= ?", action, since)
}

// TimelineBucket is one day of the activity timeline.
type TimelineBucket struct {
	Date         time.Time
	TotalEvents  int
	LoginSuccess int
	LoginFailure int
}

// Timeline groups activity per day since the cutoff, oldest first.
func (r *ActivityRepo) Timeline(ctx context.Context, since time.Time) ([]TimelineBucket, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE(created_at) AS bucket,
		        COUNT(*),
		        SUM(CASE WHEN action=? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN action=? THEN 1 ELSE 0 END)
		 FROM activity_logs
		 WHERE created_at >= ?
		 GROUP BY bucket
		 ORDER BY bucket ASC`,
		model.ActionLoginSuccess, model.ActionLoginFailure, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TimelineBucket
	for rows.Next() {
		var b TimelineBucket
		if err := rows.Scan(&b.Date, &b.TotalEvents, &b.LoginSuccess, &b.LoginFailure); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ActionCount is one row of the top-actions breakdown.
type ActionCount struct {
	Action string
	Count  int
}

// TopActions returns the most frequent actions since the cutoff.
func (r *ActivityRepo) TopActions(ctx context.Context, since time.Time, limit int) ([]ActionCount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT action, COUNT(*) AS cnt FROM activity_logs
		 WHERE created_at >= ? GROUP BY action ORDER BY cnt DESC LIMIT ?`,
		since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActionCount
	for rows.Next() {
		var a ActionCount
		if err := rows.Scan(&a.Action, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ActivityRepo) countRow(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
