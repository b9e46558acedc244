package service

import (
	"context"
	"time"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/repository"
)

// AnalyticsSummary aggregates account and activity counters over a window.
type AnalyticsSummary struct {
	WindowDays     int `json:"window_days"`
	TotalUsers     int `json:"total_users"`
	NewUsers       int `json:"new_users"`
	ActiveUsers    int `json:"active_users"`
	Logins         int `json:"logins"`
	FailedLogins   int `json:"failed_logins"`
	Registrations  int `json:"registrations"`
	PasswordResets int `json:"password_resets"`

	TopActions []ActionCount `json:"top_actions"`
}

// ActionCount is one row of the action frequency breakdown.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// TimelinePoint is one day of the activity timeline.
type TimelinePoint struct {
	Date         string `json:"date"`
	TotalEvents  int    `json:"total_events"`
	LoginSuccess int    `json:"login_success"`
	LoginFailure int    `json:"login_failure"`
}

// AnalyticsService answers the reporting queries over activity_logs.  It
// reads the repository directly; aggregates do not go through the narrow
// store interfaces since nothing else consumes them.
type AnalyticsService struct {
	activity *repository.ActivityRepo
}

func NewAnalyticsService(activity *repository.ActivityRepo) *AnalyticsService {
	return &AnalyticsService{activity: activity}
}

// Summary computes the counters over the trailing window.  Windows are
// clamped to 1..365 days, defaulting to 7.
func (s *AnalyticsService) Summary(ctx context.Context, windowDays int) (AnalyticsSummary, error) {
	windowDays = clampWindow(windowDays)
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	out := AnalyticsSummary{WindowDays: windowDays}
	var err error
	if out.TotalUsers, err = s.activity.CountUsers(ctx); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	if out.NewUsers, err = s.activity.CountUsersSince(ctx, since); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	if out.ActiveUsers, err = s.activity.CountActiveUsersSince(ctx, since); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	if out.Logins, err = s.activity.CountActionsSince(ctx, model.ActionLoginSuccess, since); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	if out.FailedLogins, err = s.activity.CountActionsSince(ctx, model.ActionLoginFailure, since); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	if out.Registrations, err = s.activity.CountActionsSince(ctx, model.ActionRegister, since); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	if out.PasswordResets, err = s.activity.CountActionsSince(ctx, model.ActionRecoverySuccess, since); err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	top, err := s.activity.TopActions(ctx, since, 10)
	if err != nil {
		return AnalyticsSummary{}, wrapAnalytics(err)
	}
	out.TopActions = make([]ActionCount, 0, len(top))
	for _, a := range top {
		out.TopActions = append(out.TopActions, ActionCount{Action: a.Action, Count: a.Count})
	}
	return out, nil
}

// Timeline returns per-day event counts over the trailing window, oldest
// day first.
func (s *AnalyticsService) Timeline(ctx context.Context, windowDays int) ([]TimelinePoint, error) {
	windowDays = clampWindow(windowDays)
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	buckets, err := s.activity.Timeline(ctx, since)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	out := make([]TimelinePoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, TimelinePoint{
			Date:         b.Date.Format("2006-01-02"),
			TotalEvents:  b.TotalEvents,
			LoginSuccess: b.LoginSuccess,
			LoginFailure: b.LoginFailure,
		})
	}
	return out, nil
}

// ActivityEntry is one row of a user's own audit trail.
type ActivityEntry struct {
	Action    string    `json:"action"`
	IP        string    `json:"ip,omitempty"`
	UA        string    `json:"ua,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentActivity returns a user's latest audit entries, newest first.
// Limit is clamped to 1..100, defaulting to 20.
func (s *AnalyticsService) RecentActivity(ctx context.Context, userID string, limit int) ([]ActivityEntry, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	entries, err := s.activity.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	out := make([]ActivityEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityEntry{Action: e.Action, IP: e.IP, UA: e.UA, CreatedAt: e.CreatedAt})
	}
	return out, nil
}

func clampWindow(days int) int {
	switch {
	case days <= 0:
		return 7
	case days > 365:
		return 365
	default:
		return days
	}
}

func wrapAnalytics(err error) error {
	return apperr.Wrap(apperr.KindServer, "ANALYTICS_QUERY_FAILED", "could not compute analytics", err)
}
