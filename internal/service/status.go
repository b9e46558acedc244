package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// ComponentStatus reports one dependency probe.
type ComponentStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// StatusReport is the aggregate health summary.  Degraded means the
// service is up but at least one dependency probe failed.
type StatusReport struct {
	Status     string            `json:"status"` // "ok" or "degraded"
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components"`
}

// StatusService probes the database and, when configured, Redis.  A nil
// Redis client is reported as a disabled component, not a failure, since
// the rate limiter runs fail-open without it.
type StatusService struct {
	db        *sql.DB
	redis     *redis.Client
	startedAt time.Time
}

func NewStatusService(db *sql.DB, rdb *redis.Client) *StatusService {
	return &StatusService{db: db, redis: rdb, startedAt: time.Now()}
}

// Report pings each dependency with a short deadline and aggregates.
func (s *StatusService) Report(ctx context.Context) StatusReport {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	report := StatusReport{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	}

	dbStatus := ComponentStatus{Name: "mysql", Healthy: true}
	if err := s.db.PingContext(probeCtx); err != nil {
		dbStatus.Healthy = false
		dbStatus.Detail = err.Error()
		report.Status = "degraded"
	}
	report.Components = append(report.Components, dbStatus)

	redisStatus := ComponentStatus{Name: "redis", Healthy: true}
	if s.redis == nil {
		redisStatus.Healthy = false
		redisStatus.Detail = "not configured; rate limiting disabled"
	} else if err := s.redis.Ping(probeCtx).Err(); err != nil {
		redisStatus.Healthy = false
		redisStatus.Detail = err.Error()
		report.Status = "degraded"
	}
	report.Components = append(report.Components, redisStatus)

	return report
}
