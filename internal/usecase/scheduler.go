package usecase

import (
	"context"
	"log/slog"
	"time"

	"LookupBot/internal/ports"
)

// Janitor periodically drops idle assistant sessions.
type Janitor struct {
	driver   ports.Scheduler
	sessions ports.SessionStore
	logger   *slog.Logger
}

// NewJanitor returns a helper to start/stop the session sweep.
func NewJanitor(driver ports.Scheduler, sessions ports.SessionStore, logger *slog.Logger) *Janitor {
	return &Janitor{driver: driver, sessions: sessions, logger: logger}
}

// Start registers the sweep with the provided scheduler.
func (j *Janitor) Start(ctx context.Context) error {
	if j.driver == nil || j.sessions == nil {
		return nil
	}

	return j.driver.Start(ctx, j.sweep)
}

// Stop gracefully tears down the underlying scheduler.
func (j *Janitor) Stop(ctx context.Context) error {
	if j.driver == nil {
		return nil
	}

	return j.driver.Stop(ctx)
}

func (j *Janitor) sweep(now time.Time) {
	if n := j.sessions.EvictExpired(now); n > 0 && j.logger != nil {
		j.logger.Debug("evicted idle sessions", "count", n)
	}
}
