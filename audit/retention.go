// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// sweepTimeout bounds one retention purge.
const sweepTimeout = time.Minute

// Sweeper deletes entries older than the retention window on a daily
// schedule.
type Sweeper struct {
	store Store
	days  int
	cron  *cron.Cron

	// now is replaced in tests.
	now func() time.Time
}

// NewSweeper builds a sweeper that keeps the last `days` days of audit
// history. days <= 0 disables retention entirely.
func NewSweeper(store Store, days int) *Sweeper {
	return &Sweeper{store: store, days: days, now: time.Now}
}

// Start schedules the daily purge. Calling Start on a disabled sweeper
// is a no-op.
func (s *Sweeper) Start() error {
	if s.days <= 0 {
		slog.Info("audit retention disabled")
		return nil
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@daily", s.sweep); err != nil {
		return fmt.Errorf("failed to schedule audit retention: %w", err)
	}
	s.cron.Start()
	slog.Info("audit retention scheduled", "days", s.days)
	return nil
}

// Stop halts the schedule. A purge already in flight finishes.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Sweeper) sweep() {
	cutoff := s.now().UTC().AddDate(0, 0, -s.days)

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := s.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		slog.Error("audit retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("audit retention sweep completed", "deleted", deleted, "cutoff", cutoff)
	}
}
