// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned by reads when no redis address is configured.
var ErrDisabled = errors.New("analytics not configured")

// dayKeyTTL bounds per-day buckets; only today's bucket is ever read,
// yesterday's lingers for debugging.
const dayKeyTTL = 48 * time.Hour

// counterClient is the slice of the redis API the recorder uses.
type counterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Close() error
}

// Recorder keeps per-poll view and vote counters in redis: a running
// total plus a bucket per UTC day. Recording is best-effort; a nil
// Recorder (analytics not configured) records nothing.
type Recorder struct {
	client counterClient

	// now is replaced in tests.
	now func() time.Time
}

// Open connects a recorder. An empty addr means analytics is not
// configured and Open returns nil.
func Open(addr, password string, db int) *Recorder {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return New(client)
}

// New builds a recorder over an existing client.
func New(client redis.UniversalClient) *Recorder {
	return &Recorder{client: client, now: time.Now}
}

// Close releases the redis connection. Safe on a nil recorder.
func (rec *Recorder) Close() error {
	if rec == nil || rec.client == nil {
		return nil
	}
	return rec.client.Close()
}

// RecordView bumps the poll's view counters.
func (rec *Recorder) RecordView(ctx context.Context, pollID string) {
	rec.bump(ctx, pollID, "views")
}

// RecordVote bumps the poll's vote counters.
func (rec *Recorder) RecordVote(ctx context.Context, pollID string) {
	rec.bump(ctx, pollID, "votes")
}

// bump increments the running total and today's bucket. Failures are
// logged and dropped; counters must never fail the request that
// triggered them.
func (rec *Recorder) bump(ctx context.Context, pollID, kind string) {
	if rec == nil || rec.client == nil {
		return
	}

	total := totalKey(pollID, kind)
	if err := rec.client.Incr(ctx, total).Err(); err != nil {
		slog.Error("failed to bump analytics counter", "error", err, "key", total)
		return
	}

	day := dayKey(pollID, kind, rec.now())
	value, err := rec.client.Incr(ctx, day).Result()
	if err != nil {
		slog.Error("failed to bump analytics counter", "error", err, "key", day)
		return
	}
	if value == 1 {
		if err := rec.client.ExpireNX(ctx, day, dayKeyTTL).Err(); err != nil {
			slog.Error("failed to set analytics day key TTL", "error", err, "key", day)
		}
	}
}

// Snapshot is a poll's counters at read time.
type Snapshot struct {
	PollID     string
	TotalViews int64
	TotalVotes int64
	ViewsToday int64
	VotesToday int64
}

// Snapshot reads the poll's counters. Keys that were never bumped read
// as zero.
func (rec *Recorder) Snapshot(ctx context.Context, pollID string) (Snapshot, error) {
	if rec == nil || rec.client == nil {
		return Snapshot{}, ErrDisabled
	}

	now := rec.now()
	keys := []string{
		totalKey(pollID, "views"),
		totalKey(pollID, "votes"),
		dayKey(pollID, "views", now),
		dayKey(pollID, "votes", now),
	}

	values, err := rec.client.MGet(ctx, keys...).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read analytics counters: %w", err)
	}
	if len(values) != len(keys) {
		return Snapshot{}, fmt.Errorf("expected %d analytics counters, got %d", len(keys), len(values))
	}

	return Snapshot{
		PollID:     pollID,
		TotalViews: parseCount(values[0]),
		TotalVotes: parseCount(values[1]),
		ViewsToday: parseCount(values[2]),
		VotesToday: parseCount(values[3]),
	}, nil
}

// parseCount turns an MGET cell into a number. Missing keys arrive as
// nil and read as zero.
func parseCount(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func totalKey(pollID, kind string) string {
	return fmt.Sprintf("poll:%s:%s", pollID, kind)
}

func dayKey(pollID, kind string, t time.Time) string {
	return fmt.Sprintf("poll:%s:%s:%s", pollID, kind, t.UTC().Format("2006-01-02"))
}
