// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// cleanupInterval is how often the background sweep evicts expired keys.
const cleanupInterval = 5 * time.Minute

// entryOverhead approximates the map slot plus counter cost per key,
// used for the footprint estimate in Stats.
const entryOverhead = 64

// entry is one key's counter in its current window.
type entry struct {
	count     int
	resetTime time.Time
}

// Limiter enforces a single Policy with an in-memory fixed window per key.
// A Limiter never fails; every request resolves to allow or deny.
type Limiter struct {
	policy Policy

	mu      sync.Mutex
	entries map[string]*entry

	// now is replaced in tests to drive window expiry.
	now func() time.Time
}

// New builds a limiter for the given policy. Zero Window and Max fall
// back to the general defaults, a nil KeyFunc to DefaultKey.
func New(policy Policy) *Limiter {
	if policy.Window <= 0 {
		policy.Window = General.Window
	}
	if policy.Max <= 0 {
		policy.Max = General.Max
	}
	if policy.Message == "" {
		policy.Message = DefaultMessage
	}
	if policy.KeyFunc == nil {
		policy.KeyFunc = DefaultKey
	}
	return &Limiter{
		policy:  policy,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Name returns the policy name the limiter enforces.
func (l *Limiter) Name() string {
	return l.policy.Name
}

// Max returns the per-window allowance.
func (l *Limiter) Max() int {
	return l.policy.Max
}

// Window returns the window length.
func (l *Limiter) Window() time.Duration {
	return l.policy.Window
}

// Result is the outcome of one Check call.
type Result struct {
	Allowed    bool
	Key        string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter int    // whole seconds until the window resets, set on deny
	Message    string // denial message, set on deny
}

// Headers returns the rate-limit headers for the response.
// X-RateLimit-Reset is absolute epoch milliseconds; Retry-After is only
// present on denials.
func (res Result) Headers() map[string]string {
	h := map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(res.Limit),
		"X-RateLimit-Remaining": strconv.Itoa(res.Remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(res.ResetTime.UnixMilli(), 10),
	}
	if !res.Allowed {
		h["Retry-After"] = strconv.Itoa(res.RetryAfter)
	}
	return h
}

// Check consumes one slot for the caller derived from r.
// The counter only advances on allowed requests: the first Max calls in
// a window pass, every later call is denied until the window rolls over.
func (l *Limiter) Check(r *http.Request) Result {
	key := l.policy.KeyFunc(r)
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetTime) {
		// First sighting, or the old window lapsed
		e = &entry{resetTime: now.Add(l.policy.Window)}
		l.entries[key] = e
	}

	if e.count >= l.policy.Max {
		res := Result{
			Key:        key,
			Limit:      l.policy.Max,
			ResetTime:  e.resetTime,
			RetryAfter: retryAfterSeconds(e.resetTime.Sub(now)),
			Message:    l.policy.Message,
		}
		l.mu.Unlock()

		if l.policy.OnLimitReached != nil {
			l.policy.OnLimitReached(r, key)
		}
		return res
	}

	e.count++
	res := Result{
		Allowed:   true,
		Key:       key,
		Limit:     l.policy.Max,
		Remaining: l.policy.Max - e.count,
		ResetTime: e.resetTime,
	}
	l.mu.Unlock()
	return res
}

// retryAfterSeconds rounds a wait up to whole seconds, minimum one.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Status describes one key's live window.
type Status struct {
	Key       string
	Count     int
	Remaining int
	ResetTime time.Time
	Limited   bool
}

// Status reports the current window for key without consuming a slot.
// Returns nil when the key has no live window: never seen, expired, or
// reset.
func (l *Limiter) Status(key string) *Status {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetTime) {
		return nil
	}
	return &Status{
		Key:       key,
		Count:     e.count,
		Remaining: l.policy.Max - e.count,
		ResetTime: e.resetTime,
		Limited:   e.count >= l.policy.Max,
	}
}

// Reset drops key's window and reports whether a live one existed.
// An expired entry is evicted but reported as absent.
func (l *Limiter) Reset(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false
	}
	delete(l.entries, key)
	return now.Before(e.resetTime)
}

// Stats summarizes limiter occupancy.
type Stats struct {
	Policy      string
	TotalKeys   int
	ActiveKeys  int
	MemoryBytes int64
}

// Stats counts tracked keys (total and not-yet-expired) and estimates
// the memory they hold. An idle limiter reports zeros.
func (l *Limiter) Stats() Stats {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{Policy: l.policy.Name, TotalKeys: len(l.entries)}
	for key, e := range l.entries {
		if now.Before(e.resetTime) {
			s.ActiveKeys++
		}
		s.MemoryBytes += int64(len(key)) + entryOverhead
	}
	return s
}

// StartCleanup sweeps expired entries every cleanupInterval until ctx is
// done. Run it on its own goroutine.
func (l *Limiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup evicts every entry whose window has passed.
func (l *Limiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if !now.Before(e.resetTime) {
			delete(l.entries, key)
		}
	}
}
