// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Logger records audit entries without ever failing the caller.
// Construct one at startup and pass it to everything that audits.
type Logger struct {
	store Store

	// now is replaced in tests.
	now func() time.Time
}

// NewLogger builds a logger over the given store.
func NewLogger(store Store) *Logger {
	return &Logger{store: store, now: time.Now}
}

// Record persists the entry. Store failures are logged and swallowed:
// the operation being audited must never fail because of its paper
// trail. A nil logger drops entries silently.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if l == nil || l.store == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now().UTC()
	}
	if err := l.store.Record(ctx, e); err != nil {
		slog.Error("failed to record audit entry",
			"error", err,
			"action", e.Action,
			"target_type", e.TargetType,
		)
	}
}

// RecordWithRequest fills IPAddress, UserAgent, and RequestID from the
// request before recording. Values already set on the entry win.
func (l *Logger) RecordWithRequest(r *http.Request, e Entry) {
	if r == nil {
		l.Record(context.Background(), e)
		return
	}
	if e.IPAddress == nil {
		if ip := requestIP(r); ip != "" {
			e.IPAddress = &ip
		}
	}
	if e.UserAgent == nil {
		if ua := r.UserAgent(); ua != "" {
			e.UserAgent = &ua
		}
	}
	if e.RequestID == nil {
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			e.RequestID = &rid
		}
	}
	l.Record(r.Context(), e)
}

// requestIP extracts the forwarded client address, or "" when the
// request carries none. RemoteAddr is never consulted.
func requestIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	return r.Header.Get("X-Real-IP")
}

// PollCreated records a new poll. userID is nil for anonymous creators.
func (l *Logger) PollCreated(r *http.Request, userID *string, pollID string, metadata map[string]any) {
	l.RecordWithRequest(r, Entry{
		UserID:     userID,
		Action:     ActionPollCreated,
		TargetType: TargetPoll,
		TargetID:   &pollID,
		Metadata:   metadata,
	})
}

// PollUpdated records an edit to an existing poll.
func (l *Logger) PollUpdated(r *http.Request, userID *string, pollID string, metadata map[string]any) {
	l.RecordWithRequest(r, Entry{
		UserID:     userID,
		Action:     ActionPollUpdated,
		TargetType: TargetPoll,
		TargetID:   &pollID,
		Metadata:   metadata,
	})
}

// PollDeleted records a poll removal.
func (l *Logger) PollDeleted(r *http.Request, userID *string, pollID string, metadata map[string]any) {
	l.RecordWithRequest(r, Entry{
		UserID:     userID,
		Action:     ActionPollDeleted,
		TargetType: TargetPoll,
		TargetID:   &pollID,
		Metadata:   metadata,
	})
}

// VoteCast records a ballot. changed marks a voter replacing their
// earlier choice rather than voting for the first time.
func (l *Logger) VoteCast(r *http.Request, pollID, voteID string, changed bool) {
	action := ActionVoteCast
	if changed {
		action = ActionVoteChanged
	}
	l.RecordWithRequest(r, Entry{
		Action:     action,
		TargetType: TargetVote,
		TargetID:   &voteID,
		Metadata:   map[string]any{"poll_id": pollID},
	})
}

// RateLimitExceeded records a denied request.
func (l *Logger) RateLimitExceeded(r *http.Request, endpoint string, limit int) {
	l.RecordWithRequest(r, Entry{
		Action:     ActionRateLimitExceeded,
		TargetType: TargetSystem,
		Metadata:   map[string]any{"endpoint": endpoint, "limit": limit},
	})
}

// SuspiciousActivity records behavior worth a second look.
func (l *Logger) SuspiciousActivity(r *http.Request, reason string, metadata map[string]any) {
	md := map[string]any{"reason": reason}
	for k, v := range metadata {
		md[k] = v
	}
	l.RecordWithRequest(r, Entry{
		Action:     ActionSuspiciousActivity,
		TargetType: TargetSystem,
		Metadata:   md,
	})
}

// SecurityViolation records a rejected credential or forbidden access.
func (l *Logger) SecurityViolation(r *http.Request, violation string, metadata map[string]any) {
	md := map[string]any{"violation": violation}
	for k, v := range metadata {
		md[k] = v
	}
	l.RecordWithRequest(r, Entry{
		Action:     ActionSecurityViolation,
		TargetType: TargetSystem,
		Metadata:   md,
	})
}

// Login records a successful sign-in.
func (l *Logger) Login(r *http.Request, userID string) {
	l.RecordWithRequest(r, Entry{
		UserID:     &userID,
		Action:     ActionUserLogin,
		TargetType: TargetUser,
		TargetID:   &userID,
	})
}

// Logout records a sign-out.
func (l *Logger) Logout(r *http.Request, userID string) {
	l.RecordWithRequest(r, Entry{
		UserID:     &userID,
		Action:     ActionUserLogout,
		TargetType: TargetUser,
		TargetID:   &userID,
	})
}

// AdminAction records an operator intervention.
func (l *Logger) AdminAction(r *http.Request, action string, metadata map[string]any) {
	md := map[string]any{"action": action}
	for k, v := range metadata {
		md[k] = v
	}
	l.RecordWithRequest(r, Entry{
		Action:     ActionAdminAction,
		TargetType: TargetAdmin,
		Metadata:   md,
	})
}
