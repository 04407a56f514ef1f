// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit keeps the append-only trail of who did what.

# Recording

A single Logger is built at startup and handed to every component that
audits. Recording never returns an error: a failed write is logged via
slog and swallowed, so the audited operation cannot be failed by its
own paper trail.

	auditLog := audit.NewLogger(audit.NewSQLStore(database))
	auditLog.PollCreated(r, nil, pollID, map[string]any{"question": q})

Inside HTTP handlers prefer RecordWithRequest or the typed wrappers;
they derive the client IP (X-Forwarded-For, then X-Real-IP), user
agent, and X-Request-ID from the request. Absent values are stored as
NULL, never invented.

# Entries

An Entry names an Action from a closed set (poll.created, vote.cast,
rate_limit.exceeded, ...) and a TargetType (poll, vote, user, system,
admin). Free-form details travel in the Metadata map and are stored as
JSON text.

# Storage

SQLStore writes to the audit_log table using SQL both supported drivers
accept. The List method backs the operator endpoint (newest first,
paginated); DeleteBefore backs retention.

# Retention

A Sweeper purges entries older than the configured number of days,
scheduled daily:

	sweeper := audit.NewSweeper(store, cfg.AuditRetentionDays)
	if err := sweeper.Start(); err != nil { ... }
	defer sweeper.Stop()
*/
package audit
