// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"time"
)

// Action identifies what happened. The set is closed; dashboards and
// the action index depend on these exact values.
type Action string

const (
	ActionPollCreated        Action = "poll.created"
	ActionPollUpdated        Action = "poll.updated"
	ActionPollDeleted        Action = "poll.deleted"
	ActionVoteCast           Action = "vote.cast"
	ActionVoteChanged        Action = "vote.changed"
	ActionUserLogin          Action = "user.login"
	ActionUserLogout         Action = "user.logout"
	ActionRateLimitExceeded  Action = "rate_limit.exceeded"
	ActionSuspiciousActivity Action = "suspicious.activity"
	ActionSecurityViolation  Action = "security.violation"
	ActionAdminAction        Action = "admin.action"
)

// TargetType classifies what an entry is about.
type TargetType string

const (
	TargetPoll   TargetType = "poll"
	TargetVote   TargetType = "vote"
	TargetUser   TargetType = "user"
	TargetSystem TargetType = "system"
	TargetAdmin  TargetType = "admin"
)

// Entry is one audit record. Only Action and TargetType are required;
// absent optional fields are stored as NULL.
type Entry struct {
	ID         string
	UserID     *string
	Action     Action
	TargetType TargetType
	TargetID   *string
	IPAddress  *string
	UserAgent  *string
	RequestID  *string
	Metadata   map[string]any
	CreatedAt  time.Time
}
