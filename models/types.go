package models

import "time"

// Request types

type CreatePollRequest struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	CreatorName string   `json:"creator_name"`
}

type UpdatePollRequest struct {
	Question string `json:"question"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

type ResetRateLimitRequest struct {
	Key string `json:"key"`
}

// Response types

type CreatePollResponse struct {
	PollID    string `json:"poll_id"`
	AdminKey  string `json:"admin_key"`
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type CastVoteResponse struct {
	VoteID     string `json:"vote_id"`
	VoterToken string `json:"voter_token"`
	Changed    bool   `json:"changed"`
	Message    string `json:"message"`
}

// RateLimitedResponse is the 429 body. The retryAfter casing is the
// published contract; clients already parse it.
type RateLimitedResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type RateLimitStatusResponse struct {
	Policy    string `json:"policy"`
	Key       string `json:"key"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime int64  `json:"reset_time"` // epoch milliseconds
}

type PolicyStats struct {
	Policy      string `json:"policy"`
	Limit       int    `json:"limit"`
	Window      string `json:"window"`
	TotalKeys   int    `json:"total_keys"`
	ActiveKeys  int    `json:"active_keys"`
	MemoryBytes int64  `json:"memory_bytes"`
	Memory      string `json:"memory"`
}

type RateLimitStatsResponse struct {
	Policies []PolicyStats `json:"policies"`
}

type ResetRateLimitResponse struct {
	Policy  string `json:"policy"`
	Key     string `json:"key"`
	Existed bool   `json:"existed"`
}

type AuditEntryResponse struct {
	ID         string         `json:"id"`
	UserID     *string        `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   *string        `json:"target_id,omitempty"`
	IPAddress  *string        `json:"ip_address,omitempty"`
	UserAgent  *string        `json:"user_agent,omitempty"`
	RequestID  *string        `json:"request_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type AuditListResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

type AnalyticsResponse struct {
	PollID     string `json:"poll_id"`
	TotalViews int64  `json:"total_views"`
	TotalVotes int64  `json:"total_votes"`
	ViewsToday int64  `json:"views_today"`
	VotesToday int64  `json:"votes_today"`
}

// Domain types

type Poll struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	CreatorName string    `json:"creator_name"`
	ShareSlug   string    `json:"share_slug"`
	CreatedAt   time.Time `json:"created_at"`
}

type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

type PollSummary struct {
	Question    string    `json:"question"`
	CreatorName string    `json:"creator_name"`
	ShareSlug   string    `json:"share_slug"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	VoterKey  string    `json:"-"` // Never expose in JSON
	IPHash    *string   `json:"-"` // Never expose in JSON
	UserAgent *string   `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result types

type OptionResult struct {
	OptionID string  `json:"option_id"`
	Label    string  `json:"label"`
	Position int     `json:"position"`
	Votes    int     `json:"votes"`
	Share    float64 `json:"share"`
}

type PollResults struct {
	Question   string         `json:"question"`
	ShareSlug  string         `json:"share_slug"`
	TotalVotes int            `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
