// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: question, options, creator_name
  - UpdatePollRequest: question
  - CastVoteRequest: option_id
  - ResetRateLimitRequest: key

# Response Types

Types for JSON responses:

  - CreatePollResponse: poll_id, admin_key, share_slug, share_url
  - CastVoteResponse: vote_id, voter_token, changed, message
  - RateLimitedResponse: success, message, retryAfter (429 body)
  - RateLimitStatusResponse: per-key window state
  - RateLimitStatsResponse: per-policy key counts and memory
  - ResetRateLimitResponse: policy, key, existed
  - AuditEntryResponse / AuditListResponse: audit trail pages
  - AnalyticsResponse: view and vote counters
  - ErrorResponse: error, message

RateLimitedResponse is the one place the JSON casing breaks with the
rest of the API: retryAfter is camelCase because deployed clients
already parse it that way.

# Domain Types

Internal data structures:

  - Poll: poll metadata
  - Option: voting option with label and display position
  - PollSummary: search result row
  - Vote: one voter's current choice (voter key and IP hash never
    serialize)
  - OptionResult / PollResults: live tally
*/
package models
