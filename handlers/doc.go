// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the PollBooth API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll lifecycle (create, search, update, delete)
  - VotingHandler: Vote casting and changing
  - ResultsHandler: Poll info, live tallies, and analytics
  - OpsHandler: Operator endpoints for rate limits and the audit trail

Handlers are created via constructor functions that accept their
dependencies explicitly:

	pollHandler := handlers.NewPollHandler(db, cfg, auditLog)

# Poll Lifecycle

A poll is complete at creation: the question and all options arrive in
one request, and the response carries everything the creator needs.

	POST   /polls      → CreatePoll (returns admin_key, share_slug, share_url)
	GET    /polls      → ListPolls (?q= substring search)
	PUT    /polls/{id} → UpdatePoll
	DELETE /polls/{id} → DeletePoll

Admin operations require the X-Admin-Key header. The key is never
stored; it is recomputed from the poll ID and checked in constant time.

# Voting Flow

Voters interact via the share slug:

	GET  /polls/{slug}           → GetPoll
	POST /polls/{slug}/votes     → CastVote (create or change)
	GET  /polls/{slug}/results   → GetResults
	GET  /polls/{slug}/analytics → GetAnalytics

A voter presenting an X-Voter-Token header is keyed by that token;
anonymous voters are keyed by a salted hash of their IP and receive a
minted token in the response for changing their vote later. One key,
one vote: casting again replaces the earlier choice.

# Operator Endpoints

Rate limiter introspection and the audit trail live under /ops and
require the X-Ops-Key header:

	GET  /ops/ratelimit/stats            → GetRateLimitStats
	GET  /ops/ratelimit/{policy}/stats   → GetPolicyStats
	GET  /ops/ratelimit/{policy}/status  → GetPolicyStatus (?key=)
	POST /ops/ratelimit/{policy}/reset   → ResetPolicyKey
	GET  /ops/audit                      → ListAuditEntries (?limit=&offset=)

Failed ops key checks are themselves recorded on the audit trail.
*/
package handlers
