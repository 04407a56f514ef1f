// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the PollBooth API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	limiters := router.NewLimiters(cfg, auditLog)
	mux := router.NewRouter(db, cfg, limiters, auditLog, recorder)

# Endpoints

Health:

	GET /health

Poll management (admin operations require X-Admin-Key):

	POST   /polls      - Create poll with options
	GET    /polls      - List polls, ?q= substring search
	PUT    /polls/{id} - Update the question
	DELETE /polls/{id} - Delete poll, options, and votes

Voting (public, uses share slug):

	POST /polls/{slug}/votes - Cast or change a vote

Results (public):

	GET /polls/{slug}           - Poll info and options
	GET /polls/{slug}/results   - Live tally
	GET /polls/{slug}/analytics - View/vote counters

Operator endpoints (require X-Ops-Key):

	GET  /ops/ratelimit/stats           - All policies
	GET  /ops/ratelimit/{policy}/stats  - One policy
	GET  /ops/ratelimit/{policy}/status - One key's window, ?key=
	POST /ops/ratelimit/{policy}/reset  - Drop one key's window
	GET  /ops/audit                     - Page the audit trail

# Rate Limiting

Every route except /health and / sits behind a named policy:

	POST /polls              → create_poll (10/hour)
	GET  /polls              → search (30/min)
	POST /polls/{slug}/votes → vote (5/min, keyed by voter identity)
	GET  /polls/{slug}/analytics → analytics (20/min)
	everything else          → general (100/15min)

NewLimiters builds the bundle; the auth policy is constructed with the
rest so operators can inspect it, but no current route uses it.

# Handler Initialization

The router creates handler instances with dependency injection:

	pollHandler := handlers.NewPollHandler(db, cfg, auditLog)
	votingHandler := handlers.NewVotingHandler(db, cfg, auditLog, recorder)
	resultsHandler := handlers.NewResultsHandler(db, cfg, recorder)
	opsHandler := handlers.NewOpsHandler(cfg, limiters, auditLog, auditStore)

Each routed handler is wrapped with request ID, logging, and rate limit
middleware, innermost to outermost.
*/
package router
