// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the PollBooth API server.

PollBooth is a single-choice polling service: a creator publishes a
question with options in one request, shares an opaque slug, and voters
pick one option each. Everything abuse-facing is first class: named
rate limit policies on every route, a persistent audit trail, and
per-poll analytics counters.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): Postgres connection string or SQLite path
  - DATABASE_TYPE (-t): "postgres" or "sqlite"
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - POLL_SLUG_SALT (--slug-salt): Secret for share slug generation
  - OPS_KEY (--ops-key): Key for the /ops endpoints

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - BASE_URL (--base-url): Public URL used in share links
  - REDIS_ADDR (--redis-addr): Enables analytics counters
  - AUDIT_RETENTION_DAYS (--audit-retention-days): Daily purge window

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, results, ops)
  - router: Route definitions and rate limit policy wiring
  - middleware: CORS, logging, request IDs, rate limit enforcement
  - ratelimit: Fixed-window limiter and the published policies
  - audit: Audit trail writes, listing, and retention
  - analytics: Redis-backed view/vote counters
  - models: Request/response types
  - auth: Token generation and validation
  - db: Schema creation
  - cliparse: Configuration parsing
  - testutil: Shared test fixtures

See package documentation for each component.
*/
package main
