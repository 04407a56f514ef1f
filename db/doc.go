// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
indexes. The DDL runs unchanged on Postgres (lib/pq) and SQLite
(modernc.org/sqlite); timestamps are always written by the application.

# Tables

The schema includes:

  - poll: Poll question and share slug
  - option: Voting options per poll, in display order
  - vote: One vote per voter key per poll
  - audit_log: Append-only audit trail

# Relationships

	poll 1──* option
	poll 1──* vote
	option 1──* vote

All foreign keys use ON DELETE CASCADE. audit_log stands alone; audit
rows outlive the things they describe.

# Indexes

Performance indexes on:

  - poll.share_slug (unique)
  - poll.created_at
  - option.poll_id
  - vote.poll_id
  - vote.option_id
  - audit_log.created_at
  - audit_log.action
  - audit_log.(target_type, target_id)
*/
package db
