// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via
joho/godotenv); values already present in the environment win over the
file.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string or SQLite path (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - BaseURL: Public base URL used in share links (default: derived from port)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - PollSlugSalt: Secret for share slug generation (required)
  - OpsKey: Secret for the /ops endpoints (required)
  - RedisAddr: Redis address for analytics counters (optional; empty disables analytics)
  - RedisPassword, RedisDB: Redis credentials
  - AuditRetentionDays: Days of audit history to keep (default: 90; <= 0 disables the purge)

# CLI Flags

	-p                    Server port
	-d                    Database URL
	-t                    Database type
	-base-url             Public base URL
	-admin-salt           Admin key salt
	-slug-salt            Poll slug salt
	-ops-key              Operator endpoints key
	-redis-addr           Redis address
	-redis-password       Redis password
	-redis-db             Redis database number
	-audit-retention-days Audit retention window

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	BASE_URL             → -base-url
	ADMIN_KEY_SALT       → -admin-salt
	POLL_SLUG_SALT       → -slug-salt
	OPS_KEY              → -ops-key
	REDIS_ADDR           → -redis-addr
	REDIS_PASSWORD       → -redis-password
	REDIS_DB             → -redis-db
	AUDIT_RETENTION_DAYS → -audit-retention-days

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - POLL_SLUG_SALT must be provided
  - OPS_KEY must be provided

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg, limiters, auditLog, recorder)
*/
package cliparse
