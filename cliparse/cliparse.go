package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	DatabaseURL        string
	DatabaseType       string
	BaseURL            string
	AdminKeySalt       string
	PollSlugSalt       string
	OpsKey             string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	AuditRetentionDays int
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	// Load .env if present; the real environment always wins
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("pollbooth", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in share links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.PollSlugSalt, "slug-salt", "", "Poll slug salt (prefer env)")
	fs.StringVar(&cfg.OpsKey, "ops-key", "", "Operator endpoints key (prefer env)")

	// Analytics (optional; empty addr disables analytics)
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for analytics counters")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password (prefer env)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database number")

	// Audit trail
	fs.IntVar(&cfg.AuditRetentionDays, "audit-retention-days", 0, "Days of audit history to keep (-1 disables the purge)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.PollSlugSalt == "" {
		cfg.PollSlugSalt = os.Getenv("POLL_SLUG_SALT")
	}
	if cfg.PollSlugSalt == "" {
		return Config{}, errors.New("POLL_SLUG_SALT required")
	}

	if cfg.OpsKey == "" {
		cfg.OpsKey = os.Getenv("OPS_KEY")
	}
	if cfg.OpsKey == "" {
		return Config{}, errors.New("OPS_KEY required")
	}

	// Analytics (optional)
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	}
	if cfg.RedisDB == 0 {
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			redisDB, err := strconv.Atoi(dbStr)
			if err != nil {
				return Config{}, errors.New("invalid REDIS_DB env variable")
			}
			cfg.RedisDB = redisDB
		}
	}

	if cfg.AuditRetentionDays == 0 {
		if daysStr := os.Getenv("AUDIT_RETENTION_DAYS"); daysStr != "" {
			days, err := strconv.Atoi(daysStr)
			if err != nil {
				return Config{}, errors.New("invalid AUDIT_RETENTION_DAYS env variable")
			}
			cfg.AuditRetentionDays = days
		} else {
			cfg.AuditRetentionDays = 90 // default
		}
	}

	return cfg, nil
}
