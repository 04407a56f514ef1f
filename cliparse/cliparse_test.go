// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
)

func setRequiredEnv() {
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("ADMIN_KEY_SALT", "test-salt")
	os.Setenv("POLL_SLUG_SALT", "test-slug")
	os.Setenv("OPS_KEY", "test-ops")
}

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("expected base URL derived from port, got %s", cfg.BaseURL)
	}
	if cfg.AuditRetentionDays != 90 {
		t.Errorf("expected default audit retention 90, got %d", cfg.AuditRetentionDays)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected analytics disabled by default, got %s", cfg.RedisAddr)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-slug-salt", "s2", "-ops-key", "s3"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.OpsKey != "s3" {
		t.Errorf("CLI should override env: expected s3, got %s", cfg.OpsKey)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	testCases := []struct {
		name string
		omit string
	}{
		{"missing database URL", "DATABASE_URL"},
		{"missing admin key salt", "ADMIN_KEY_SALT"},
		{"missing poll slug salt", "POLL_SLUG_SALT"},
		{"missing ops key", "OPS_KEY"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			setRequiredEnv()
			os.Unsetenv(tc.omit)
			defer os.Clearenv()

			if _, err := ParseFlags([]string{}); err == nil {
				t.Errorf("expected error when %s is missing", tc.omit)
			}
		})
	}
}

func TestParseFlags_RedisSettings(t *testing.T) {
	setRequiredEnv()
	os.Setenv("REDIS_ADDR", "localhost:6379")
	os.Setenv("REDIS_PASSWORD", "hunter2")
	os.Setenv("REDIS_DB", "3")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %s", cfg.RedisAddr)
	}
	if cfg.RedisPassword != "hunter2" {
		t.Errorf("expected redis password from env, got %s", cfg.RedisPassword)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
}

func TestParseFlags_InvalidRedisDB(t *testing.T) {
	setRequiredEnv()
	os.Setenv("REDIS_DB", "not-a-number")
	defer os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error for invalid REDIS_DB")
	}
}

func TestParseFlags_AuditRetention(t *testing.T) {
	t.Run("env value", func(t *testing.T) {
		setRequiredEnv()
		os.Setenv("AUDIT_RETENTION_DAYS", "30")
		defer os.Clearenv()

		cfg, err := ParseFlags([]string{})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.AuditRetentionDays != 30 {
			t.Errorf("expected retention 30, got %d", cfg.AuditRetentionDays)
		}
	})

	t.Run("flag overrides env", func(t *testing.T) {
		setRequiredEnv()
		os.Setenv("AUDIT_RETENTION_DAYS", "30")
		defer os.Clearenv()

		cfg, err := ParseFlags([]string{"-audit-retention-days", "7"})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.AuditRetentionDays != 7 {
			t.Errorf("expected retention 7, got %d", cfg.AuditRetentionDays)
		}
	})

	t.Run("invalid env value", func(t *testing.T) {
		setRequiredEnv()
		os.Setenv("AUDIT_RETENTION_DAYS", "ninety")
		defer os.Clearenv()

		if _, err := ParseFlags([]string{}); err == nil {
			t.Error("expected error for invalid AUDIT_RETENTION_DAYS")
		}
	})
}
