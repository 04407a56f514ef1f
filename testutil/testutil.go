// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	pbdb "github.com/danielhkuo/pollbooth/db"
	_ "modernc.org/sqlite"
)

// SetupTestDB opens an in-memory SQLite database with the full schema.
// The pool is pinned to one connection; each sqlite :memory: connection
// is its own database, so a second connection would see empty tables.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := pbdb.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        ":memory:",
		DatabaseType:       "sqlite",
		BaseURL:            "http://localhost:3318",
		AdminKeySalt:       "test-admin-salt",
		PollSlugSalt:       "test-slug-salt",
		OpsKey:             "test-ops-key",
		AuditRetentionDays: 90,
	}
}

// CreateTestPoll creates a poll and returns its ID, admin key, and share slug
func CreateTestPoll(t *testing.T, db *sql.DB, cfg cliparse.Config, question string) (pollID, adminKey, shareSlug string) {
	t.Helper()

	pollID, _ = auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(pollID, cfg.AdminKeySalt)
	shareSlug = auth.GenerateShareSlug(pollID, cfg.PollSlugSalt)

	_, err := db.Exec(`
		INSERT INTO poll (id, question, creator_name, share_slug, created_at)
		VALUES ($1, $2, 'TestUser', $3, $4)
	`, pollID, question, shareSlug, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID, adminKey, shareSlug
}

// AddTestOption adds an option to a poll and returns the option ID
func AddTestOption(t *testing.T, db *sql.DB, pollID, label string) string {
	t.Helper()

	optionID, _ := auth.GenerateID(12)
	_, err := db.Exec(`
		INSERT INTO option (id, poll_id, label, position)
		VALUES ($1, $2, $3, (SELECT COUNT(*) FROM option WHERE poll_id = $2))
	`, optionID, pollID, label)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CastTestVote inserts a vote for the given voter key and returns the vote ID
func CastTestVote(t *testing.T, db *sql.DB, pollID, optionID, voterKey string) string {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO vote (id, poll_id, option_id, voter_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, pollID, optionID, voterKey, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// CountAuditEntries returns how many audit rows exist for an action
func CountAuditEntries(t *testing.T, db *sql.DB, action string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM audit_log WHERE action = $1`, action).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count audit entries: %v", err)
	}

	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
