// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/testutil"
)

func TestCreatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	auditLog := audit.NewLogger(audit.NewSQLStore(db))
	handler := NewPollHandler(db, cfg, auditLog)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreatePollResponse)
	}{
		{
			name: "valid poll creation",
			requestBody: models.CreatePollRequest{
				Question:    "Where should we get lunch?",
				Options:     []string{"Tacos", "Ramen", "Pizza"},
				CreatorName: "Alice",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				if resp.PollID == "" {
					t.Error("Expected non-empty poll_id")
				}
				if resp.AdminKey == "" {
					t.Error("Expected non-empty admin_key")
				}

				// Verify admin key and share slug are derivable from the poll ID
				expectedKey := auth.GenerateAdminKey(resp.PollID, cfg.AdminKeySalt)
				if resp.AdminKey != expectedKey {
					t.Error("Admin key does not match expected value")
				}
				expectedSlug := auth.GenerateShareSlug(resp.PollID, cfg.PollSlugSalt)
				if resp.ShareSlug != expectedSlug {
					t.Error("Share slug does not match expected value")
				}
				if resp.ShareURL != cfg.BaseURL+"/polls/"+resp.ShareSlug {
					t.Errorf("Expected share URL built from base URL and slug, got '%s'", resp.ShareURL)
				}

				// Verify poll was created in database
				var question string
				err := db.QueryRow("SELECT question FROM poll WHERE id = $1", resp.PollID).Scan(&question)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if question != "Where should we get lunch?" {
					t.Errorf("Expected question 'Where should we get lunch?', got '%s'", question)
				}

				// Verify options were created in submission order
				rows, err := db.Query("SELECT label, position FROM option WHERE poll_id = $1 ORDER BY position", resp.PollID)
				if err != nil {
					t.Fatalf("Failed to query options: %v", err)
				}
				defer rows.Close()

				want := []string{"Tacos", "Ramen", "Pizza"}
				i := 0
				for rows.Next() {
					var label string
					var position int
					if err := rows.Scan(&label, &position); err != nil {
						t.Fatalf("Failed to scan option: %v", err)
					}
					if i >= len(want) {
						t.Fatalf("Expected %d options, got more", len(want))
					}
					if label != want[i] {
						t.Errorf("Expected label '%s' at position %d, got '%s'", want[i], i, label)
					}
					if position != i {
						t.Errorf("Expected position %d, got %d", i, position)
					}
					i++
				}
				if i != len(want) {
					t.Errorf("Expected %d options, got %d", len(want), i)
				}

				if got := testutil.CountAuditEntries(t, db, "poll.created"); got != 1 {
					t.Errorf("Expected 1 poll.created audit entry, got %d", got)
				}
			},
		},
		{
			name: "missing question",
			requestBody: models.CreatePollRequest{
				Options:     []string{"Yes", "No"},
				CreatorName: "Alice",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing creator name",
			requestBody: models.CreatePollRequest{
				Question: "Where should we get lunch?",
				Options:  []string{"Yes", "No"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "fewer than two options",
			requestBody: models.CreatePollRequest{
				Question:    "Where should we get lunch?",
				Options:     []string{"Tacos"},
				CreatorName: "Alice",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "blank option label",
			requestBody: models.CreatePollRequest{
				Question:    "Where should we get lunch?",
				Options:     []string{"Tacos", "   "},
				CreatorName: "Alice",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreatePollResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestListPolls(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	auditLog := audit.NewLogger(audit.NewSQLStore(db))
	handler := NewPollHandler(db, cfg, auditLog)

	testutil.CreateTestPoll(t, db, cfg, "Best taco spot in town?")
	testutil.CreateTestPoll(t, db, cfg, "Team lunch venue?")
	testutil.CreateTestPoll(t, db, cfg, "Favorite RAMEN brand?")

	type listResponse struct {
		Polls []models.PollSummary `json:"polls"`
		Count int                  `json:"count"`
	}

	tests := []struct {
		name          string
		query         string
		expectedCount int
	}{
		{
			name:          "no query lists all polls",
			query:         "",
			expectedCount: 3,
		},
		{
			name:          "lowercase query matches uppercase question",
			query:         "ramen",
			expectedCount: 1,
		},
		{
			name:          "uppercase query matches lowercase question",
			query:         "LUNCH",
			expectedCount: 1,
		},
		{
			name:          "no matches",
			query:         "breakfast",
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/polls"
			if tt.query != "" {
				path += "?q=" + tt.query
			}

			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()

			handler.ListPolls(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp listResponse
			testutil.AssertJSON(t, w, &resp)

			if resp.Count != tt.expectedCount {
				t.Errorf("Expected count %d, got %d", tt.expectedCount, resp.Count)
			}
			if len(resp.Polls) != tt.expectedCount {
				t.Errorf("Expected %d polls, got %d", tt.expectedCount, len(resp.Polls))
			}
			for _, p := range resp.Polls {
				if tt.query != "" && !strings.Contains(strings.ToLower(p.Question), strings.ToLower(tt.query)) {
					t.Errorf("Poll '%s' does not match query '%s'", p.Question, tt.query)
				}
			}
		})
	}
}

func TestUpdatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	auditLog := audit.NewLogger(audit.NewSQLStore(db))
	handler := NewPollHandler(db, cfg, auditLog)

	pollID, adminKey, _ := testutil.CreateTestPoll(t, db, cfg, "Original question?")

	tests := []struct {
		name           string
		pollID         string
		adminKey       string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "valid update",
			pollID:         pollID,
			adminKey:       adminKey,
			requestBody:    models.UpdatePollRequest{Question: "Updated question?"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid admin key",
			pollID:         pollID,
			adminKey:       "not-the-key",
			requestBody:    models.UpdatePollRequest{Question: "Hijacked question?"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing question",
			pollID:         pollID,
			adminKey:       adminKey,
			requestBody:    models.UpdatePollRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "poll not found",
			pollID:         "doesnotexist1234",
			adminKey:       auth.GenerateAdminKey("doesnotexist1234", cfg.AdminKeySalt),
			requestBody:    models.UpdatePollRequest{Question: "Anyone home?"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatalf("Failed to marshal request body: %v", err)
			}

			req := httptest.NewRequest("PUT", "/polls/"+tt.pollID, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Admin-Key", tt.adminKey)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.UpdatePoll(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.Poll
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.Question != "Updated question?" {
					t.Errorf("Expected question 'Updated question?', got '%s'", resp.Question)
				}
				if resp.ID != pollID {
					t.Errorf("Expected poll ID '%s', got '%s'", pollID, resp.ID)
				}
			}
		})
	}

	// The rejected update must not have touched the row
	var question string
	if err := db.QueryRow("SELECT question FROM poll WHERE id = $1", pollID).Scan(&question); err != nil {
		t.Fatalf("Failed to query poll: %v", err)
	}
	if question != "Updated question?" {
		t.Errorf("Expected question 'Updated question?', got '%s'", question)
	}

	if got := testutil.CountAuditEntries(t, db, "poll.updated"); got != 1 {
		t.Errorf("Expected 1 poll.updated audit entry, got %d", got)
	}
	if got := testutil.CountAuditEntries(t, db, "security.violation"); got != 1 {
		t.Errorf("Expected 1 security.violation audit entry, got %d", got)
	}
}

func TestDeletePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	auditLog := audit.NewLogger(audit.NewSQLStore(db))
	handler := NewPollHandler(db, cfg, auditLog)

	pollID, adminKey, _ := testutil.CreateTestPoll(t, db, cfg, "Doomed poll?")
	optionA := testutil.AddTestOption(t, db, pollID, "Keep")
	testutil.AddTestOption(t, db, pollID, "Delete")
	testutil.CastTestVote(t, db, pollID, optionA, "token:voter-1")

	t.Run("invalid admin key", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
		req.Header.Set("X-Admin-Key", "not-the-key")
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)

		if got := testutil.CountAuditEntries(t, db, "security.violation"); got != 1 {
			t.Errorf("Expected 1 security.violation audit entry, got %d", got)
		}
	})

	t.Run("valid delete removes poll, options, and votes", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
		req.Header.Set("X-Admin-Key", adminKey)
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		for _, table := range []string{"poll", "option", "vote"} {
			query := "SELECT COUNT(*) FROM " + table + " WHERE poll_id = $1"
			if table == "poll" {
				query = "SELECT COUNT(*) FROM poll WHERE id = $1"
			}

			var count int
			if err := db.QueryRow(query, pollID).Scan(&count); err != nil {
				t.Fatalf("Failed to count %s rows: %v", table, err)
			}
			if count != 0 {
				t.Errorf("Expected 0 %s rows after delete, got %d", table, count)
			}
		}

		if got := testutil.CountAuditEntries(t, db, "poll.deleted"); got != 1 {
			t.Errorf("Expected 1 poll.deleted audit entry, got %d", got)
		}
	})

	t.Run("poll not found", func(t *testing.T) {
		missingID := "doesnotexist1234"
		req := httptest.NewRequest("DELETE", "/polls/"+missingID, nil)
		req.Header.Set("X-Admin-Key", auth.GenerateAdminKey(missingID, cfg.AdminKeySalt))
		req.SetPathValue("id", missingID)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
