// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

// searchLimit caps how many polls a search returns.
const searchLimit = 20

type PollHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	auditLog *audit.Logger
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, auditLog *audit.Logger) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, auditLog: auditLog}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Question == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.CreatorName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "creator_name is required")
		return
	}
	if len(req.Options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 options are required")
		return
	}
	for _, label := range req.Options {
		if strings.TrimSpace(label) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option labels cannot be empty")
			return
		}
	}

	// Generate poll ID
	pollID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate poll ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	// Admin key and share slug are both derived from the poll ID
	adminKey := auth.GenerateAdminKey(pollID, h.cfg.AdminKeySalt)
	shareSlug := auth.GenerateShareSlug(pollID, h.cfg.PollSlugSalt)

	// Insert poll and options atomically
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, question, creator_name, share_slug, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, req.Question, req.CreatorName, shareSlug, time.Now())

	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for position, label := range req.Options {
		optionID, err := auth.GenerateID(12)
		if err != nil {
			slog.Error("failed to generate option ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}

		_, err = tx.Exec(`
			INSERT INTO option (id, poll_id, label, position)
			VALUES ($1, $2, $3, $4)
		`, optionID, pollID, label, position)

		if err != nil {
			slog.Error("failed to insert option", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	h.auditLog.PollCreated(r, nil, pollID, map[string]any{
		"question":     req.Question,
		"option_count": len(req.Options),
	})

	slog.Info("poll created", "poll_id", pollID, "creator", req.CreatorName)

	// Return response
	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:    pollID,
		AdminKey:  adminKey,
		ShareSlug: shareSlug,
		ShareURL:  h.cfg.BaseURL + "/polls/" + shareSlug,
	})
}

// ListPolls handles GET /polls
// Supports ?q= substring search over the question text
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var rows *sql.Rows
	var err error
	if q == "" {
		rows, err = h.db.Query(`
			SELECT question, creator_name, share_slug, created_at
			FROM poll
			ORDER BY created_at DESC
			LIMIT $1
		`, searchLimit)
	} else {
		pattern := "%" + strings.ToLower(q) + "%"
		rows, err = h.db.Query(`
			SELECT question, creator_name, share_slug, created_at
			FROM poll
			WHERE LOWER(question) LIKE $1
			ORDER BY created_at DESC
			LIMIT $2
		`, pattern, searchLimit)
	}

	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	polls := []models.PollSummary{}
	for rows.Next() {
		var p models.PollSummary
		if err := rows.Scan(&p.Question, &p.CreatorName, &p.ShareSlug, &p.CreatedAt); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		polls = append(polls, p)
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"polls": polls,
		"count": len(polls),
	})
}

// UpdatePoll handles PUT /polls/:id
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(pollID, adminKey, h.cfg.AdminKeySalt); err != nil {
		h.auditLog.SecurityViolation(r, "invalid admin key", map[string]any{
			"poll_id":  pollID,
			"endpoint": r.URL.Path,
		})
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Parse request
	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Question == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	// Check poll exists
	var oldQuestion string
	err := h.db.QueryRow("SELECT question FROM poll WHERE id = $1", pollID).Scan(&oldQuestion)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec("UPDATE poll SET question = $1 WHERE id = $2", req.Question, pollID)
	if err != nil {
		slog.Error("failed to update poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}

	h.auditLog.PollUpdated(r, nil, pollID, map[string]any{
		"question":     req.Question,
		"old_question": oldQuestion,
	})

	slog.Info("poll updated", "poll_id", pollID)

	// Return the updated poll
	var poll models.Poll
	err = h.db.QueryRow(`
		SELECT id, question, creator_name, share_slug, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.Question, &poll.CreatorName, &poll.ShareSlug, &poll.CreatedAt)

	if err != nil {
		slog.Error("failed to query updated poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// DeletePoll handles DELETE /polls/:id
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(pollID, adminKey, h.cfg.AdminKeySalt); err != nil {
		h.auditLog.SecurityViolation(r, "invalid admin key", map[string]any{
			"poll_id":  pollID,
			"endpoint": r.URL.Path,
		})
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Delete votes, options, then the poll. Explicit deletes keep the
	// behavior identical across Postgres and SQLite.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vote WHERE poll_id = $1", pollID); err != nil {
		slog.Error("failed to delete votes", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	if _, err := tx.Exec("DELETE FROM option WHERE poll_id = $1", pollID); err != nil {
		slog.Error("failed to delete options", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	res, err := tx.Exec("DELETE FROM poll WHERE id = $1", pollID)
	if err != nil {
		slog.Error("failed to delete poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}
	if deleted == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	h.auditLog.PollDeleted(r, nil, pollID, nil)

	slog.Info("poll deleted", "poll_id", pollID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": "Poll deleted",
	})
}
