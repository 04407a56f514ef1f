// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/pollbooth/analytics"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

type VotingHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	auditLog *audit.Logger
	counters *analytics.Recorder
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, auditLog *audit.Logger, counters *analytics.Recorder) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, auditLog: auditLog, counters: counters}
}

// CastVote handles POST /polls/:slug/votes
// A voter presenting the same X-Voter-Token replaces their earlier
// choice. The first vote without a token is keyed by hashed IP and the
// response carries a generated token for later changes.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Parse request
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	// Find poll by share slug
	var pollID string
	err := h.db.QueryRow(`
		SELECT id FROM poll WHERE share_slug = $1
	`, shareSlug).Scan(&pollID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Verify the option belongs to this poll
	var optionExists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM option
			WHERE id = $1 AND poll_id = $2
		)
	`, req.OptionID, pollID).Scan(&optionExists)

	if err != nil {
		slog.Error("failed to verify option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !optionExists {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option_id: "+req.OptionID)
		return
	}

	// Derive the voter's identity. A presented token keys the vote; an
	// anonymous vote is keyed by hashed IP and gets a fresh token for
	// future changes.
	voterToken := r.Header.Get("X-Voter-Token")
	clientIP := middleware.GetClientIP(r)
	voterKey := auth.VoterKey(voterToken, clientIP, h.cfg.AdminKeySalt)

	if voterToken == "" {
		voterToken, err = auth.GenerateVoterToken()
		if err != nil {
			slog.Error("failed to generate voter token", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
			return
		}
	}

	ipHash := auth.HashIP(clientIP, h.cfg.AdminKeySalt) // Reuse admin salt for IP hashing
	userAgent := r.UserAgent()

	// Begin transaction for UPSERT
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Check if this voter already has a vote on the poll
	var existingVoteID string
	err = tx.QueryRow(`
		SELECT id FROM vote WHERE poll_id = $1 AND voter_key = $2
	`, pollID, voterKey).Scan(&existingVoteID)

	isUpdate := err != sql.ErrNoRows
	var voteID string

	if isUpdate {
		// Replace the earlier choice
		voteID = existingVoteID
		_, err = tx.Exec(`
			UPDATE vote
			SET option_id = $1, ip_hash = $2, user_agent = $3, updated_at = $4
			WHERE id = $5
		`, req.OptionID, ipHash, userAgent, time.Now(), voteID)

		if err != nil {
			slog.Error("failed to update vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update vote")
			return
		}
	} else {
		// Record a new vote
		voteID, _ = auth.GenerateID(16)
		now := time.Now()
		_, err = tx.Exec(`
			INSERT INTO vote (id, poll_id, option_id, voter_key, ip_hash, user_agent, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, voteID, pollID, req.OptionID, voterKey, ipHash, userAgent, now, now)

		if err != nil {
			slog.Error("failed to insert vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	h.auditLog.VoteCast(r, pollID, voteID, isUpdate)

	// Changed votes do not bump the counters; totals track distinct votes
	if !isUpdate {
		h.counters.RecordVote(r.Context(), pollID)
	}

	message := "Vote recorded successfully"
	if isUpdate {
		message = "Vote updated successfully"
	}

	slog.Info("vote cast", "poll_id", pollID, "vote_id", voteID, "is_update", isUpdate)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:     voteID,
		VoterToken: voterToken,
		Changed:    isUpdate,
		Message:    message,
	})
}
