// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollbooth/analytics"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

type ResultsHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	counters *analytics.Recorder
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, counters *analytics.Recorder) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, counters: counters}
}

// GetPoll handles GET /polls/:slug
// Returns poll details and options and counts the page view
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get poll by share slug
	var poll models.Poll
	err := h.db.QueryRow(`
		SELECT id, question, creator_name, share_slug, created_at
		FROM poll
		WHERE share_slug = $1
	`, shareSlug).Scan(
		&poll.ID, &poll.Question, &poll.CreatorName, &poll.ShareSlug, &poll.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Get options
	rows, err := h.db.Query(`
		SELECT id, poll_id, label, position
		FROM option
		WHERE poll_id = $1
		ORDER BY position, id
	`, poll.ID)

	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label, &opt.Position); err != nil {
			slog.Error("failed to scan option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		options = append(options, opt)
	}

	// Count the view; best-effort
	h.counters.RecordView(r.Context(), poll.ID)

	response := models.PollWithOptions{
		Poll:    poll,
		Options: options,
	}

	middleware.JSONResponse(w, http.StatusOK, response)
}

// GetResults handles GET /polls/:slug/results
// Returns the live tally: per-option vote counts and the total
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get poll by share slug
	var pollID, question string
	err := h.db.QueryRow(`
		SELECT id, question FROM poll WHERE share_slug = $1
	`, shareSlug).Scan(&pollID, &question)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Tally votes per option
	rows, err := h.db.Query(`
		SELECT o.id, o.label, o.position, COUNT(v.id)
		FROM option o
		LEFT JOIN vote v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.label, o.position
		ORDER BY o.position, o.id
	`, pollID)

	if err != nil {
		slog.Error("failed to tally votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	options := []models.OptionResult{}
	total := 0
	for rows.Next() {
		var res models.OptionResult
		if err := rows.Scan(&res.OptionID, &res.Label, &res.Position, &res.Votes); err != nil {
			slog.Error("failed to scan tally", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		total += res.Votes
		options = append(options, res)
	}

	// Share of total, zero when nobody voted yet
	if total > 0 {
		for i := range options {
			options[i].Share = float64(options[i].Votes) / float64(total)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResults{
		Question:   question,
		ShareSlug:  shareSlug,
		TotalVotes: total,
		Options:    options,
	})
}

// GetAnalytics handles GET /polls/:slug/analytics
// Returns view and vote counters from redis; 503 when analytics is not
// configured
func (h *ResultsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get poll ID
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

	snap, err := h.counters.Snapshot(r.Context(), pollID)
	if errors.Is(err, analytics.ErrDisabled) {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Analytics not configured")
		return
	}
	if err != nil {
		slog.Error("failed to read analytics", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read analytics")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AnalyticsResponse{
		PollID:     snap.PollID,
		TotalViews: snap.TotalViews,
		TotalVotes: snap.TotalVotes,
		ViewsToday: snap.ViewsToday,
		VotesToday: snap.VotesToday,
	})
}
