// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollbooth/analytics"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/handlers"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/ratelimit"
)

// NewLimiters builds one limiter per published policy. The vote policy
// keys requests by voter identity rather than IP, so a voter behind a
// shared address gets their own budget and a token holder can't dodge
// the limit by rotating addresses. Repeated vote denials are flagged on
// the audit trail.
func NewLimiters(cfg cliparse.Config, auditLog *audit.Logger) *ratelimit.Limiters {
	votePolicy := ratelimit.Vote
	votePolicy.KeyFunc = func(r *http.Request) string {
		return auth.VoterKey(r.Header.Get("X-Voter-Token"), middleware.GetClientIP(r), cfg.AdminKeySalt)
	}
	votePolicy.OnLimitReached = func(r *http.Request, key string) {
		auditLog.SuspiciousActivity(r, "vote rate limit abuse", map[string]any{"key": key})
	}

	return &ratelimit.Limiters{
		General:    ratelimit.New(ratelimit.General),
		CreatePoll: ratelimit.New(ratelimit.CreatePoll),
		Vote:       ratelimit.New(votePolicy),
		Search:     ratelimit.New(ratelimit.Search),
		Auth:       ratelimit.New(ratelimit.Auth),
		Analytics:  ratelimit.New(ratelimit.Analytics),
	}
}

func NewRouter(db *sql.DB, cfg cliparse.Config, limiters *ratelimit.Limiters, auditLog *audit.Logger, recorder *analytics.Recorder) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg, auditLog)
	votingHandler := handlers.NewVotingHandler(db, cfg, auditLog, recorder)
	resultsHandler := handlers.NewResultsHandler(db, cfg, recorder)
	opsHandler := handlers.NewOpsHandler(cfg, limiters, auditLog, audit.NewSQLStore(db))

	// Every routed request gets an ID, a log line, and a policy check
	protect := func(l *ratelimit.Limiter, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithRequestID(middleware.RateLimit(l, auditLog, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll management (admin operations)
	mux.HandleFunc("POST /polls", protect(limiters.CreatePoll, pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", protect(limiters.Search, pollHandler.ListPolls))
	mux.HandleFunc("PUT /polls/{id}", protect(limiters.General, pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", protect(limiters.General, pollHandler.DeletePoll))

	// Voting operations (public)
	mux.HandleFunc("POST /polls/{slug}/votes", protect(limiters.Vote, votingHandler.CastVote))

	// Results retrieval (public)
	mux.HandleFunc("GET /polls/{slug}", protect(limiters.General, resultsHandler.GetPoll))
	mux.HandleFunc("GET /polls/{slug}/results", protect(limiters.General, resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{slug}/analytics", protect(limiters.Analytics, resultsHandler.GetAnalytics))

	// Operator endpoints (require X-Ops-Key)
	mux.HandleFunc("GET /ops/ratelimit/stats", protect(limiters.General, opsHandler.GetRateLimitStats))
	mux.HandleFunc("GET /ops/ratelimit/{policy}/stats", protect(limiters.General, opsHandler.GetPolicyStats))
	mux.HandleFunc("GET /ops/ratelimit/{policy}/status", protect(limiters.General, opsHandler.GetPolicyStatus))
	mux.HandleFunc("POST /ops/ratelimit/{policy}/reset", protect(limiters.General, opsHandler.ResetPolicyKey))
	mux.HandleFunc("GET /ops/audit", protect(limiters.General, opsHandler.ListAuditEntries))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollbooth API v1"))
	})

	return mux
}
