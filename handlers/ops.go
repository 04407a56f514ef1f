// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/ratelimit"
)

type OpsHandler struct {
	cfg        cliparse.Config
	limiters   *ratelimit.Limiters
	auditLog   *audit.Logger
	auditStore audit.Store
}

func NewOpsHandler(cfg cliparse.Config, limiters *ratelimit.Limiters, auditLog *audit.Logger, auditStore audit.Store) *OpsHandler {
	return &OpsHandler{cfg: cfg, limiters: limiters, auditLog: auditLog, auditStore: auditStore}
}

// requireOpsKey gates every ops endpoint. A bad key is a security
// violation worth recording.
func (h *OpsHandler) requireOpsKey(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-Ops-Key")
	if err := auth.ValidateOpsKey(key, h.cfg.OpsKey); err != nil {
		h.auditLog.SecurityViolation(r, "invalid ops key", map[string]any{
			"endpoint": r.URL.Path,
		})
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid ops key")
		return false
	}
	return true
}

// policyStats flattens one limiter into the stats response shape.
func policyStats(l *ratelimit.Limiter) models.PolicyStats {
	s := l.Stats()
	return models.PolicyStats{
		Policy:      s.Policy,
		Limit:       l.Max(),
		Window:      l.Window().String(),
		TotalKeys:   s.TotalKeys,
		ActiveKeys:  s.ActiveKeys,
		MemoryBytes: s.MemoryBytes,
		Memory:      humanize.Bytes(uint64(s.MemoryBytes)),
	}
}

// GetRateLimitStats handles GET /ops/ratelimit/stats
func (h *OpsHandler) GetRateLimitStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpsKey(w, r) {
		return
	}

	policies := []models.PolicyStats{}
	for _, l := range h.limiters.All() {
		policies = append(policies, policyStats(l))
	}

	middleware.JSONResponse(w, http.StatusOK, models.RateLimitStatsResponse{
		Policies: policies,
	})
}

// GetPolicyStats handles GET /ops/ratelimit/:policy/stats
func (h *OpsHandler) GetPolicyStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpsKey(w, r) {
		return
	}

	l := h.limiters.ByName(r.PathValue("policy"))
	if l == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown policy")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, policyStats(l))
}

// GetPolicyStatus handles GET /ops/ratelimit/:policy/status?key=K
// Reports the live window for one key without consuming a slot
func (h *OpsHandler) GetPolicyStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpsKey(w, r) {
		return
	}

	l := h.limiters.ByName(r.PathValue("policy"))
	if l == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown policy")
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key query parameter is required")
		return
	}

	status := l.Status(key)
	if status == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active window for key")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RateLimitStatusResponse{
		Policy:    l.Name(),
		Key:       status.Key,
		Count:     status.Count,
		Limit:     l.Max(),
		Remaining: status.Remaining,
		ResetTime: status.ResetTime.UnixMilli(),
	})
}

// ResetPolicyKey handles POST /ops/ratelimit/:policy/reset
// Drops one key's window so a locked-out client can retry
func (h *OpsHandler) ResetPolicyKey(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpsKey(w, r) {
		return
	}

	l := h.limiters.ByName(r.PathValue("policy"))
	if l == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown policy")
		return
	}

	var req models.ResetRateLimitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	existed := l.Reset(req.Key)

	h.auditLog.AdminAction(r, "ratelimit.reset", map[string]any{
		"policy":  l.Name(),
		"key":     req.Key,
		"existed": existed,
	})

	slog.Info("rate limit key reset", "policy", l.Name(), "key", req.Key, "existed", existed)

	middleware.JSONResponse(w, http.StatusOK, models.ResetRateLimitResponse{
		Policy:  l.Name(),
		Key:     req.Key,
		Existed: existed,
	})
}

// ListAuditEntries handles GET /ops/audit?limit=&offset=
// Pages through the audit trail newest first
func (h *OpsHandler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpsKey(w, r) {
		return
	}

	limit := audit.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		offset = n
	}

	if limit <= 0 || limit > audit.MaxListLimit {
		limit = audit.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := h.auditStore.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("failed to list audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	out := make([]models.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.AuditEntryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Action:     string(e.Action),
			TargetType: string(e.TargetType),
			TargetID:   e.TargetID,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			RequestID:  e.RequestID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.AuditListResponse{
		Entries: out,
		Limit:   limit,
		Offset:  offset,
	})
}
