// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(duration_ms).

# Request IDs

WithRequestID gives every request an X-Request-ID, keeping an inbound
one when the gateway already assigned it. The ID rides the request
header so handlers and the audit trail correlate, and echoes on the
response.

# Rate Limiting

RateLimit gates a handler behind a limiter policy:

	mux.HandleFunc("POST /polls", middleware.RateLimit(limiters.CreatePoll, auditLog, handlers.CreatePoll))

Allowed responses carry X-RateLimit-Limit, X-RateLimit-Remaining, and
X-RateLimit-Reset. Denials answer 429 with Retry-After, a JSON body
(success, message, retryAfter), and an audit entry. The handler never
runs on a denial.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Key, X-Voter-Token, X-Ops-Key,
X-Request-ID, and exposes the rate limit headers to browser scripts.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for IP hashing in vote deduplication.
*/
package middleware
