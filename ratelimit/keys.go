// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"net/http"
	"strings"
)

// tokenKeyLen bounds how much of a bearer token ends up in the key map.
const tokenKeyLen = 16

// DefaultKey derives the counter key for a request.
// Authenticated callers are keyed by a bearer-token prefix so they keep
// one budget across addresses; everyone else is keyed by client IP.
// Malformed headers never fail, worst case the key is "ip:unknown".
func DefaultKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != "" {
			if len(token) > tokenKeyLen {
				token = token[:tokenKeyLen]
			}
			return "token:" + token
		}
	}
	return "ip:" + clientIP(r)
}

// clientIP extracts the forwarded client address.
// Checks X-Forwarded-For, X-Real-IP, then gives up with "unknown".
// RemoteAddr is never consulted; behind the proxy it is not the caller.
func clientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return "unknown"
}
