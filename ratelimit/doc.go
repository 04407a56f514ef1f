// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit enforces per-caller request budgets with in-memory
fixed windows.

# Policies

A Policy pairs a window length with a request budget. The package ships
the service's published policies (General, CreatePoll, Vote, Search,
Auth, Analytics); the router builds one Limiter per policy:

	limiter := ratelimit.New(ratelimit.CreatePoll)

Callers are identified by DefaultKey (bearer-token prefix, then
forwarded client IP) unless the policy sets its own KeyFunc.

# Checking

Check consumes one slot and reports the outcome. Counters advance only
on allowed requests, so a denied caller's window is never extended:

	res := limiter.Check(r)
	for k, v := range res.Headers() {
		w.Header().Set(k, v)
	}
	if !res.Allowed {
		// respond 429 with res.Message after res.RetryAfter seconds
	}

A Limiter cannot fail; malformed requests at worst share the
"ip:unknown" budget.

# Introspection

Status, Reset, and Stats back the operator endpoints:

	st := limiter.Status("ip:203.0.113.9") // nil when no live window
	existed := limiter.Reset("ip:203.0.113.9")
	s := limiter.Stats()

# Cleanup

Expired windows are replaced lazily on access; a background sweep evicts
the rest:

	go limiter.StartCleanup(ctx)
*/
package ratelimit
