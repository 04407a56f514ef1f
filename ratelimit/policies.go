// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"net/http"
	"time"
)

// Policy describes one fixed-window limit.
type Policy struct {
	// Name identifies the policy in stats and operator endpoints.
	Name string

	// Window is the length of the counting window.
	Window time.Duration

	// Max is the number of allowed requests per key per window.
	Max int

	// Message is returned to denied callers. Empty means DefaultMessage.
	Message string

	// KeyFunc derives the caller identity. Nil means DefaultKey.
	KeyFunc func(r *http.Request) string

	// OnLimitReached runs after a request is denied. Optional.
	OnLimitReached func(r *http.Request, key string)
}

// DefaultMessage is the denial message for policies that don't set one.
const DefaultMessage = "Too many requests, please try again later."

// The service's published limits. The router builds one limiter per
// policy; operator endpoints address them by Name.
var (
	General    = Policy{Name: "general", Window: 15 * time.Minute, Max: 100}
	CreatePoll = Policy{Name: "create_poll", Window: time.Hour, Max: 10, Message: "Too many polls created, please try again later."}
	Vote       = Policy{Name: "vote", Window: time.Minute, Max: 5, Message: "Too many votes, please slow down."}
	Search     = Policy{Name: "search", Window: time.Minute, Max: 30, Message: "Too many searches, please slow down."}
	Auth       = Policy{Name: "auth", Window: 15 * time.Minute, Max: 5, Message: "Too many authentication attempts, please try again later."}
	Analytics  = Policy{Name: "analytics", Window: time.Minute, Max: 20}
)

// Limiters bundles the limiter instances the router wires to routes.
type Limiters struct {
	General    *Limiter
	CreatePoll *Limiter
	Vote       *Limiter
	Search     *Limiter
	Auth       *Limiter
	Analytics  *Limiter
}

// All returns the limiters in a stable display order.
func (ls *Limiters) All() []*Limiter {
	return []*Limiter{ls.General, ls.CreatePoll, ls.Vote, ls.Search, ls.Auth, ls.Analytics}
}

// ByName returns the limiter whose policy has the given name, or nil.
func (ls *Limiters) ByName(name string) *Limiter {
	for _, l := range ls.All() {
		if l != nil && l.policy.Name == name {
			return l
		}
	}
	return nil
}

// StartCleanup launches one background sweep per limiter. The sweeps
// stop when ctx is canceled.
func (ls *Limiters) StartCleanup(ctx context.Context) {
	for _, l := range ls.All() {
		if l != nil {
			go l.StartCleanup(ctx)
		}
	}
}
