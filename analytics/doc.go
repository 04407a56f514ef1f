// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package analytics counts poll views and votes in redis.

Each poll carries four counters: a running total of views, a running
total of votes, and a bucket of each per UTC day. Day buckets expire
after two days so the keyspace stays proportional to recent activity.

# Recording

RecordView and RecordVote are fire-and-forget. A redis failure is
logged and swallowed; the page view or vote that triggered the bump
proceeds regardless. A nil *Recorder records nothing, so callers wire
it through unconditionally and let configuration decide:

	recorder := analytics.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer recorder.Close()

Open returns nil when no address is configured.

# Reading

Snapshot fetches all four counters in one MGET. Counters that were
never bumped read as zero. Reads against a nil recorder return
ErrDisabled, which handlers translate into 503.
*/
package analytics
