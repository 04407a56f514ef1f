// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(pollID, salt)
	err := auth.ValidateAdminKey(pollID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same poll ID and salt always produce the same key. This allows validation
without storing the key in the database.

# Operator Key

The ops endpoints share one configured key, compared in constant time:

	err := auth.ValidateOpsKey(r.Header.Get("X-Ops-Key"), cfg.OpsKey)

# Voter Tokens

Voter tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateVoterToken()

Tokens are URL-safe base64 encoded. A voter presenting the same token can
change their vote; the first vote without a token mints one.

# Voter Keys

VoterKey derives the per-poll deduplication key: "token:" plus the voter
token when one is held, otherwise "ip:" plus a salted hash of the client
IP:

	key := auth.VoterKey(voterToken, clientIP, salt)

# Share Slugs

Share slugs create URL-friendly identifiers for polls:

	slug := auth.GenerateShareSlug(pollID, salt)

Slugs are base62 encoded (alphanumeric only) for easy sharing. Like admin keys,
they're deterministic from the poll ID and salt.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving fraud detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
