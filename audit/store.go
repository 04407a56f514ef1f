// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// List pagination bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Store persists audit entries. Implementations must be safe for
// concurrent use.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, limit, offset int) ([]Entry, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLStore writes entries to the audit_log table. The SQL sticks to the
// subset both supported drivers accept, $n placeholders included.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle. The handle stays owned by
// the caller; closing it is not the store's job.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Record inserts one entry. Missing ID and CreatedAt are filled in.
func (s *SQLStore) Record(ctx context.Context, e Entry) error {
	var metadata *string
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		enc := string(raw)
		metadata = &enc
	}

	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, action, target_type, target_id, ip_address, user_agent, request_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, e.UserID, string(e.Action), string(e.TargetType), e.TargetID, e.IPAddress, e.UserAgent, e.RequestID, metadata, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// List returns entries newest first. Limits outside (0, MaxListLimit]
// fall back to the default page size.
func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, target_type, target_id, ip_address, user_agent, request_id, metadata, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var action, targetType string
		var userID, targetID, ip, ua, reqID, metadata sql.NullString

		err := rows.Scan(&e.ID, &userID, &action, &targetType, &targetID, &ip, &ua, &reqID, &metadata, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		e.Action = Action(action)
		e.TargetType = TargetType(targetType)
		if userID.Valid {
			e.UserID = &userID.String
		}
		if targetID.Valid {
			e.TargetID = &targetID.String
		}
		if ip.Valid {
			e.IPAddress = &ip.String
		}
		if ua.Valid {
			e.UserAgent = &ua.String
		}
		if reqID.Valid {
			e.RequestID = &reqID.String
		}
		if metadata.Valid && metadata.String != "" {
			// Unparseable metadata stays nil; the row is still returned
			_ = json.Unmarshal([]byte(metadata.String), &e.Metadata)
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	return entries, nil
}

// DeleteBefore purges entries created before the cutoff and reports how
// many rows went away.
func (s *SQLStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit entries: %w", err)
	}
	return res.RowsAffected()
}
