// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/testutil"
)

func TestSQLStoreRecordAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	store := NewSQLStore(db)
	ctx := context.Background()

	userID := "user1"
	targetID := "poll1"
	ip := "203.0.113.9"
	ua := "curl/8.0"
	rid := "req-abc"
	entry := Entry{
		UserID:     &userID,
		Action:     ActionPollCreated,
		TargetType: TargetPoll,
		TargetID:   &targetID,
		IPAddress:  &ip,
		UserAgent:  &ua,
		RequestID:  &rid,
		Metadata:   map[string]any{"question": "Best lunch spot?", "options": 3},
		CreatedAt:  time.Now().UTC(),
	}

	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Failed to record entry: %v", err)
	}

	entries, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.ID == "" {
		t.Error("Expected a generated entry ID")
	}
	if got.UserID == nil || *got.UserID != userID {
		t.Errorf("Expected user id %s, got %v", userID, got.UserID)
	}
	if got.Action != ActionPollCreated {
		t.Errorf("Expected action %s, got %s", ActionPollCreated, got.Action)
	}
	if got.TargetType != TargetPoll {
		t.Errorf("Expected target type %s, got %s", TargetPoll, got.TargetType)
	}
	if got.TargetID == nil || *got.TargetID != targetID {
		t.Errorf("Expected target id %s, got %v", targetID, got.TargetID)
	}
	if got.IPAddress == nil || *got.IPAddress != ip {
		t.Errorf("Expected ip %s, got %v", ip, got.IPAddress)
	}
	if got.UserAgent == nil || *got.UserAgent != ua {
		t.Errorf("Expected user agent %s, got %v", ua, got.UserAgent)
	}
	if got.RequestID == nil || *got.RequestID != rid {
		t.Errorf("Expected request id %s, got %v", rid, got.RequestID)
	}
	if got.Metadata["question"] != "Best lunch spot?" {
		t.Errorf("Expected metadata question, got %v", got.Metadata)
	}
	// JSON numbers decode as float64
	if got.Metadata["options"] != float64(3) {
		t.Errorf("Expected metadata options 3, got %v", got.Metadata["options"])
	}
	if got.CreatedAt.Unix() != entry.CreatedAt.Unix() {
		t.Errorf("Expected created_at %v, got %v", entry.CreatedAt, got.CreatedAt)
	}
}

func TestSQLStoreStoresAbsentFieldsAsNull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	store := NewSQLStore(db)
	ctx := context.Background()

	entry := Entry{Action: ActionSuspiciousActivity, TargetType: TargetSystem}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Failed to record entry: %v", err)
	}

	// The row itself must carry NULLs, not empty strings
	var userID, targetID, ipAddress, userAgent, requestID, metadata sql.NullString
	err := db.QueryRow(`
		SELECT user_id, target_id, ip_address, user_agent, request_id, metadata
		FROM audit_log
	`).Scan(&userID, &targetID, &ipAddress, &userAgent, &requestID, &metadata)
	if err != nil {
		t.Fatalf("Failed to read raw row: %v", err)
	}

	for name, col := range map[string]sql.NullString{
		"user_id":    userID,
		"target_id":  targetID,
		"ip_address": ipAddress,
		"user_agent": userAgent,
		"request_id": requestID,
		"metadata":   metadata,
	} {
		if col.Valid {
			t.Errorf("Expected %s to be NULL, got %q", name, col.String)
		}
	}

	entries, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.UserID != nil || got.TargetID != nil || got.IPAddress != nil || got.UserAgent != nil || got.RequestID != nil {
		t.Errorf("Expected absent fields to come back nil, got %+v", got)
	}
	if got.Metadata != nil {
		t.Errorf("Expected nil metadata, got %v", got.Metadata)
	}
}

func TestSQLStoreListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	store := NewSQLStore(db)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, target := range []string{"first", "second", "third"} {
		target := target
		entry := Entry{
			Action:     ActionPollCreated,
			TargetType: TargetPoll,
			TargetID:   &target,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Failed to record entry: %v", err)
		}
	}

	entries, err := store.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if *entries[0].TargetID != "third" || *entries[1].TargetID != "second" {
		t.Errorf("Expected newest first, got %s then %s", *entries[0].TargetID, *entries[1].TargetID)
	}

	// The next page holds the oldest entry
	entries, err = store.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("Failed to list second page: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry on second page, got %d", len(entries))
	}
	if *entries[0].TargetID != "first" {
		t.Errorf("Expected oldest entry on second page, got %s", *entries[0].TargetID)
	}
}

func TestSQLStoreDeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	store := NewSQLStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	ages := []time.Duration{-240 * time.Hour, -120 * time.Hour, 0}
	for _, age := range ages {
		entry := Entry{Action: ActionPollCreated, TargetType: TargetPoll, CreatedAt: now.Add(age)}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Failed to record entry: %v", err)
		}
	}

	// Only the 10-day-old entry falls before the 7-day cutoff
	deleted, err := store.DeleteBefore(ctx, now.Add(-168*time.Hour))
	if err != nil {
		t.Fatalf("Failed to purge entries: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted entry, got %d", deleted)
	}

	entries, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 surviving entries, got %d", len(entries))
	}
}
