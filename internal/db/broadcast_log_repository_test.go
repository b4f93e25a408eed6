package db

import (
	"testing"

	"github.com/ad/go-telegram-broadcast/internal/models"
	_ "modernc.org/sqlite"
)

func TestRecordAndRecent(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBroadcastLogRepository(queue)

	first := &models.BroadcastLogEntry{
		OperatorID: 1,
		Text:       "first",
		MediaKind:  "",
		Successful: 3,
		Failed:     0,
	}
	second := &models.BroadcastLogEntry{
		OperatorID: 1,
		Text:       "second",
		MediaKind:  "photo",
		Successful: 2,
		Failed:     1,
	}

	if err := repo.Record(first); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := repo.Record(second); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if first.ID == 0 || second.ID == 0 {
		t.Error("Record should backfill entry IDs")
	}

	entries, err := repo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "second" {
		t.Errorf("Expected newest entry first, got %q", entries[0].Text)
	}
	if entries[0].MediaKind != "photo" || entries[0].Successful != 2 || entries[0].Failed != 1 {
		t.Errorf("Entry fields not round-tripped: %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("Expected created_at to be populated")
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBroadcastLogRepository(queue)

	for i := 0; i < 5; i++ {
		entry := &models.BroadcastLogEntry{OperatorID: 1, Text: "entry"}
		if err := repo.Record(entry); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := repo.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}
}

func TestRecentEmptyLog(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBroadcastLogRepository(queue)

	entries, err := repo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}
