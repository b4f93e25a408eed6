package services

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/ad/go-telegram-broadcast/internal/db"
	"github.com/ad/go-telegram-broadcast/internal/logx"
)

func TestAdminDirectoryMembership(t *testing.T) {
	d := NewAdminDirectory([]int64{10, 20})

	if !d.IsAdmin(10) || !d.IsAdmin(20) {
		t.Error("Expected seeded IDs to be admins")
	}
	if d.IsAdmin(30) {
		t.Error("Unknown ID must not be an admin")
	}
	if !d.ShouldIgnore(30) {
		t.Error("Unknown ID should be ignored")
	}
	if d.Len() != 2 {
		t.Errorf("Expected 2 admins, got %d", d.Len())
	}
}

func TestEmptyAdminDirectory(t *testing.T) {
	d := NewAdminDirectory(nil)

	if d.Len() != 0 {
		t.Errorf("Expected empty directory, got %d", d.Len())
	}
	if !d.ShouldIgnore(1) {
		t.Error("Everyone should be ignored when the admin list is empty")
	}
}

func TestLoadAdminDirectoryFromStore(t *testing.T) {
	testDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer testDB.Close()

	if err := db.InitSchema(testDB); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}

	queue := db.NewDBQueueForTest(testDB)
	repo := db.NewAdminConfigRepository(queue)

	if err := repo.Seed("7,8"); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	d := LoadAdminDirectory(repo, logx.Nop())
	if !d.IsAdmin(7) || !d.IsAdmin(8) {
		t.Error("Expected admins loaded from store")
	}
}

func TestLoadAdminDirectoryEmptyStore(t *testing.T) {
	testDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer testDB.Close()

	if err := db.InitSchema(testDB); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}

	queue := db.NewDBQueueForTest(testDB)
	repo := db.NewAdminConfigRepository(queue)

	d := LoadAdminDirectory(repo, logx.Nop())
	if d.Len() != 0 {
		t.Errorf("Expected no admins from empty store, got %d", d.Len())
	}
}
