package feature

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupHistoryTestDB creates an in-memory SQLite database with the
// feature_history table.
func setupHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE feature_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			feature TEXT NOT NULL,
			value TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'set',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_feature_history_feature ON feature_history(feature, created_at DESC);
		CREATE INDEX idx_feature_history_time ON feature_history(created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// insertHistoryRow inserts a history row with a specific timestamp.
func insertHistoryRow(t *testing.T, db *sql.DB, feature, value, source string, createdAt time.Time) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO feature_history (feature, value, source, created_at) VALUES (?, ?, ?, ?)",
		feature, value, source, createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("failed to insert history row: %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Record / History
// ─────────────────────────────────────────────────────────────────────────────

func TestHistoryRecordAndQuery(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	if err := repo.Record(ctx, "ExposureTime", "1200", SourceSet); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record(ctx, "ExposureTime", "1500", SourcePoll); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record(ctx, "Gain", "3", SourceSet); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := repo.History(ctx, HistoryQuery{Feature: "ExposureTime"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Value != "1500" || entries[0].Source != SourcePoll {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Value != "1200" {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
	for _, e := range entries {
		if e.Feature != "ExposureTime" {
			t.Fatalf("cross-feature leak: %+v", e)
		}
		if e.CreatedAt.IsZero() {
			t.Fatalf("entry has zero timestamp: %+v", e)
		}
	}
}

func TestHistoryTimeRange(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertHistoryRow(t, db, "Gain", "1", SourcePoll, base.Add(time.Duration(i)*time.Hour))
	}

	entries, err := repo.History(ctx, HistoryQuery{
		Feature: "Gain",
		From:    base.Add(1 * time.Hour),
		To:      base.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if !entries[0].CreatedAt.Equal(base.Add(3 * time.Hour)) {
		t.Fatalf("entries[0].CreatedAt = %v", entries[0].CreatedAt)
	}
}

func TestHistoryLimitClamped(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		insertHistoryRow(t, db, "Gain", "1", SourcePoll, base.Add(time.Duration(i)*time.Minute))
	}

	entries, err := repo.History(ctx, HistoryQuery{Feature: "Gain"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != defaultHistoryLimit {
		t.Fatalf("default limit = %d entries, want %d", len(entries), defaultHistoryLimit)
	}

	entries, err = repo.History(ctx, HistoryQuery{Feature: "Gain", Limit: 10})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("explicit limit = %d entries, want 10", len(entries))
	}
}

func TestHistoryValidation(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	if err := repo.Record(ctx, "", "1", SourceSet); err == nil {
		t.Fatal("Record with empty feature must fail")
	}
	if _, err := repo.History(ctx, HistoryQuery{}); err == nil {
		t.Fatal("History with empty feature must fail")
	}
	if _, err := repo.Prune(ctx, 0); err == nil {
		t.Fatal("Prune with zero duration must fail")
	}
}

func TestHistoryPrune(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	insertHistoryRow(t, db, "Gain", "1", SourcePoll, time.Now().UTC().Add(-48*time.Hour))
	insertHistoryRow(t, db, "Gain", "2", SourcePoll, time.Now().UTC().Add(-1*time.Hour))

	deleted, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	entries, err := repo.History(ctx, HistoryQuery{Feature: "Gain"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 || entries[0].Value != "2" {
		t.Fatalf("surviving entries = %+v", entries)
	}
}
