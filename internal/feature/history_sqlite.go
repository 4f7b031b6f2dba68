package feature

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SQLiteHistoryRepository implements HistoryRepository on the daemon's
// SQLite database, table feature_history.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a repository over an open
// connection. The feature_history table must already be migrated.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// Record implements HistoryRepository.
func (r *SQLiteHistoryRepository) Record(ctx context.Context, feature, value, source string) error {
	if feature == "" {
		return fmt.Errorf("feature name is required")
	}
	if source == "" {
		source = SourceSet
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO feature_history (feature, value, source, created_at) VALUES (?, ?, ?, ?)",
		feature,
		value,
		source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting feature history: %w", err)
	}
	return nil
}

// History implements HistoryRepository, newest first.
func (r *SQLiteHistoryRepository) History(ctx context.Context, q HistoryQuery) ([]HistoryEntry, error) {
	if q.Feature == "" {
		return nil, fmt.Errorf("feature name is required")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	query := `SELECT id, feature, value, source, created_at
	          FROM feature_history
	          WHERE feature = ?`
	args := []any{q.Feature}
	if !q.From.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, q.To.UTC().Format(time.RFC3339))
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feature history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var entry HistoryEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Feature, &entry.Value, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning feature history: %w", err)
		}
		timestamp, err := parseHistoryTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feature history: %w", err)
	}
	return entries, nil
}

// Prune implements HistoryRepository.
func (r *SQLiteHistoryRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM feature_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting feature history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

// parseHistoryTimestamp parses a timestamp stored in SQLite. Rows
// written by older builds used the bare Z layout without an offset.
func parseHistoryTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}
	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}
	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback, nil
	}
	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
