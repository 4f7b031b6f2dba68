package feature

import (
	"context"
	"errors"
	"time"
)

// History source values.
const (
	SourceSet  = "set"
	SourcePoll = "poll"
)

// ErrHistoryDisabled is returned by history queries when no repository
// is attached to the registry.
var ErrHistoryDisabled = errors.New("feature: no history repository configured")

// HistoryEntry is one recorded feature value: a successful set or a
// polled sample.
type HistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// Feature is the node name the value belongs to.
	Feature string `json:"feature"`

	// Value is the formatted value at the time of recording.
	Value string `json:"value"`

	// Source identifies how the value was recorded (set, poll).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the record (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// HistoryQuery selects history rows. Zero From/To mean unbounded; a
// non-positive limit falls back to the repository default.
type HistoryQuery struct {
	Feature string
	From    time.Time
	To      time.Time
	Limit   int
}

// HistoryRepository stores and retrieves feature value history.
//
// Implementations must be safe for concurrent use and store UTC
// timestamps.
type HistoryRepository interface {
	// Record persists one feature value.
	Record(ctx context.Context, feature, value, source string) error

	// History returns entries matching the query, newest first.
	History(ctx context.Context, q HistoryQuery) ([]HistoryEntry, error)

	// Prune deletes entries older than the given duration and reports
	// how many rows were removed.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
