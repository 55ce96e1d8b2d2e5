// Package repository defines the score ledger and board-handle store.
package repository

import (
	"context"
	"time"
)

// Record is the per-channel best-score row for one subject.
//
// AverageMs and BestMs are each the minimum ever observed for the key, taken
// independently: the stored average and best may originate from two different
// runs. That is the merge policy, not an accident.
type Record struct {
	ChannelID   string
	SubjectID   string
	DisplayName string
	AverageMs   float64
	BestMs      float64
	UpdatedAt   time.Time
}

// Store provides durable access to score records and board message handles.
type Store interface {
	// Merge inserts the record or folds it into the existing row for
	// (ChannelID, SubjectID): average and best each take the minimum of the
	// stored and incoming value, DisplayName is last-writer-wins, UpdatedAt
	// is refreshed. The read-modify-write is atomic per key.
	Merge(ctx context.Context, rec Record) error

	// TopN returns up to n records for the channel ordered by AverageMs
	// ascending, ties broken by BestMs ascending. Read-only.
	TopN(ctx context.Context, channelID string, n int) ([]Record, error)

	// BoardMessage returns the message id of the channel's leaderboard
	// artifact, or ErrNotFound if none was recorded yet.
	BoardMessage(ctx context.Context, channelID string) (string, error)

	// SetBoardMessage records the channel's current leaderboard message id,
	// overwriting any previous value.
	SetBoardMessage(ctx context.Context, channelID, messageID string) error

	Close() error
}

// boardKey synthesizes the handle-store key for a channel.
func boardKey(channelID string) string {
	return "leaderboard:" + channelID
}
