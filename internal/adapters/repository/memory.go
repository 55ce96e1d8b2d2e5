package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It backs tests and running without a
// database path; it honors the same merge and ordering contracts as the
// SQLite store but loses everything on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]map[string]Record // channelID -> subjectID -> record
	kv     map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]map[string]Record),
		kv:     make(map[string]string),
	}
}

// Merge applies the independent-minima policy under one lock hold.
func (m *MemoryStore) Merge(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	channel, ok := m.scores[rec.ChannelID]
	if !ok {
		channel = make(map[string]Record)
		m.scores[rec.ChannelID] = channel
	}

	existing, ok := channel[rec.SubjectID]
	if !ok {
		channel[rec.SubjectID] = rec
		return nil
	}

	merged := existing
	merged.DisplayName = rec.DisplayName
	merged.UpdatedAt = rec.UpdatedAt
	if rec.AverageMs < merged.AverageMs {
		merged.AverageMs = rec.AverageMs
	}
	if rec.BestMs < merged.BestMs {
		merged.BestMs = rec.BestMs
	}
	channel[rec.SubjectID] = merged
	return nil
}

// TopN returns the channel's records sorted by average then best.
func (m *MemoryStore) TopN(ctx context.Context, channelID string, n int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	m.mu.RLock()
	channel := m.scores[channelID]
	out := make([]Record, 0, len(channel))
	for _, rec := range channel {
		out = append(out, rec)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageMs != out[j].AverageMs {
			return out[i].AverageMs < out[j].AverageMs
		}
		return out[i].BestMs < out[j].BestMs
	})

	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// BoardMessage returns the recorded leaderboard message id for the channel.
func (m *MemoryStore) BoardMessage(ctx context.Context, channelID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.kv[boardKey(channelID)]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// SetBoardMessage records the channel's leaderboard message id.
func (m *MemoryStore) SetBoardMessage(ctx context.Context, channelID, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.kv[boardKey(channelID)] = messageID
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
