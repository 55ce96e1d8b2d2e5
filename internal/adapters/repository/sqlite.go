package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	channel_id   TEXT NOT NULL,
	subject_id   TEXT NOT NULL,
	display_name TEXT NOT NULL,
	average_ms   REAL NOT NULL,
	best_ms      REAL NOT NULL,
	updated_at   TEXT NOT NULL,
	PRIMARY KEY (channel_id, subject_id)
);

CREATE INDEX IF NOT EXISTS idx_scores_channel_order
	ON scores (channel_id, average_ms, best_ms);

CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore is the durable Store backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a SQLite store at path.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite has a single writer; one pooled connection also keeps the
	// :memory: variant on a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Merge performs the independent-minima upsert as a single conditional
// write; no application-level read/compare is involved.
func (s *SQLiteStore) Merge(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO scores (channel_id, subject_id, display_name, average_ms, best_ms, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (channel_id, subject_id) DO UPDATE SET
	display_name = excluded.display_name,
	average_ms   = MIN(average_ms, excluded.average_ms),
	best_ms      = MIN(best_ms, excluded.best_ms),
	updated_at   = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, q,
		rec.ChannelID, rec.SubjectID, rec.DisplayName,
		rec.AverageMs, rec.BestMs, updatedAt.Format(timeFormat),
	); err != nil {
		return fmt.Errorf("merge score: %w", err)
	}
	return nil
}

// TopN returns the channel's best records ordered for the leaderboard.
func (s *SQLiteStore) TopN(ctx context.Context, channelID string, n int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	const q = `
SELECT channel_id, subject_id, display_name, average_ms, best_ms, updated_at
FROM scores
WHERE channel_id = ?
ORDER BY average_ms ASC, best_ms ASC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, channelID, n)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var updatedAt string
		if err := rows.Scan(&rec.ChannelID, &rec.SubjectID, &rec.DisplayName,
			&rec.AverageMs, &rec.BestMs, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		if ts, err := time.Parse(timeFormat, updatedAt); err == nil {
			rec.UpdatedAt = ts
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return out, nil
}

// BoardMessage returns the recorded leaderboard message id for the channel.
func (s *SQLiteStore) BoardMessage(ctx context.Context, channelID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, boardKey(channelID),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query board message: %w", err)
	}
	return value, nil
}

// SetBoardMessage records the channel's leaderboard message id.
func (s *SQLiteStore) SetBoardMessage(ctx context.Context, channelID, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	const q = `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`

	if _, err := s.db.ExecContext(ctx, q, boardKey(channelID), messageID); err != nil {
		return fmt.Errorf("set board message: %w", err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
