// Package board keeps one leaderboard message per channel in step with the
// score ledger.
//
// The message is an external mutable artifact: it can be deleted, unpinned,
// or lost to permission changes at any time. Reconcile therefore treats the
// stored message id as a hint, not a fact, and recreates the message whenever
// editing the known one fails. Every call re-validates the handle, so a
// dangling id heals on the next pass.
package board

import (
	"context"
	"errors"

	"github.com/okian/quickdraw/internal/adapters/repository"
	"github.com/okian/quickdraw/pkg/logger"
	"github.com/okian/quickdraw/pkg/metrics"
)

// Messenger is the channel-resolution collaborator. Each call is
// independently failable and must be bounded by the transport.
type Messenger interface {
	// ResolveChannel confirms the channel is reachable. An error means the
	// channel is gone or the bot was removed; reconciliation aborts silently.
	ResolveChannel(ctx context.Context, channelID string) error

	// FetchMessage confirms a message still exists.
	FetchMessage(ctx context.Context, channelID, messageID string) error

	// SendMessage posts a new message and returns its id.
	SendMessage(ctx context.Context, channelID, content string) (string, error)

	// EditMessage replaces the content of an existing message.
	EditMessage(ctx context.Context, channelID, messageID, content string) error

	// PinMessage pins a message. Failures are tolerated.
	PinMessage(ctx context.Context, channelID, messageID string) error
}

// Syncer reconciles channels against the ledger.
type Syncer struct {
	store repository.Store
	msgr  Messenger
	size  int
	log   logger.Logger
}

// NewSyncer creates a Syncer reading from store and writing through msgr.
func NewSyncer(store repository.Store, msgr Messenger, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		store: store,
		msgr:  msgr,
		size:  20,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Named("board")
	}
	return s
}

// SyncerOption applies a configuration option to the Syncer.
type SyncerOption func(*Syncer)

// WithSize sets how many entries the rendered board shows.
func WithSize(n int) SyncerOption {
	return func(s *Syncer) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) SyncerOption {
	return func(s *Syncer) {
		if log != nil {
			s.log = log
		}
	}
}

// Reconcile brings the channel's board message in line with the ledger.
//
// Transport failures never escape: an unresolvable channel aborts silently
// and a missing or uneditable message falls through to create-and-repin.
// Only ledger/handle-store failures are returned.
func (s *Syncer) Reconcile(ctx context.Context, channelID string) error {
	if err := s.msgr.ResolveChannel(ctx, channelID); err != nil {
		// Channel deleted or bot removed; nothing to reconcile against.
		s.log.Debug(ctx, "channel unresolvable, skipping board update",
			logger.String("channel", channelID),
			logger.Error(err),
		)
		return nil
	}

	entries, err := s.store.TopN(ctx, channelID, s.size)
	if err != nil {
		metrics.RecordBoardError()
		return err
	}
	content := Render(entries)

	messageID, err := s.store.BoardMessage(ctx, channelID)
	switch {
	case err == nil:
		if editErr := s.tryEdit(ctx, channelID, messageID, content); editErr == nil {
			metrics.RecordBoardEdit()
			return nil
		}
		// Message vanished or became uneditable; recreate below.
	case errors.Is(err, repository.ErrNotFound):
		// First reconcile for this channel.
	default:
		metrics.RecordBoardError()
		return err
	}

	return s.create(ctx, channelID, content)
}

// tryEdit verifies the known message still exists and edits it in place.
func (s *Syncer) tryEdit(ctx context.Context, channelID, messageID, content string) error {
	if err := s.msgr.FetchMessage(ctx, channelID, messageID); err != nil {
		s.log.Info(ctx, "board message missing, recreating",
			logger.String("channel", channelID),
			logger.String("message", messageID),
			logger.Error(err),
		)
		return err
	}
	if err := s.msgr.EditMessage(ctx, channelID, messageID, content); err != nil {
		s.log.Info(ctx, "board message edit failed, recreating",
			logger.String("channel", channelID),
			logger.String("message", messageID),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// create posts a fresh board message, pins it best-effort, and records its
// id as the channel's new handle.
func (s *Syncer) create(ctx context.Context, channelID, content string) error {
	messageID, err := s.msgr.SendMessage(ctx, channelID, content)
	if err != nil {
		// Transport trouble; the next reconcile retries from scratch.
		s.log.Warn(ctx, "board message create failed",
			logger.String("channel", channelID),
			logger.Error(err),
		)
		metrics.RecordBoardError()
		return nil
	}

	if err := s.msgr.PinMessage(ctx, channelID, messageID); err != nil {
		// Pinning is cosmetic.
		s.log.Debug(ctx, "board message pin failed",
			logger.String("channel", channelID),
			logger.String("message", messageID),
			logger.Error(err),
		)
		metrics.RecordBoardPinFailure()
	}

	if err := s.store.SetBoardMessage(ctx, channelID, messageID); err != nil {
		metrics.RecordBoardError()
		return err
	}

	metrics.RecordBoardCreate()
	return nil
}
