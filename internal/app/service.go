// Package service owns the wiring of the quickdraw core: token cache, score
// ledger, and board synchronizer. It implements the dependencies required by
// the HTTP API and the Discord front end.
package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/okian/quickdraw/internal/adapters/repository"
	"github.com/okian/quickdraw/internal/domain/board"
	"github.com/okian/quickdraw/internal/domain/token"
	"github.com/okian/quickdraw/internal/domain/types"
	"github.com/okian/quickdraw/pkg/logger"
)

// Service implements the submission gateway and issuance/refresh triggers.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	tokens *token.Cache
	msgr   board.Messenger
	syncer *board.Syncer

	// Configuration
	tokenTTL      time.Duration
	sweepInterval time.Duration
	requiredRuns  int
	boardSize     int
	publicBaseURL string

	// State
	started   bool
	stopSweep context.CancelFunc
	sweepDone chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the score ledger and handle store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMessenger sets the channel-resolution collaborator.
func WithMessenger(msgr board.Messenger) Option {
	return func(s *Service) {
		if msgr != nil {
			s.msgr = msgr
		}
	}
}

// WithTokenTTL sets the play token validity window.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithSweepInterval sets the token sweep interval.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithRequiredRuns sets the trial count a submission must report.
func WithRequiredRuns(runs int) Option {
	return func(s *Service) {
		if runs > 0 {
			s.requiredRuns = runs
		}
	}
}

// WithBoardSize sets how many entries the board message shows.
func WithBoardSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.boardSize = n
		}
	}
}

// WithPublicBaseURL sets the base URL used to render play links.
func WithPublicBaseURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.publicBaseURL = base
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		msgr:          board.NopMessenger{},
		tokenTTL:      15 * time.Minute,
		sweepInterval: 60 * time.Second,
		requiredRuns:  50,
		boardSize:     20,
		publicBaseURL: "http://localhost:9080",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the components and launches the token sweep.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.log.Info(ctx, "no store configured, using in-memory store")
	}

	s.tokens = token.NewCache(
		token.WithTTL(s.tokenTTL),
		token.WithSweepInterval(s.sweepInterval),
	)
	s.syncer = board.NewSyncer(s.store, s.msgr,
		board.WithSize(s.boardSize),
		board.WithLogger(s.log.Named("board")),
	)

	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	s.sweepDone = make(chan struct{})
	go func() {
		defer close(s.sweepDone)
		s.tokens.Run(sweepCtx)
	}()

	s.started = true
	s.log.Info(ctx, "quickdraw service started",
		logger.Duration("tokenTTL", s.tokenTTL),
		logger.Duration("sweepInterval", s.sweepInterval),
		logger.Int("requiredRuns", s.requiredRuns),
		logger.Int("boardSize", s.boardSize),
	)
	return nil
}

// Stop shuts the service down and releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.stopSweep()
	<-s.sweepDone

	if err := s.store.Close(); err != nil {
		s.log.Error(context.Background(), "store close failed", logger.Error(err))
	}

	s.started = false
	s.log.Info(context.Background(), "quickdraw service stopped")
}

// IssueToken creates a single-use play token for the channel/subject pair.
func (s *Service) IssueToken(ctx context.Context, channelID, subjectID, displayName string) (string, error) {
	tok, err := s.tokens.Issue(ctx, token.Holder{
		ChannelID:   channelID,
		SubjectID:   subjectID,
		DisplayName: displayName,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// TokenTTL reports the validity window communicated to holders.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// PlayURL renders the retrievable link for an issued token.
func (s *Service) PlayURL(tok string) string {
	return s.publicBaseURL + "/play?token=" + url.QueryEscape(tok)
}

// Reconcile re-renders the channel's board message. Used by the refresh
// trigger, independent of any submission.
func (s *Service) Reconcile(ctx context.Context, channelID string) error {
	return s.syncer.Reconcile(ctx, channelID)
}

// TopN returns up to n leaderboard entries for the channel.
func (s *Service) TopN(ctx context.Context, channelID string, n int) ([]types.Entry, error) {
	recs, err := s.store.TopN(ctx, channelID, n)
	if err != nil {
		return nil, err
	}

	entries := make([]types.Entry, len(recs))
	for i, rec := range recs {
		entries[i] = types.Entry{
			Rank:        i + 1,
			DisplayName: rec.DisplayName,
			AverageMs:   rec.AverageMs,
			BestMs:      rec.BestMs,
		}
	}
	return entries, nil
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"requiredRuns": s.requiredRuns,
		"boardSize":    s.boardSize,
	}
	if s.started {
		stats["liveTokens"] = s.tokens.Len()
	}
	return stats
}
