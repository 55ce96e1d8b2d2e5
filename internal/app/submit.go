package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/okian/quickdraw/internal/adapters/repository"
	"github.com/okian/quickdraw/internal/domain/token"
	"github.com/okian/quickdraw/internal/domain/types"
	"github.com/okian/quickdraw/pkg/logger"
	"github.com/okian/quickdraw/pkg/metrics"
)

// Submit consumes the submission's token and, if everything checks out,
// merges the result into the ledger and refreshes the channel's board.
//
// Validation short-circuits in order: payload shape, token, run count. The
// token is consumed the moment it resolves; a later failure does not refund
// it, the player just requests a fresh link. Board transport trouble is
// absorbed inside the syncer and never turns an accepted submission into an
// error.
func (s *Service) Submit(ctx context.Context, sub types.Submission) types.Outcome {
	outcome := s.submit(ctx, sub)
	metrics.RecordSubmission(string(outcome))
	return outcome
}

func (s *Service) submit(ctx context.Context, sub types.Submission) types.Outcome {
	if !validPayload(sub) {
		return types.OutcomeInvalidPayload
	}

	holder, err := s.tokens.Consume(ctx, sub.Token)
	if err != nil {
		if !errors.Is(err, token.ErrNotFound) {
			s.log.Error(ctx, "token consume failed", logger.Error(err))
			return types.OutcomeServerError
		}
		return types.OutcomeInvalidToken
	}

	// From here on the token is spent, success or not.
	if sub.Runs != s.requiredRuns {
		s.log.Debug(ctx, "submission with wrong run count",
			logger.String("channel", holder.ChannelID),
			logger.String("subject", holder.SubjectID),
			logger.Int("runs", sub.Runs),
		)
		return types.OutcomeWrongRunLength
	}

	if err := s.store.Merge(ctx, repository.Record{
		ChannelID:   holder.ChannelID,
		SubjectID:   holder.SubjectID,
		DisplayName: holder.DisplayName,
		AverageMs:   sub.AverageMs,
		BestMs:      sub.BestMs,
	}); err != nil {
		s.log.Error(ctx, "score merge failed",
			logger.String("channel", holder.ChannelID),
			logger.String("subject", holder.SubjectID),
			logger.Error(err),
		)
		return types.OutcomeServerError
	}

	if err := s.syncer.Reconcile(ctx, holder.ChannelID); err != nil {
		s.log.Error(ctx, "board reconcile failed",
			logger.String("channel", holder.ChannelID),
			logger.Error(err),
		)
		return types.OutcomeServerError
	}

	s.log.Info(ctx, "submission accepted",
		logger.String("channel", holder.ChannelID),
		logger.String("subject", holder.SubjectID),
		logger.Float64("averageMs", sub.AverageMs),
		logger.Float64("bestMs", sub.BestMs),
	)
	return types.OutcomeAccepted
}

// validPayload rejects shapes no real client produces. The HTTP boundary
// already guarantees the fields were numeric JSON values.
func validPayload(sub types.Submission) bool {
	if strings.TrimSpace(sub.Token) == "" {
		return false
	}
	for _, v := range []float64{sub.AverageMs, sub.BestMs} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}
