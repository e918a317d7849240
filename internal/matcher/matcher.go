// Package matcher decides, for each candidate task extracted from a
// transcript, whether it is an update to an existing tracked task or new
// work that needs a fresh ticket.
//
// The decision runs through an ordered list of strategies (tiers):
//
//	explicit reference > vector similarity > LLM judgment > lexical fallback
//
// The first tier that produces a confident result short-circuits the rest.
// A tier that errors is logged and skipped, never aborting the candidate:
// when every tier passes or fails, the decision is CREATE — under
// uncertainty a duplicate ticket beats a silently dropped task.
package matcher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

// Strategy is one tier in the matcher's ordered decision sequence.
// TryMatch returns (nil, nil) when the tier has no confident result and the
// next tier should run. An error means the tier itself failed (store
// timeout, model error); the matcher logs it and falls through.
type Strategy interface {
	// Name identifies the tier in decisions and logs.
	Name() string

	// TryMatch evaluates one candidate against the existing-task pool.
	TryMatch(ctx context.Context, cand domain.CandidateTask, pool []domain.LocatedTask) (*domain.MatchResult, error)
}

// Matcher composes strategies in strict priority order.
type Matcher struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// New creates a Matcher from an ordered strategy list.
func New(logger zerolog.Logger, strategies ...Strategy) *Matcher {
	return &Matcher{
		strategies: strategies,
		logger:     logger.With().Str("component", "matcher").Logger(),
	}
}

// Match produces exactly one decision for the candidate: UPDATE with a
// target and delta, or CREATE. Match never fails; tier failures degrade to
// the next tier and exhaustion yields CREATE.
func (m *Matcher) Match(ctx context.Context, cand domain.CandidateTask, pool []domain.LocatedTask) domain.MatchResult {
	for _, s := range m.strategies {
		if err := ctxutil.Canceled(ctx); err != nil {
			break
		}

		result, err := s.TryMatch(ctx, cand, pool)
		if err != nil {
			m.logger.Warn().
				Err(err).
				Str("tier", s.Name()).
				Str("assignee", cand.Assignee).
				Msg("matcher tier failed, falling through")
			continue
		}
		if result == nil {
			continue
		}

		result.Tier = s.Name()
		if result.Action == constants.MatchActionUpdate && result.Target != nil {
			result.Delta = BuildDelta(cand, result.Target.Task)
		}

		m.logger.Debug().
			Str("tier", s.Name()).
			Str("action", result.Action.String()).
			Float64("confidence", result.Confidence).
			Msg("matcher decision")
		return *result
	}

	return domain.MatchResult{
		Action:     constants.MatchActionCreate,
		Confidence: 0,
	}
}
