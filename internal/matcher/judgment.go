package matcher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/ai"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

// SimilarityJudge is the model surface the judgment tier needs.
// *ai.Judge satisfies it.
type SimilarityJudge interface {
	Judge(ctx context.Context, candidateText, existingText string, jctx ai.JudgeContext) (domain.Judgment, error)
}

// JudgmentStrategy is tier 3: per-pair LLM judgment, used when the vector
// tier is unavailable or inconclusive. It keeps the highest-confidence
// positive verdict that clears an adaptive threshold.
//
// The threshold adapts to the evidence at hand: a sparse pool relaxes the
// bar (little to compare against), a long candidate description raises it
// (more text should produce more certainty), and a very short one lowers it
// (short text is inherently ambiguous).
type JudgmentStrategy struct {
	judge  SimilarityJudge
	logger zerolog.Logger
}

// NewJudgmentStrategy creates the tier.
func NewJudgmentStrategy(judge SimilarityJudge, logger zerolog.Logger) *JudgmentStrategy {
	return &JudgmentStrategy{
		judge:  judge,
		logger: logger.With().Str("tier", "llm_judgment").Logger(),
	}
}

// Name implements Strategy.
func (s *JudgmentStrategy) Name() string { return "llm_judgment" }

// adaptiveThreshold computes the confidence bar for a candidate given the
// compatible-pool size.
func adaptiveThreshold(description string, poolSize int) float64 {
	switch {
	case poolSize <= constants.SparsePoolSize:
		return constants.JudgmentSparseThreshold
	case len(description) > constants.LongDescriptionChars:
		return constants.JudgmentLongTextThreshold
	case len(description) < constants.ShortDescriptionChars:
		return constants.JudgmentShortTextThreshold
	default:
		return constants.JudgmentBaseThreshold
	}
}

// TryMatch implements Strategy. A judge failure on one pair skips that pair
// rather than aborting the tier; when every pair fails the tier falls
// through with no result.
func (s *JudgmentStrategy) TryMatch(ctx context.Context, cand domain.CandidateTask, pool []domain.LocatedTask) (*domain.MatchResult, error) {
	candidates := compatiblePool(cand, pool)
	if len(candidates) == 0 {
		return nil, nil
	}

	threshold := adaptiveThreshold(cand.Description, len(candidates))

	var (
		best      *domain.LocatedTask
		bestScore float64
		reasoning string
	)
	for i := range candidates {
		lt := candidates[i]
		verdict, err := s.judge.Judge(ctx, cand.Description, lt.Task.Description, ai.JudgeContext{
			Assignee: cand.Assignee,
			TypeA:    cand.Type.String(),
			TypeB:    lt.Task.Type.String(),
		})
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("ticket_id", lt.Task.TicketID).
				Msg("judgment failed for pair, skipping")
			continue
		}

		if verdict.IsMatch && verdict.Confidence > bestScore {
			best = &candidates[i]
			bestScore = verdict.Confidence
			reasoning = verdict.Reasoning
		}
	}

	if best == nil || bestScore < threshold {
		return nil, nil
	}

	s.logger.Debug().
		Str("ticket_id", best.Task.TicketID).
		Float64("confidence", bestScore).
		Float64("threshold", threshold).
		Msg("judgment tier accepted match")

	return &domain.MatchResult{
		Action:     constants.MatchActionUpdate,
		Confidence: bestScore,
		Target:     best,
		Reasoning:  reasoning,
	}, nil
}

// compatiblePool filters the pool to the candidate's assignee. Both work
// types are kept: the type is soft, and the judge sees it as context.
func compatiblePool(cand domain.CandidateTask, pool []domain.LocatedTask) []domain.LocatedTask {
	var out []domain.LocatedTask
	for _, lt := range pool {
		if lt.Task.Assignee == cand.Assignee {
			out = append(out, lt)
		}
	}
	return out
}
