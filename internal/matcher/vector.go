package matcher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/embedding"
)

// SimilarityIndex is the embedding store surface the vector tier needs.
type SimilarityIndex interface {
	Query(ctx context.Context, text string, ectx embedding.Context, topK int, threshold float64) ([]embedding.Match, error)
}

// VectorStrategy is tier 2: nearest-neighbor lookup over stored task
// embeddings. Hits are filtered to the candidate's assignee; a hit of the
// other work type is allowed but its confidence is multiplied by the
// cross-type penalty. The top hit is accepted only at or above the
// similarity threshold.
type VectorStrategy struct {
	index  SimilarityIndex
	logger zerolog.Logger
}

// NewVectorStrategy creates the tier.
func NewVectorStrategy(index SimilarityIndex, logger zerolog.Logger) *VectorStrategy {
	return &VectorStrategy{
		index:  index,
		logger: logger.With().Str("tier", "vector_similarity").Logger(),
	}
}

// Name implements Strategy.
func (s *VectorStrategy) Name() string { return "vector_similarity" }

// TryMatch implements Strategy.
func (s *VectorStrategy) TryMatch(ctx context.Context, cand domain.CandidateTask, _ []domain.LocatedTask) (*domain.MatchResult, error) {
	matches, err := s.index.Query(ctx, cand.Description, embedding.Context{
		Assignee: cand.Assignee,
		Type:     cand.Type,
	}, constants.DefaultQueryTopK, constants.VectorSimilarityThreshold)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		if m.Located.Task.Assignee != cand.Assignee {
			continue
		}

		multiplier := 1.0
		if m.Located.Task.Type != cand.Type {
			multiplier = constants.CrossTypeMultiplier
		}

		target := m.Located
		s.logger.Debug().
			Str("ticket_id", target.Task.TicketID).
			Float64("similarity", m.Similarity).
			Float64("multiplier", multiplier).
			Msg("vector tier accepted top hit")

		return &domain.MatchResult{
			Action:     constants.MatchActionUpdate,
			Confidence: m.Similarity * multiplier,
			Target:     &target,
		}, nil
	}

	return nil, nil
}
