package matcher

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

// ticketRefPattern matches ticket-style tokens in free text, tolerating
// case and separator variants: "SP3", "sp 12", "SP-13".
var ticketRefPattern = regexp.MustCompile(`(?i)\bSP[\s-]*(\d+)\b`)

// NormalizeTicketRef canonicalizes a ticket-style token to "SP-<n>" form:
// uppercase, whitespace stripped, dash inserted. Returns ("", false) when
// the token does not parse as a ticket reference.
func NormalizeTicketRef(token string) (string, bool) {
	m := ticketRefPattern.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%d", constants.TicketPrefix, n), true
}

// ExplicitReferenceStrategy is tier 1: an explicit ticket token in the
// candidate resolves directly to the referenced task with confidence 1.0,
// bypassing all similarity machinery. A token that parses but matches no
// existing task is logged and falls through — a dangling reference in a
// transcript is not fatal.
type ExplicitReferenceStrategy struct {
	logger zerolog.Logger
}

// NewExplicitReferenceStrategy creates the tier.
func NewExplicitReferenceStrategy(logger zerolog.Logger) *ExplicitReferenceStrategy {
	return &ExplicitReferenceStrategy{
		logger: logger.With().Str("tier", "explicit_reference").Logger(),
	}
}

// Name implements Strategy.
func (s *ExplicitReferenceStrategy) Name() string { return "explicit_reference" }

// TryMatch implements Strategy.
func (s *ExplicitReferenceStrategy) TryMatch(_ context.Context, cand domain.CandidateTask, pool []domain.LocatedTask) (*domain.MatchResult, error) {
	ref, ok := s.extractRef(cand)
	if !ok {
		return nil, nil
	}

	for _, lt := range pool {
		if lt.Task.TicketID == ref {
			target := lt
			return &domain.MatchResult{
				Action:     constants.MatchActionUpdate,
				Confidence: 1.0,
				Target:     &target,
			}, nil
		}
	}

	// Dangling reference: log the miss with full context and fall through.
	available := make([]string, 0, len(pool))
	for _, lt := range pool {
		available = append(available, lt.Task.TicketID)
	}
	s.logger.Warn().
		Str("reference", ref).
		Str("candidate_text", cand.Description).
		Strs("available_ids", available).
		Msg("explicit ticket reference matches no existing task")
	return nil, nil
}

// extractRef finds the candidate's ticket reference: an explicit hint from
// extraction first, then a token in the description text.
func (s *ExplicitReferenceStrategy) extractRef(cand domain.CandidateTask) (string, bool) {
	if cand.ExistingTaskID != "" {
		if ref, ok := NormalizeTicketRef(cand.ExistingTaskID); ok {
			return ref, true
		}
	}
	return NormalizeTicketRef(cand.Description)
}
