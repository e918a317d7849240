package matcher

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

// stopwords are dropped before computing word overlap.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {}, "with": {},
	"from": {}, "will": {}, "have": {}, "has": {}, "was": {}, "are": {},
	"been": {}, "were": {}, "its": {}, "also": {}, "into": {}, "about": {},
	"some": {}, "them": {}, "then": {}, "than": {}, "when": {}, "what": {},
	"which": {}, "would": {}, "could": {}, "should": {}, "there": {},
	"their": {}, "our": {}, "your": {}, "they": {}, "need": {}, "needs": {},
	"going": {}, "just": {}, "still": {}, "more": {}, "very": {}, "not": {},
}

// domainKeywords are technical nouns and action verbs whose co-occurrence
// in two descriptions is weak evidence they describe the same work.
var domainKeywords = map[string]struct{}{
	"implement": {}, "fix": {}, "bug": {}, "test": {}, "tests": {},
	"deploy": {}, "review": {}, "api": {}, "database": {}, "login": {},
	"auth": {}, "authentication": {}, "refactor": {}, "design": {},
	"document": {}, "documentation": {}, "migrate": {}, "migration": {},
	"update": {}, "create": {}, "build": {}, "release": {}, "frontend": {},
	"backend": {}, "server": {}, "client": {}, "feature": {}, "error": {},
	"crash": {}, "performance": {}, "optimize": {}, "integrate": {},
	"integration": {}, "endpoint": {}, "schema": {}, "query": {},
	"cache": {}, "config": {}, "pipeline": {}, "dashboard": {},
	"report": {}, "meeting": {}, "debug": {}, "validate": {},
}

// LexicalStrategy is tier 4: a word-overlap fallback used when no model is
// reachable. Its confidence is deliberately capped below what a real model
// judgment can produce.
type LexicalStrategy struct {
	logger zerolog.Logger
}

// NewLexicalStrategy creates the tier.
func NewLexicalStrategy(logger zerolog.Logger) *LexicalStrategy {
	return &LexicalStrategy{
		logger: logger.With().Str("tier", "lexical_fallback").Logger(),
	}
}

// Name implements Strategy.
func (s *LexicalStrategy) Name() string { return "lexical_fallback" }

// TryMatch implements Strategy.
func (s *LexicalStrategy) TryMatch(_ context.Context, cand domain.CandidateTask, pool []domain.LocatedTask) (*domain.MatchResult, error) {
	candTokens := tokenize(cand.Description)
	if len(candTokens) == 0 {
		return nil, nil
	}

	var (
		best      *domain.LocatedTask
		bestScore float64
	)
	for i := range pool {
		lt := pool[i]
		if lt.Task.Assignee != cand.Assignee {
			continue
		}

		score := lexicalScore(cand.Description, lt.Task.Description, candTokens)
		if score > bestScore {
			best = &pool[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < constants.LexicalMatchThreshold {
		return nil, nil
	}

	s.logger.Debug().
		Str("ticket_id", best.Task.TicketID).
		Float64("score", bestScore).
		Msg("lexical tier accepted match")

	return &domain.MatchResult{
		Action:     constants.MatchActionUpdate,
		Confidence: bestScore,
		Target:     best,
	}, nil
}

// lexicalScore combines word-overlap ratio with a small semantic bonus,
// capped so the fallback can never reach a model judgment's ceiling.
func lexicalScore(candText, existingText string, candTokens map[string]struct{}) float64 {
	existingTokens := tokenize(existingText)
	if len(existingTokens) == 0 {
		return 0
	}

	intersection := 0
	for tok := range candTokens {
		if _, ok := existingTokens[tok]; ok {
			intersection++
		}
	}

	larger := len(candTokens)
	if len(existingTokens) > larger {
		larger = len(existingTokens)
	}
	overlap := float64(intersection) / float64(larger)

	combined := 0.6*overlap + 0.4*semanticBonus(candText, existingText, candTokens, existingTokens)
	if combined > constants.LexicalConfidenceCap {
		combined = constants.LexicalConfidenceCap
	}
	return combined
}

// semanticBonus scores shared domain keywords and substring containment.
func semanticBonus(candText, existingText string, candTokens, existingTokens map[string]struct{}) float64 {
	shared := 0
	for tok := range candTokens {
		if _, isKeyword := domainKeywords[tok]; !isKeyword {
			continue
		}
		if _, ok := existingTokens[tok]; ok {
			shared++
		}
	}

	bonus := 0.25 * float64(shared)
	if bonus > 1 {
		bonus = 1
	}

	a := foldText(candText)
	b := foldText(existingText)
	if len(a) >= 10 && len(b) >= 10 && (strings.Contains(a, b) || strings.Contains(b, a)) {
		if bonus < 0.8 {
			bonus = 0.8
		}
	}
	return bonus
}

// tokenize lowercases, strips punctuation, and drops stopwords and tokens
// of two characters or fewer.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(foldText(text)) {
		if len(field) <= 2 {
			continue
		}
		if _, ok := stopwords[field]; ok {
			continue
		}
		tokens[field] = struct{}{}
	}
	return tokens
}

// foldText lowercases and replaces punctuation with spaces.
func foldText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
