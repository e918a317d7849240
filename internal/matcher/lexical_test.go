package matcher

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

func TestLexicalStrategy_TryMatch(t *testing.T) {
	t.Parallel()

	s := NewLexicalStrategy(zerolog.Nop())
	pool := []domain.LocatedTask{
		{
			Task: domain.Task{
				TicketID:    "SP-1",
				Description: "fix the login bug in the auth module",
				Assignee:    "alice",
				Type:        constants.TaskTypeCoding,
			},
		},
		{
			Task: domain.Task{
				TicketID:    "SP-2",
				Description: "write the quarterly planning report",
				Assignee:    "alice",
				Type:        constants.TaskTypeNonCoding,
			},
		},
		{
			Task: domain.Task{
				TicketID:    "SP-3",
				Description: "fix login bug in auth module",
				Assignee:    "bob",
				Type:        constants.TaskTypeCoding,
			},
		},
	}

	t.Run("high overlap matches same assignee", func(t *testing.T) {
		t.Parallel()
		result, err := s.TryMatch(context.Background(), domain.CandidateTask{
			Description: "fix login bug in auth module",
			Assignee:    "alice",
		}, pool)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, constants.MatchActionUpdate, result.Action)
		assert.Equal(t, "SP-1", result.Target.Task.TicketID)
		assert.LessOrEqual(t, result.Confidence, constants.LexicalConfidenceCap)
		assert.GreaterOrEqual(t, result.Confidence, constants.LexicalMatchThreshold)
	})

	t.Run("other assignee never matches", func(t *testing.T) {
		t.Parallel()
		result, err := s.TryMatch(context.Background(), domain.CandidateTask{
			Description: "fix login bug in auth module",
			Assignee:    "carol",
		}, pool)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("unrelated text falls through", func(t *testing.T) {
		t.Parallel()
		result, err := s.TryMatch(context.Background(), domain.CandidateTask{
			Description: "migrate billing database schema",
			Assignee:    "alice",
		}, pool)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("empty description falls through", func(t *testing.T) {
		t.Parallel()
		result, err := s.TryMatch(context.Background(), domain.CandidateTask{
			Description: "",
			Assignee:    "alice",
		}, pool)
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens := tokenize("Fix the Login-Bug, in THE auth module!")
	assert.Contains(t, tokens, "fix")
	assert.Contains(t, tokens, "login")
	assert.Contains(t, tokens, "bug")
	assert.Contains(t, tokens, "auth")
	assert.Contains(t, tokens, "module")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "in")
}
