package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

func TestDeriveTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			"short description",
			"fix the login bug",
			"Fix The Login Bug",
		},
		{
			"truncates to leading words",
			"implement the new payment endpoint for mobile clients and the web dashboard",
			"Implement The New Payment Endpoint For Mobile Clients",
		},
		{
			"trailing punctuation trimmed",
			"update the docs.",
			"Update The Docs",
		},
		{
			"empty description",
			"   ",
			"Untitled Task",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, DeriveTitle(tc.description))
		})
	}
}

func TestNewTaskPayload(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		task := NewTaskPayload(domain.CandidateTask{
			Description: "build the reporting dashboard",
			Assignee:    "alice",
			Type:        constants.TaskTypeCoding,
		})

		assert.Equal(t, "Build The Reporting Dashboard", task.Title)
		assert.Equal(t, constants.TaskStatusToDo, task.Status)
		assert.Equal(t, constants.TaskTypeCoding, task.Type)
		assert.Equal(t, "alice", task.Assignee)
		assert.Zero(t, task.EstimatedTime)
		assert.False(t, task.IsFuturePlan)
	})

	t.Run("hints and parsed time carry over", func(t *testing.T) {
		t.Parallel()
		task := NewTaskPayload(domain.CandidateTask{
			Description:   "started the schema migration, will take 6 hours",
			Assignee:      "bob",
			Type:          constants.TaskTypeCoding,
			EstimatedTime: 0,
			IsFuturePlan:  true,
		})

		assert.Equal(t, constants.TaskStatusInProgress, task.Status)
		assert.InDelta(t, 6.0, task.EstimatedTime, 0.0001)
		assert.True(t, task.IsFuturePlan)
	})

	t.Run("completed with spent time", func(t *testing.T) {
		t.Parallel()
		task := NewTaskPayload(domain.CandidateTask{
			Description: "completed the release notes, took 2 hours",
			Assignee:    "carol",
			Type:        constants.TaskTypeNonCoding,
		})

		assert.Equal(t, constants.TaskStatusCompleted, task.Status)
		assert.InDelta(t, 2.0, task.TimeTaken, 0.0001)
	})
}
