package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scrumpilot/internal/constants"
)

func TestStore_RunWindow(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("fallback window when never run", func(t *testing.T) {
		start, end, err := s.RunWindow(ctx, constants.JobProcess, now)
		require.NoError(t, err)
		assert.True(t, end.Equal(now))
		assert.True(t, start.Equal(now.Add(-constants.FallbackLookBack)))
	})

	t.Run("starts at last successful run", func(t *testing.T) {
		firstRun := now.Add(-2 * time.Hour)
		require.NoError(t, s.RecordRun(ctx, constants.JobProcess, firstRun, constants.RunStatusSucceeded))

		start, end, err := s.RunWindow(ctx, constants.JobProcess, now)
		require.NoError(t, err)
		assert.True(t, start.Equal(firstRun))
		assert.True(t, end.Equal(now))
	})

	t.Run("failed run does not advance the window", func(t *testing.T) {
		firstRun := now.Add(-2 * time.Hour)
		failedRun := now.Add(-1 * time.Hour)
		require.NoError(t, s.RecordRun(ctx, constants.JobProcess, failedRun, constants.RunStatusFailed))

		rec, err := s.GetRunRecord(ctx, constants.JobProcess)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, constants.RunStatusFailed, rec.LastStatus)
		assert.True(t, rec.LastRunAt.Equal(failedRun))
		assert.True(t, rec.LastSuccessAt.Equal(firstRun), "last success must survive a failed run")

		start, _, err := s.RunWindow(ctx, constants.JobProcess, now)
		require.NoError(t, err)
		assert.True(t, start.Equal(firstRun))
	})
}

func TestStore_GetRunRecord_NeverRan(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rec, err := s.GetRunRecord(context.Background(), "unknown-job")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
