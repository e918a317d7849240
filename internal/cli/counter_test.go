package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scrumpilot/internal/config"
	scrumerrors "github.com/mrz1836/scrumpilot/internal/errors"
)

func testApp(t *testing.T) *app {
	t.Helper()
	return &app{
		cfg: &config.Config{
			Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		},
		logger: zerolog.Nop(),
	}
}

func TestRunCounterInit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rejects starting number below one", func(t *testing.T) {
		t.Parallel()
		err := runCounterInit(ctx, &app{}, &bytes.Buffer{}, 0)
		require.ErrorIs(t, err, scrumerrors.ErrInvalidArgument)
	})

	t.Run("initializes and reports the first ticket", func(t *testing.T) {
		t.Parallel()
		a := testApp(t)
		var out bytes.Buffer

		require.NoError(t, runCounterInit(ctx, a, &out, 100))
		assert.Contains(t, out.String(), "first ticket will be SP-100")
	})

	t.Run("second init reports the conflict", func(t *testing.T) {
		t.Parallel()
		a := testApp(t)
		require.NoError(t, runCounterInit(ctx, a, &bytes.Buffer{}, 100))

		var out bytes.Buffer
		err := runCounterInit(ctx, a, &out, 1)
		require.ErrorIs(t, err, scrumerrors.ErrCounterConflict)
		assert.Contains(t, out.String(), "already initialized")
		assert.Contains(t, out.String(), "SP-100")
	})
}

func TestRunCounterReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("refuses without force", func(t *testing.T) {
		t.Parallel()
		err := runCounterReset(ctx, &app{}, &bytes.Buffer{}, 41, false)
		require.ErrorIs(t, err, scrumerrors.ErrInvalidArgument)
	})

	t.Run("rejects negative value", func(t *testing.T) {
		t.Parallel()
		err := runCounterReset(ctx, &app{}, &bytes.Buffer{}, -1, true)
		require.ErrorIs(t, err, scrumerrors.ErrInvalidArgument)
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()
		a := testApp(t)
		var out bytes.Buffer

		require.NoError(t, runCounterReset(ctx, a, &out, 41, true))
		assert.Contains(t, out.String(), "next ticket will be SP-42")

		out.Reset()
		require.NoError(t, runCounterPeek(ctx, a, &out))
		assert.Contains(t, out.String(), "next ticket: SP-42")
	})
}
