package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanceled(t *testing.T) {
	t.Parallel()

	t.Run("live context returns nil", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, Canceled(context.Background()))
	})

	t.Run("canceled context returns Canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, Canceled(ctx), context.Canceled)
	})

	t.Run("expired deadline returns DeadlineExceeded", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		assert.ErrorIs(t, Canceled(ctx), context.DeadlineExceeded)
	})
}
