package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, Wrap(nil, "context"))
		require.NoError(t, Wrapf(nil, "context %d", 1))
	})

	t.Run("preserves the sentinel chain", func(t *testing.T) {
		t.Parallel()
		err := Wrap(ErrStorage, "save container")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrStorage))
		assert.Equal(t, "save container: "+ErrStorage.Error(), err.Error())
	})

	t.Run("wrapf interpolates", func(t *testing.T) {
		t.Parallel()
		err := Wrapf(ErrTaskNotFound, "ticket %s", "SP-12")
		assert.True(t, stderrors.Is(err, ErrTaskNotFound))
		assert.Contains(t, err.Error(), "ticket SP-12")
	})
}
