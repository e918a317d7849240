package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"mismatched dimensions", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, CosineSimilarity(tc.a, tc.b), 0.0001)
		})
	}
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	h1 := ContentHash("Fix login", "the auth module rejects valid tokens")
	h2 := ContentHash("Fix login", "the auth module rejects valid tokens")
	h3 := ContentHash("Fix login", "a different description")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)

	// Surrounding whitespace does not change identity.
	assert.Equal(t, h1, ContentHash("  Fix login  ", "  the auth module rejects valid tokens\n"))
}
