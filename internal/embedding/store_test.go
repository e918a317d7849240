package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scrumpilot/internal/clock"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// memIndex is an in-memory TaskIndex over a flat task list.
type memIndex struct {
	tasks []domain.LocatedTask
}

func (m *memIndex) FindTask(_ context.Context, ticketID string) (*domain.LocatedTask, error) {
	for i := range m.tasks {
		if m.tasks[i].Task.TicketID == ticketID {
			lt := m.tasks[i]
			return &lt, nil
		}
	}
	return nil, errors.ErrTaskNotFound
}

func (m *memIndex) SetTaskEmbedding(_ context.Context, path domain.TaskPath, vector []float64, meta *domain.EmbeddingMetadata) error {
	for i := range m.tasks {
		if m.tasks[i].Path == path {
			m.tasks[i].Task.Embedding = vector
			m.tasks[i].Task.EmbeddingMeta = meta
			return nil
		}
	}
	return errors.ErrTaskNotFound
}

func (m *memIndex) ClearTaskEmbedding(_ context.Context, ticketID string) (bool, error) {
	for i := range m.tasks {
		if m.tasks[i].Task.TicketID == ticketID && len(m.tasks[i].Task.Embedding) > 0 {
			m.tasks[i].Task.Embedding = nil
			m.tasks[i].Task.EmbeddingMeta = nil
			return true, nil
		}
	}
	return false, nil
}

func (m *memIndex) AllTasks(_ context.Context) ([]domain.LocatedTask, error) {
	out := make([]domain.LocatedTask, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

// countingEmbedder returns a fixed vector and counts invocations.
type countingEmbedder struct {
	vector []float64
	calls  int
	inputs []string
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.calls++
	e.inputs = append(e.inputs, text)
	return e.vector, nil
}

func (e *countingEmbedder) EmbeddingModel() string { return "test-embedding-model" }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var _ clock.Clock = fixedClock{}

func indexWith(tasks ...domain.Task) *memIndex {
	idx := &memIndex{}
	for i, task := range tasks {
		idx.tasks = append(idx.tasks, domain.LocatedTask{
			Task: task,
			Path: domain.TaskPath{
				ContainerID: "run-1",
				Participant: task.Assignee,
				Kind:        task.Type,
				Index:       i,
			},
		})
	}
	return idx
}

func TestStore_Upsert(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("generates and stores vector with metadata", func(t *testing.T) {
		t.Parallel()
		idx := indexWith(domain.Task{
			TicketID:    "SP-1",
			Title:       "Fix login",
			Description: "auth module rejects valid tokens",
			Assignee:    "alice",
			Type:        constants.TaskTypeCoding,
		})
		emb := &countingEmbedder{vector: []float64{0.1, 0.2}}
		s := NewStore(idx, emb, fixedClock{now}, zerolog.Nop())

		ok, err := s.Upsert(context.Background(), "SP-1", Context{Assignee: "alice", Type: constants.TaskTypeCoding})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, emb.calls)
		assert.Contains(t, emb.inputs[0], "[assignee: alice]")
		assert.Contains(t, emb.inputs[0], "[type: coding]")

		stored := idx.tasks[0].Task
		assert.Equal(t, []float64{0.1, 0.2}, stored.Embedding)
		require.NotNil(t, stored.EmbeddingMeta)
		assert.Equal(t, "test-embedding-model", stored.EmbeddingMeta.Model)
		assert.Equal(t, ContentHash("Fix login", "auth module rejects valid tokens"), stored.EmbeddingMeta.TextHash)
		assert.Equal(t, 2, stored.EmbeddingMeta.Dimensions)
		assert.Equal(t, now, stored.EmbeddingMeta.GeneratedAt)
	})

	t.Run("unchanged content is a no-op", func(t *testing.T) {
		t.Parallel()
		idx := indexWith(domain.Task{
			TicketID:    "SP-1",
			Title:       "Fix login",
			Description: "auth module rejects valid tokens",
		})
		emb := &countingEmbedder{vector: []float64{0.1, 0.2}}
		s := NewStore(idx, emb, fixedClock{now}, zerolog.Nop())

		ok, err := s.Upsert(context.Background(), "SP-1", Context{})
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Upsert(context.Background(), "SP-1", Context{})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, emb.calls, "unchanged content must not re-embed")
	})

	t.Run("changed content regenerates but keeps GeneratedAt", func(t *testing.T) {
		t.Parallel()
		idx := indexWith(domain.Task{
			TicketID:    "SP-1",
			Title:       "Fix login",
			Description: "auth module rejects valid tokens",
		})
		emb := &countingEmbedder{vector: []float64{0.1, 0.2}}
		s := NewStore(idx, emb, fixedClock{now}, zerolog.Nop())

		_, err := s.Upsert(context.Background(), "SP-1", Context{})
		require.NoError(t, err)
		firstGenerated := idx.tasks[0].Task.EmbeddingMeta.GeneratedAt

		idx.tasks[0].Task.Description = "auth module rejects valid tokens and sessions expire early"
		later := NewStore(idx, emb, fixedClock{now.Add(time.Hour)}, zerolog.Nop())
		ok, err := later.Upsert(context.Background(), "SP-1", Context{})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, emb.calls)

		meta := idx.tasks[0].Task.EmbeddingMeta
		assert.Equal(t, firstGenerated, meta.GeneratedAt)
		assert.Equal(t, now.Add(time.Hour), meta.LastUpdated)
	})

	t.Run("missing task fails soft", func(t *testing.T) {
		t.Parallel()
		s := NewStore(&memIndex{}, &countingEmbedder{vector: []float64{1}}, fixedClock{now}, zerolog.Nop())
		ok, err := s.Upsert(context.Background(), "SP-404", Context{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("too-short text fails soft", func(t *testing.T) {
		t.Parallel()
		idx := indexWith(domain.Task{TicketID: "SP-1", Title: "", Description: "a"})
		emb := &countingEmbedder{vector: []float64{1}}
		s := NewStore(idx, emb, fixedClock{now}, zerolog.Nop())

		ok, err := s.Upsert(context.Background(), "SP-1", Context{})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, emb.calls)
	})
}

func TestStore_Query(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	idx := indexWith(
		domain.Task{TicketID: "SP-1", Embedding: []float64{1, 0}},
		domain.Task{TicketID: "SP-2", Embedding: []float64{0, 1}},
		domain.Task{TicketID: "SP-3", Embedding: []float64{0.9, 0.1}},
		domain.Task{TicketID: "SP-4", Embedding: []float64{1, 0, 0}}, // wrong dims
		domain.Task{TicketID: "SP-5"},                                // no vector
	)
	emb := &countingEmbedder{vector: []float64{1, 0}}
	s := NewStore(idx, emb, fixedClock{now}, zerolog.Nop())

	matches, err := s.Query(context.Background(), "login work", Context{}, 5, constants.VectorSimilarityThreshold)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "SP-1", matches[0].Located.Task.TicketID)
	assert.Equal(t, "SP-3", matches[1].Located.Task.TicketID)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)

	t.Run("topK truncates", func(t *testing.T) {
		matches, err := s.Query(context.Background(), "login work", Context{}, 1, 0.1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "SP-1", matches[0].Located.Task.TicketID)
	})

	t.Run("assignee filter runs before topK", func(t *testing.T) {
		// Alice's only hit ranks below five stronger hits for bob; it must
		// still survive a topK smaller than the full ranking.
		idx := indexWith(
			domain.Task{TicketID: "SP-10", Assignee: "bob", Embedding: []float64{1, 0}},
			domain.Task{TicketID: "SP-11", Assignee: "bob", Embedding: []float64{1, 0}},
			domain.Task{TicketID: "SP-12", Assignee: "bob", Embedding: []float64{1, 0}},
			domain.Task{TicketID: "SP-13", Assignee: "bob", Embedding: []float64{1, 0}},
			domain.Task{TicketID: "SP-14", Assignee: "bob", Embedding: []float64{1, 0}},
			domain.Task{TicketID: "SP-15", Assignee: "alice", Embedding: []float64{0.9, 0.1}},
		)
		s := NewStore(idx, &countingEmbedder{vector: []float64{1, 0}}, fixedClock{now}, zerolog.Nop())

		matches, err := s.Query(context.Background(), "login work", Context{Assignee: "alice"}, 2, 0.5)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "SP-15", matches[0].Located.Task.TicketID)
	})
}

func TestStore_Invalidate(t *testing.T) {
	t.Parallel()

	idx := indexWith(domain.Task{TicketID: "SP-1", Embedding: []float64{1}})
	s := NewStore(idx, &countingEmbedder{}, nil, zerolog.Nop())

	removed, err := s.Invalidate(context.Background(), "SP-1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, idx.tasks[0].Task.Embedding)

	removed, err = s.Invalidate(context.Background(), "SP-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_RebuildStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freshHash := ContentHash("Fresh", "up to date text")

	idx := indexWith(
		domain.Task{TicketID: "SP-1", Title: "Fresh", Description: "up to date text",
			Embedding:     []float64{1},
			EmbeddingMeta: &domain.EmbeddingMetadata{TextHash: freshHash}},
		domain.Task{TicketID: "SP-2", Title: "Stale", Description: "text changed since embedding",
			Embedding:     []float64{1},
			EmbeddingMeta: &domain.EmbeddingMetadata{TextHash: "old-hash"}},
		domain.Task{TicketID: "SP-3", Title: "Naked", Description: "never embedded"},
	)
	emb := &countingEmbedder{vector: []float64{0.5}}
	s := NewStore(idx, emb, fixedClock{now}, zerolog.Nop())

	refreshed, err := s.RebuildStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed)
	assert.Equal(t, 2, emb.calls)
}

func TestStale(t *testing.T) {
	t.Parallel()

	task := domain.Task{Title: "T", Description: "D"}
	assert.True(t, Stale(&task))

	task.Embedding = []float64{1}
	task.EmbeddingMeta = &domain.EmbeddingMetadata{TextHash: ContentHash("T", "D")}
	assert.False(t, Stale(&task))

	task.Description = "changed"
	assert.True(t, Stale(&task))
}
