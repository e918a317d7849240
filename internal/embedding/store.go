package embedding

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/clock"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// Embedder produces a fixed-dimension vector for a text. The dimension is
// whatever the configured model returns and is stored verbatim.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbeddingModel names the model, recorded in embedding metadata.
	EmbeddingModel() string
}

// TaskIndex is the store surface the embedding layer needs: locating tasks,
// writing vectors back, and snapshotting the pool for queries.
type TaskIndex interface {
	FindTask(ctx context.Context, ticketID string) (*domain.LocatedTask, error)
	SetTaskEmbedding(ctx context.Context, path domain.TaskPath, vector []float64, meta *domain.EmbeddingMetadata) error
	ClearTaskEmbedding(ctx context.Context, ticketID string) (bool, error)
	AllTasks(ctx context.Context) ([]domain.LocatedTask, error)
}

// Context carries the structured tags appended to embedding input. Tagging
// biases the vector toward disambiguating metadata (who, what kind, state),
// not just raw text.
type Context struct {
	Assignee string
	Type     constants.TaskType
	Status   constants.TaskStatus
}

// Match is one nearest-neighbor hit from a similarity query.
type Match struct {
	// Located is the matched task with its container path.
	Located domain.LocatedTask

	// Similarity is the raw cosine similarity against the query.
	Similarity float64
}

// Store generates, persists, and queries task embeddings.
type Store struct {
	index    TaskIndex
	embedder Embedder
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewStore creates an embedding store over a task index and embedder.
// A nil clk defaults to the real clock.
func NewStore(index TaskIndex, embedder Embedder, clk clock.Clock, logger zerolog.Logger) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{
		index:    index,
		embedder: embedder,
		clock:    clk,
		logger:   logger.With().Str("component", "embedding").Logger(),
	}
}

// buildInput concatenates the raw text with context tags.
func buildInput(text string, ectx Context) string {
	var b strings.Builder
	b.WriteString(text)
	if ectx.Assignee != "" {
		b.WriteString(" [assignee: " + ectx.Assignee + "]")
	}
	if ectx.Type != "" {
		b.WriteString(" [type: " + ectx.Type.String() + "]")
	}
	if ectx.Status != "" {
		b.WriteString(" [status: " + ectx.Status.String() + "]")
	}
	return b.String()
}

// Upsert generates and stores an embedding for the task identified by
// ticketID, using the task's current title and description.
//
// The call is idempotent on unchanged content: when the stored metadata's
// hash matches the current content hash, no regeneration happens and the
// existing vector is kept.
//
// Upsert fails soft: it returns (false, nil) — "no embedding available" —
// when the text is too short or the task cannot be located. Callers must
// not treat false as fatal.
func (s *Store) Upsert(ctx context.Context, ticketID string, ectx Context) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	lt, err := s.index.FindTask(ctx, ticketID)
	if stderrors.Is(err, errors.ErrTaskNotFound) {
		s.logger.Debug().Str("ticket_id", ticketID).Msg("upsert skipped: task not found")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	text := strings.TrimSpace(lt.Task.Title + " " + lt.Task.Description)
	if len(text) < constants.MinEmbeddingTextLength {
		s.logger.Debug().Str("ticket_id", ticketID).Msg("upsert skipped: text too short")
		return false, nil
	}

	hash := ContentHash(lt.Task.Title, lt.Task.Description)
	if meta := lt.Task.EmbeddingMeta; meta != nil && meta.TextHash == hash && len(lt.Task.Embedding) > 0 {
		// Content unchanged; the stored vector is fresh.
		return true, nil
	}

	vector, err := s.embedder.Embed(ctx, buildInput(text, ectx))
	if err != nil {
		return false, errors.Wrapf(err, "embed task %s", ticketID)
	}

	now := s.clock.Now().UTC()
	meta := &domain.EmbeddingMetadata{
		Model:       s.embedder.EmbeddingModel(),
		TextHash:    hash,
		GeneratedAt: now,
		LastUpdated: now,
		Dimensions:  len(vector),
	}
	if prev := lt.Task.EmbeddingMeta; prev != nil && !prev.GeneratedAt.IsZero() {
		meta.GeneratedAt = prev.GeneratedAt
	}

	if err := s.index.SetTaskEmbedding(ctx, lt.Path, vector, meta); err != nil {
		return false, err
	}

	s.logger.Debug().
		Str("ticket_id", ticketID).
		Int("dimensions", len(vector)).
		Msg("embedding stored")
	return true, nil
}

// Query embeds the given text (with the same context tagging as Upsert) and
// returns up to topK stored tasks whose cosine similarity meets threshold,
// sorted descending. Ties keep insertion order (stable sort). Only vectors
// of matching dimensionality are compared.
//
// When ectx.Assignee is set, only that assignee's tasks are considered;
// the filter runs before topK so another assignee's stronger hits cannot
// crowd a valid one out of the truncated result.
func (s *Store) Query(ctx context.Context, text string, ectx Context, topK int, threshold float64) ([]Match, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	query, err := s.embedder.Embed(ctx, buildInput(text, ectx))
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	pool, err := s.index.AllTasks(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, lt := range pool {
		if ectx.Assignee != "" && lt.Task.Assignee != ectx.Assignee {
			continue
		}
		if len(lt.Task.Embedding) == 0 || len(lt.Task.Embedding) != len(query) {
			continue
		}
		sim := CosineSimilarity(query, lt.Task.Embedding)
		if sim >= threshold {
			matches = append(matches, Match{Located: lt, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Invalidate unsets the vector for a task. Returns false when the task does
// not exist. This is the only non-administrative path that removes a vector.
func (s *Store) Invalidate(ctx context.Context, ticketID string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}
	removed, err := s.index.ClearTaskEmbedding(ctx, ticketID)
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info().Str("ticket_id", ticketID).Msg("embedding invalidated")
	}
	return removed, nil
}

// RebuildStale re-upserts every task whose stored hash no longer matches
// its content, or that has no vector at all. Returns the number of tasks
// refreshed. Used by the administrative rebuild command.
func (s *Store) RebuildStale(ctx context.Context) (int, error) {
	pool, err := s.index.AllTasks(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, lt := range pool {
		if err := ctxutil.Canceled(ctx); err != nil {
			return refreshed, err
		}

		hash := ContentHash(lt.Task.Title, lt.Task.Description)
		if meta := lt.Task.EmbeddingMeta; meta != nil && meta.TextHash == hash && len(lt.Task.Embedding) > 0 {
			continue
		}

		ok, err := s.Upsert(ctx, lt.Task.TicketID, Context{
			Assignee: lt.Task.Assignee,
			Type:     lt.Task.Type,
			Status:   lt.Task.Status,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("ticket_id", lt.Task.TicketID).Msg("rebuild failed for task")
			continue
		}
		if ok {
			refreshed++
		}
	}
	return refreshed, nil
}

// Stale reports whether a task's embedding is missing or out of date with
// respect to its current title and description.
func Stale(t *domain.Task) bool {
	if t.EmbeddingMeta == nil || len(t.Embedding) == 0 {
		return true
	}
	return t.EmbeddingMeta.TextHash != ContentHash(t.Title, t.Description)
}
