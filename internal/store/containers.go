package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// SaveContainer inserts or replaces a task container document.
func (s *Store) SaveContainer(ctx context.Context, c *domain.TaskContainer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if c.SchemaVersion == 0 {
		c.SchemaVersion = constants.SchemaVersion
	}

	doc, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal container")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO containers (id, created_at, document) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document`,
		c.ID, c.CreatedAt.UTC(), string(doc),
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "save container: "+err.Error())
	}
	return nil
}

// GetContainer loads one container document by ID.
func (s *Store) GetContainer(ctx context.Context, id string) (*domain.TaskContainer, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM containers WHERE id = ?`, id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrContainerNotFound, "container %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "get container: "+err.Error())
	}

	var c domain.TaskContainer
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, errors.Wrapf(err, "unmarshal container %s", id)
	}
	return &c, nil
}

// AllTasks returns every task across all containers paired with its path.
// This is the matcher's pool snapshot, taken once per run. Containers are
// iterated oldest first so pool ordering is stable.
func (s *Store) AllTasks(ctx context.Context) ([]domain.LocatedTask, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM containers ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "list containers: "+err.Error())
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var pool []domain.LocatedTask
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrStorage, "scan container: "+err.Error())
		}
		var c domain.TaskContainer
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, errors.Wrap(err, "unmarshal container")
		}
		pool = append(pool, locateTasks(&c)...)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "iterate containers: "+err.Error())
	}
	return pool, nil
}

// participantOrder returns a container's participant names sorted
// lexicographically so flattening is deterministic.
func participantOrder(c *domain.TaskContainer) []string {
	names := make([]string, 0, len(c.Participants))
	for name := range c.Participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// locateTasks flattens one container into located tasks in deterministic
// order: participants lexicographically, coding before non-coding.
func locateTasks(c *domain.TaskContainer) []domain.LocatedTask {
	var out []domain.LocatedTask
	for _, name := range participantOrder(c) {
		lists := c.Participants[name]
		for i, t := range lists.Coding {
			out = append(out, domain.LocatedTask{
				Task: t,
				Path: domain.TaskPath{ContainerID: c.ID, Participant: name, Kind: constants.TaskTypeCoding, Index: i},
			})
		}
		for i, t := range lists.NonCoding {
			out = append(out, domain.LocatedTask{
				Task: t,
				Path: domain.TaskPath{ContainerID: c.ID, Participant: name, Kind: constants.TaskTypeNonCoding, Index: i},
			})
		}
	}
	return out
}

// FindTask locates a task by ticket ID across all containers.
// Containment is checked cheaply on the JSON text before decoding.
func (s *Store) FindTask(ctx context.Context, ticketID string) (*domain.LocatedTask, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM containers WHERE document LIKE ? ORDER BY created_at ASC`,
		`%"`+ticketID+`"%`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "find task: "+err.Error())
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrStorage, "scan container: "+err.Error())
		}
		var c domain.TaskContainer
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, errors.Wrap(err, "unmarshal container")
		}
		for _, lt := range locateTasks(&c) {
			if lt.Task.TicketID == ticketID {
				found := lt
				return &found, nil
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "iterate containers: "+err.Error())
	}
	return nil, errors.Wrapf(errors.ErrTaskNotFound, "ticket %s", ticketID)
}

// CreateTask allocates a fresh ticket ID and appends the task to the given
// container under (assignee, kind). The container and participant entry are
// created when missing. Returns the created task with its path.
//
// Allocation happens before the container write: a task without a durable
// ID is not safely recoverable, so an allocation failure aborts creation.
func (s *Store) CreateTask(ctx context.Context, containerID, assignee string, kind constants.TaskType, task domain.Task) (*domain.LocatedTask, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	ticketID, err := s.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.GetContainer(ctx, containerID)
	if stderrors.Is(err, errors.ErrContainerNotFound) {
		c = &domain.TaskContainer{
			ID:            containerID,
			CreatedAt:     time.Now().UTC(),
			Participants:  make(map[string]*domain.TaskLists),
			SchemaVersion: constants.SchemaVersion,
		}
	} else if err != nil {
		return nil, err
	}
	if c.Participants == nil {
		c.Participants = make(map[string]*domain.TaskLists)
	}

	lists, ok := c.Participants[assignee]
	if !ok {
		lists = &domain.TaskLists{}
		c.Participants[assignee] = lists
	}

	now := time.Now().UTC()
	task.TicketID = ticketID
	task.Assignee = assignee
	task.Type = kind
	if task.Status == "" {
		task.Status = constants.TaskStatusToDo
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	list := lists.ListFor(kind)
	*list = append(*list, task)
	index := len(*list) - 1

	if err := s.SaveContainer(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", ticketID).
		Str("assignee", assignee).
		Str("container_id", containerID).
		Msg("task created")

	return &domain.LocatedTask{
		Task: task,
		Path: domain.TaskPath{ContainerID: containerID, Participant: assignee, Kind: kind, Index: index},
	}, nil
}

// ApplyUpdate patches the task at the given path with a merge delta.
//
// The patch is blind: the path was resolved by the matcher at decision time
// and is not re-resolved here. When the path no longer resolves, or a
// different ticket sits at it (the container was restructured in between),
// the result reports Matched:false and nothing is written — the caller must
// surface this, not swallow it.
func (s *Store) ApplyUpdate(ctx context.Context, path domain.TaskPath, delta *domain.MergeDelta) (domain.PatchResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.PatchResult{}, err
	}

	c, err := s.GetContainer(ctx, path.ContainerID)
	if stderrors.Is(err, errors.ErrContainerNotFound) {
		return domain.PatchResult{Matched: false}, nil
	}
	if err != nil {
		return domain.PatchResult{}, err
	}

	task := taskAt(c, path)
	if task == nil || (delta.ExpectedTicketID != "" && task.TicketID != delta.ExpectedTicketID) {
		s.logger.Warn().
			Str("container_id", path.ContainerID).
			Str("participant", path.Participant).
			Int("index", path.Index).
			Str("expected_ticket", delta.ExpectedTicketID).
			Msg("patch target not found or mismatched")
		return domain.PatchResult{Matched: false}, nil
	}

	if delta.Empty() {
		return domain.PatchResult{Matched: true, Modified: false}, nil
	}

	applyDelta(task, delta)

	if err := s.SaveContainer(ctx, c); err != nil {
		return domain.PatchResult{}, err
	}

	s.logger.Info().
		Str("ticket_id", task.TicketID).
		Str("status", task.Status.String()).
		Float64("time_taken", task.TimeTaken).
		Msg("task updated")

	return domain.PatchResult{Matched: true, Modified: true}, nil
}

// taskAt resolves a path inside a container. Returns nil when the path does
// not resolve.
func taskAt(c *domain.TaskContainer, path domain.TaskPath) *domain.Task {
	lists, ok := c.Participants[path.Participant]
	if !ok {
		return nil
	}
	list := lists.ListFor(path.Kind)
	if path.Index < 0 || path.Index >= len(*list) {
		return nil
	}
	return &(*list)[path.Index]
}

// applyDelta merges a delta into a task in place.
// TimeTaken accumulates; EstimatedTime is first-writer-wins.
func applyDelta(task *domain.Task, delta *domain.MergeDelta) {
	if delta.AppendDescription != "" {
		task.Description += "\n\nUpdate: " + delta.AppendDescription
	}
	if delta.Status != "" {
		task.Status = delta.Status
	}
	if delta.AddTimeTaken > 0 {
		task.TimeTaken += delta.AddTimeTaken
	}
	if delta.SetEstimatedTime > 0 && task.EstimatedTime == 0 {
		task.EstimatedTime = delta.SetEstimatedTime
	}
	task.UpdatedAt = time.Now().UTC()
}

// SetTaskEmbedding stores a vector and its metadata on the task at path.
func (s *Store) SetTaskEmbedding(ctx context.Context, path domain.TaskPath, vector []float64, meta *domain.EmbeddingMetadata) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	c, err := s.GetContainer(ctx, path.ContainerID)
	if err != nil {
		return err
	}
	task := taskAt(c, path)
	if task == nil {
		return errors.Wrapf(errors.ErrTaskNotFound, "path %s/%s/%s[%d]",
			path.ContainerID, path.Participant, path.Kind, path.Index)
	}

	task.Embedding = vector
	task.EmbeddingMeta = meta
	return s.SaveContainer(ctx, c)
}

// SetTaskIssueRef records the external tracker issue on the task at path.
// The ticket ID is verified so a restructured container is not patched.
func (s *Store) SetTaskIssueRef(ctx context.Context, path domain.TaskPath, ticketID string, ref domain.TicketRef) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	c, err := s.GetContainer(ctx, path.ContainerID)
	if err != nil {
		return err
	}
	task := taskAt(c, path)
	if task == nil || task.TicketID != ticketID {
		return errors.Wrapf(errors.ErrTaskNotFound, "ticket %s not at path %s/%s/%s[%d]",
			ticketID, path.ContainerID, path.Participant, path.Kind, path.Index)
	}

	task.IssueKey = ref.IssueKey
	task.IssueURL = ref.IssueURL
	return s.SaveContainer(ctx, c)
}

// ClearTaskEmbedding unsets a task's vector and metadata. This is the
// administrative cleanup action; nothing else removes embeddings.
func (s *Store) ClearTaskEmbedding(ctx context.Context, ticketID string) (bool, error) {
	lt, err := s.FindTask(ctx, ticketID)
	if stderrors.Is(err, errors.ErrTaskNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	c, err := s.GetContainer(ctx, lt.Path.ContainerID)
	if err != nil {
		return false, err
	}
	task := taskAt(c, lt.Path)
	if task == nil {
		return false, nil
	}

	task.Embedding = nil
	task.EmbeddingMeta = nil
	if err := s.SaveContainer(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}
