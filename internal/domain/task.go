// Package domain provides shared domain types for the ScrumPilot pipeline.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"time"

	"github.com/mrz1836/scrumpilot/internal/constants"
)

// Task represents a single tracked unit of work extracted from meeting
// transcripts. Tasks are nested inside per-run containers under their
// assignee's name; they are never stored as independent top-level rows.
//
// Example JSON representation:
//
//	{
//	    "ticket_id": "SP-42",
//	    "title": "Implement Login Flow",
//	    "description": "Implement login\n\nUpdate: spent 3 hours on SP-42",
//	    "status": "in_progress",
//	    "type": "coding",
//	    "estimated_time": 5,
//	    "time_taken": 3,
//	    "is_future_plan": false,
//	    "assignee": "Alice",
//	    "created_at": "2026-08-29T10:00:00Z",
//	    "updated_at": "2026-08-29T10:05:00Z"
//	}
type Task struct {
	// TicketID is the unique sequential identifier for the task.
	// Format: SP-<n>. Assigned once at creation, immutable thereafter.
	TicketID string `json:"ticket_id"`

	// Title is a short human label, generated once at creation.
	Title string `json:"title"`

	// Description is free text. Later matches append "\n\nUpdate: <text>"
	// rather than overwrite.
	Description string `json:"description"`

	// Status is the current lifecycle state (to_do, in_progress, completed).
	Status constants.TaskStatus `json:"status"`

	// Type classifies the work (coding, non_coding). Set at creation;
	// cross-type matches are allowed with a confidence penalty.
	Type constants.TaskType `json:"type"`

	// EstimatedTime is the estimated effort in hours. Set once:
	// the first non-zero value wins across merges.
	EstimatedTime float64 `json:"estimated_time"`

	// TimeTaken is the accumulated hours spent. Merges add to it.
	TimeTaken float64 `json:"time_taken"`

	// IsFuturePlan distinguishes aspirational mentions from active work.
	IsFuturePlan bool `json:"is_future_plan"`

	// Assignee is the participant name under which the task is nested
	// in its container. Immutable.
	Assignee string `json:"assignee"`

	// Embedding is the fixed-length vector for similarity search.
	// Nil when no embedding has been generated or after invalidation.
	Embedding []float64 `json:"embedding,omitempty"`

	// EmbeddingMeta describes the stored embedding. Nil when Embedding is nil.
	EmbeddingMeta *EmbeddingMetadata `json:"embedding_metadata,omitempty"`

	// IssueKey is the external tracker's issue key, when a ticket has been
	// filed. Distinct from TicketID; filing is best-effort.
	IssueKey string `json:"issue_key,omitempty"`

	// IssueURL is the external tracker's issue URL, when available.
	IssueURL string `json:"issue_url,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// EmbeddingMetadata tracks the provenance and freshness of a task's embedding.
//
// Invariant: TextHash must equal the content hash of the current
// title + description. A mismatch marks the embedding stale and due
// for regeneration.
type EmbeddingMetadata struct {
	// Model is the embedding model that produced the vector.
	Model string `json:"model"`

	// TextHash is the content hash of the raw title + description at the
	// time the vector was generated.
	TextHash string `json:"text_hash"`

	// GeneratedAt is when the vector was first generated.
	GeneratedAt time.Time `json:"generated_at"`

	// LastUpdated is when the vector was last regenerated.
	LastUpdated time.Time `json:"last_updated"`

	// Dimensions is the vector length, stored verbatim from the model.
	Dimensions int `json:"dimensions"`
}

// TaskLists holds the two task lists kept per participant.
// The pair is an explicit struct rather than dynamically-keyed object
// properties so path resolution is a typed lookup.
type TaskLists struct {
	// Coding holds implementation tasks.
	Coding []Task `json:"coding"`

	// NonCoding holds everything else.
	NonCoding []Task `json:"non_coding"`
}

// ListFor returns a pointer to the list for the given task type.
func (l *TaskLists) ListFor(t constants.TaskType) *[]Task {
	if t == constants.TaskTypeNonCoding {
		return &l.NonCoding
	}
	return &l.Coding
}

// TaskContainer is the per-transcript-processing-run document holding a
// timestamp and a mapping from participant name to that participant's
// task lists. Tasks live inside containers; a task's location for update
// purposes is a (container, participant, list, index) path.
type TaskContainer struct {
	// ID is the container document identifier.
	ID string `json:"id"`

	// CreatedAt is when the container's processing run occurred.
	CreatedAt time.Time `json:"created_at"`

	// Participants maps participant name to that participant's task lists.
	Participants map[string]*TaskLists `json:"participants"`

	// SchemaVersion indicates the version of the container document schema.
	SchemaVersion int `json:"schema_version"`
}

// TaskPath locates one task inside a container. Paths are resolved by the
// matcher at decision time and patched blindly at write time; if the
// container has been restructured in between, the patch reports no match.
type TaskPath struct {
	// ContainerID is the container document holding the task.
	ContainerID string `json:"container_id"`

	// Participant is the assignee name the task is nested under.
	Participant string `json:"participant"`

	// Kind selects the coding or non_coding list.
	Kind constants.TaskType `json:"kind"`

	// Index is the task's position in the selected list.
	Index int `json:"index"`
}

// LocatedTask pairs a task with its container path. The matcher operates on
// located tasks so an UPDATE decision carries the exact write target.
type LocatedTask struct {
	// Task is a snapshot of the task at decision time.
	Task Task `json:"task"`

	// Path is the task's location for patching.
	Path TaskPath `json:"path"`
}
