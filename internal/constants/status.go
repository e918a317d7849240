package constants

// TaskStatus represents the state of a tracked task.
// Status values use snake_case for JSON serialization compatibility.
//
// The lifecycle is monotonic in practice:
//
//	ToDo → InProgress → Completed
//
// but no transition is enforced; merges derive status from transcript cues
// and an administrative edit may set any value.
type TaskStatus string

const (
	// TaskStatusToDo indicates a task that has been identified but not started.
	TaskStatusToDo TaskStatus = "to_do"

	// TaskStatusInProgress indicates a task that is actively being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates a task that has been finished.
	TaskStatusCompleted TaskStatus = "completed"
)

// String returns the string representation of the TaskStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s TaskStatus) String() string {
	return string(s)
}

// TaskType classifies a task as coding or non-coding work.
// The type is set at creation and treated as soft: cross-type matches are
// allowed with a confidence penalty.
type TaskType string

const (
	// TaskTypeCoding indicates implementation work.
	TaskTypeCoding TaskType = "coding"

	// TaskTypeNonCoding indicates work other than implementation
	// (documentation, reviews, meetings, coordination).
	TaskTypeNonCoding TaskType = "non_coding"
)

// String returns the string representation of the TaskType.
func (t TaskType) String() string {
	return string(t)
}

// MatchAction is the decision produced by the matcher for one candidate.
type MatchAction string

const (
	// MatchActionCreate indicates the candidate is new work and a fresh
	// ticket identifier must be allocated for it.
	MatchActionCreate MatchAction = "create"

	// MatchActionUpdate indicates the candidate refers to an existing task
	// that should be merged with the new evidence.
	MatchActionUpdate MatchAction = "update"
)

// String returns the string representation of the MatchAction.
func (a MatchAction) String() string {
	return string(a)
}

// RunStatus records the outcome of a pipeline run in the bookkeeping table.
type RunStatus string

const (
	// RunStatusSucceeded indicates the run completed and its window may be
	// used as the start of the next look-back window.
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusFailed indicates the run aborted; the look-back window of the
	// next run extends back to the last successful run instead.
	RunStatusFailed RunStatus = "failed"
)

// String returns the string representation of the RunStatus.
func (s RunStatus) String() string {
	return string(s)
}
