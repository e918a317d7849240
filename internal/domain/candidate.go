package domain

import (
	"sort"

	"github.com/mrz1836/scrumpilot/internal/constants"
)

// CandidateTask is a task mention extracted from a transcript before
// matching has determined whether it is new work or an update to an
// existing task.
type CandidateTask struct {
	// Description is the extracted task text. Required.
	Description string `json:"description"`

	// Assignee is the participant the extraction attributed the task to.
	Assignee string `json:"assignee"`

	// Type classifies the work as coding or non-coding.
	Type constants.TaskType `json:"type"`

	// ExistingTaskID is an explicit ticket reference the extraction found
	// in the transcript ("SP-12"), when present. Not yet normalized.
	ExistingTaskID string `json:"existing_task_id,omitempty"`

	// Status is an optional status hint from the extraction. When present
	// and not the default to_do it overrides text-cue derivation on merge.
	Status constants.TaskStatus `json:"status,omitempty"`

	// EstimatedTime is an optional effort estimate in hours.
	EstimatedTime float64 `json:"estimated_time,omitempty"`

	// TimeTaken is an optional spent-hours figure.
	TimeTaken float64 `json:"time_taken,omitempty"`

	// IsFuturePlan marks aspirational mentions ("we should eventually...").
	IsFuturePlan bool `json:"is_future_plan,omitempty"`
}

// ExtractionResult is the structured output of the extraction model for one
// transcript: participant name mapped to that participant's candidate tasks.
type ExtractionResult struct {
	// Participants maps participant name to extracted candidates.
	Participants map[string]CandidateLists `json:"participants"`
}

// CandidateLists holds the extracted candidates for one participant,
// split by work type the same way tasks are stored.
type CandidateLists struct {
	// Coding holds implementation candidates.
	Coding []CandidateTask `json:"coding"`

	// NonCoding holds everything else.
	NonCoding []CandidateTask `json:"non_coding"`
}

// Flatten returns all candidates across participants and lists with the
// assignee and type fields populated from their position in the mapping.
// Iteration order is per-participant, coding before non-coding, preserving
// extraction order within each list.
func (r *ExtractionResult) Flatten(order []string) []CandidateTask {
	var out []CandidateTask
	for _, name := range order {
		lists, ok := r.Participants[name]
		if !ok {
			continue
		}
		for _, c := range lists.Coding {
			c.Assignee = name
			c.Type = constants.TaskTypeCoding
			out = append(out, c)
		}
		for _, c := range lists.NonCoding {
			c.Assignee = name
			c.Type = constants.TaskTypeNonCoding
			out = append(out, c)
		}
	}
	return out
}

// ParticipantOrder returns the participant names in deterministic
// (lexicographic) order for stable batch processing.
func (r *ExtractionResult) ParticipantOrder() []string {
	names := make([]string, 0, len(r.Participants))
	for name := range r.Participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
