package domain

import "github.com/mrz1836/scrumpilot/internal/constants"

// MatchResult is the decision produced by the matcher for one candidate:
// either CREATE (new work, allocate a fresh ticket) or UPDATE (merge the
// new evidence into an existing task).
type MatchResult struct {
	// Action is the decision: create or update.
	Action constants.MatchAction `json:"action"`

	// Tier names the strategy that produced the decision (explicit_reference,
	// vector_similarity, llm_judgment, lexical_fallback). Empty for CREATE
	// decisions reached by exhausting all tiers.
	Tier string `json:"tier,omitempty"`

	// Confidence is the decision confidence in [0,1]. Explicit-reference
	// matches carry 1.0; the lexical fallback is capped below model ceilings.
	Confidence float64 `json:"confidence"`

	// Target is the existing task an UPDATE applies to. Nil for CREATE.
	Target *LocatedTask `json:"target,omitempty"`

	// Delta is the computed merge for an UPDATE. Nil for CREATE.
	Delta *MergeDelta `json:"delta,omitempty"`

	// Reasoning carries the judgment tier's explanation, when available.
	Reasoning string `json:"reasoning,omitempty"`
}

// MergeDelta is the change set an UPDATE applies to an existing task.
// Building the delta is deterministic: the same candidate against the same
// task snapshot always produces the same delta, and a candidate carrying no
// new information produces an empty delta.
type MergeDelta struct {
	// ExpectedTicketID is the ticket the delta was computed against.
	// The store verifies it against the task found at the patch path and
	// reports a mismatch instead of patching a restructured container.
	ExpectedTicketID string `json:"expected_ticket_id"`

	// AppendDescription is the text to append as "\n\nUpdate: <text>".
	// Empty when the new text folds to the current description.
	AppendDescription string `json:"append_description,omitempty"`

	// Status is the derived status transition. Empty for no change.
	Status constants.TaskStatus `json:"status,omitempty"`

	// AddTimeTaken is added to the task's accumulated hours.
	AddTimeTaken float64 `json:"add_time_taken,omitempty"`

	// SetEstimatedTime sets the estimate, applied only if the task's
	// current estimate is zero (first-writer-wins).
	SetEstimatedTime float64 `json:"set_estimated_time,omitempty"`
}

// Empty reports whether the delta carries no change.
func (d *MergeDelta) Empty() bool {
	return d.AppendDescription == "" && d.Status == "" &&
		d.AddTimeTaken == 0 && d.SetEstimatedTime == 0
}

// PatchResult reports the outcome of applying a delta at a path.
type PatchResult struct {
	// Matched is false when the path no longer resolves to the expected
	// task (the container was restructured between decision and write).
	Matched bool `json:"matched"`

	// Modified is false when the patch matched but the delta was empty,
	// so no write occurred.
	Modified bool `json:"modified"`
}

// Judgment is the similarity verdict returned by the judgment model for
// one candidate/existing-task pair. The model is untrusted: parse failures
// are substituted with a no-match at confidence 0.
type Judgment struct {
	// IsMatch reports whether the model judged the two texts to describe
	// the same work item.
	IsMatch bool `json:"is_match"`

	// Confidence is the model's confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Reasoning is the model's explanation, kept for logging.
	Reasoning string `json:"reasoning"`
}
