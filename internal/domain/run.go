package domain

import (
	"time"

	"github.com/mrz1836/scrumpilot/internal/constants"
)

// RunRecord is the per-named-job bookkeeping row storing the last run's
// timestamp and status. It drives the dynamic look-back window for the
// next run: start = last successful run, end = now, with a fallback fixed
// window when no prior run exists.
type RunRecord struct {
	// Job is the job name ("process" for the main pipeline).
	Job string `json:"job"`

	// LastRunAt is when the job last ran.
	LastRunAt time.Time `json:"last_run_at"`

	// LastStatus is the outcome of the last run.
	LastStatus constants.RunStatus `json:"last_status"`

	// LastSuccessAt is when the job last succeeded. Zero when it never has.
	LastSuccessAt time.Time `json:"last_success_at"`
}

// BatchSummary aggregates per-candidate outcomes for one pipeline run.
// No partial success is silently reported as full success: Failed counts
// candidates whose matching or persistence failed.
type BatchSummary struct {
	// RunID correlates log lines and the report artifact for one run.
	RunID string `json:"run_id" yaml:"run_id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// WindowStart and WindowEnd bound the transcript look-back window.
	WindowStart time.Time `json:"window_start" yaml:"window_start"`
	WindowEnd   time.Time `json:"window_end" yaml:"window_end"`

	// Transcripts is the number of transcripts processed.
	Transcripts int `json:"transcripts" yaml:"transcripts"`

	// Created, Updated, and Failed count per-candidate outcomes.
	Created int `json:"created" yaml:"created"`
	Updated int `json:"updated" yaml:"updated"`
	Failed  int `json:"failed" yaml:"failed"`

	// Outcomes records the per-candidate detail for the report artifact.
	Outcomes []CandidateOutcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// CandidateOutcome records what happened to one candidate task.
type CandidateOutcome struct {
	// TicketID is the ticket the candidate resolved to (created or updated).
	// Empty when the candidate failed before identity was established.
	TicketID string `json:"ticket_id,omitempty" yaml:"ticket_id,omitempty"`

	// Assignee is the candidate's participant.
	Assignee string `json:"assignee" yaml:"assignee"`

	// Action is the decision taken (create, update). Empty on failure.
	Action constants.MatchAction `json:"action,omitempty" yaml:"action,omitempty"`

	// Tier names the matcher tier that produced the decision.
	Tier string `json:"tier,omitempty" yaml:"tier,omitempty"`

	// Confidence is the decision confidence.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Error is the failure message when the candidate failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
