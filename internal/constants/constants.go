// Package constants provides centralized constant values used throughout ScrumPilot.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Ticket identity constants.
const (
	// TicketPrefix is the prefix for all ticket identifiers (e.g., "SP-42").
	TicketPrefix = "SP"

	// TicketCounterName is the key of the shared ticket counter row.
	// There is exactly one counter; every allocation increments this row.
	TicketCounterName = "ticket_counter"
)

// Directory and file names used by ScrumPilot for state persistence.
const (
	// ScrumPilotHome is the hidden directory name where ScrumPilot stores all its data.
	// This directory is created in the user's home directory.
	ScrumPilotHome = ".scrumpilot"

	// DatabaseFileName is the name of the SQLite database file.
	DatabaseFileName = "scrumpilot.db"

	// ReportsDir is the directory name where per-run report artifacts are stored.
	ReportsDir = "reports"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Matching thresholds. These govern the tiered matcher's accept/reject
// decisions and are deliberately not configurable: they encode the
// calibrated behavior of the matching pipeline.
const (
	// VectorSimilarityThreshold is the minimum cosine similarity for the
	// vector tier to accept its top hit as a match.
	VectorSimilarityThreshold = 0.75

	// CrossTypeMultiplier is the confidence penalty applied when a candidate
	// matches an existing task of the other work type (coding vs non-coding).
	CrossTypeMultiplier = 0.8

	// JudgmentBaseThreshold is the base confidence the LLM judgment tier
	// demands before accepting a match.
	JudgmentBaseThreshold = 0.60

	// JudgmentSparseThreshold replaces the base threshold when the existing
	// task pool has SparsePoolSize or fewer candidates.
	JudgmentSparseThreshold = 0.50

	// JudgmentLongTextThreshold replaces the base threshold for candidate
	// descriptions longer than LongDescriptionChars.
	JudgmentLongTextThreshold = 0.65

	// JudgmentShortTextThreshold replaces the base threshold for candidate
	// descriptions shorter than ShortDescriptionChars.
	JudgmentShortTextThreshold = 0.55

	// SparsePoolSize is the pool size at or below which the judgment
	// threshold is relaxed.
	SparsePoolSize = 3

	// LongDescriptionChars is the description length above which the
	// judgment threshold is raised.
	LongDescriptionChars = 200

	// ShortDescriptionChars is the description length below which the
	// judgment threshold is lowered.
	ShortDescriptionChars = 50

	// LexicalMatchThreshold is the minimum combined lexical score for the
	// fallback tier to report a match.
	LexicalMatchThreshold = 0.5

	// LexicalConfidenceCap bounds the fallback tier's confidence so it can
	// never reach the ceiling of a real model judgment.
	LexicalConfidenceCap = 0.7

	// MinEmbeddingTextLength is the minimum text length (in characters,
	// after trimming) for which an embedding is generated.
	MinEmbeddingTextLength = 3

	// DefaultQueryTopK is the number of nearest neighbors requested from
	// the similarity index during matching.
	DefaultQueryTopK = 5
)

// Throttling and timeout configuration for external calls.
const (
	// DefaultModelTimeout is the default maximum duration for a single
	// language-model or embedding request.
	DefaultModelTimeout = 2 * time.Minute

	// ThrottleEvery inserts a pause before model calls after this many
	// candidate tasks have been processed in a run.
	ThrottleEvery = 5

	// ThrottleDelay is the fixed pause inserted by the throttle. This is a
	// provider rate-limit courtesy, not a backpressure mechanism.
	ThrottleDelay = 2 * time.Second

	// MaxRetryAttempts is the maximum number of retry attempts for
	// recoverable model-call errors.
	MaxRetryAttempts = 3

	// InitialBackoff is the initial backoff duration before the first retry.
	// Subsequent retries use exponential backoff based on this value.
	InitialBackoff = 1 * time.Second

	// BackoffMultiplier scales the backoff between retry attempts.
	BackoffMultiplier = 2
)

// Pipeline window configuration.
const (
	// JobProcess is the run-bookkeeping job name for the main pipeline.
	JobProcess = "process"

	// FallbackLookBack is the transcript look-back window used when no
	// prior successful run exists for a job.
	FallbackLookBack = 24 * time.Hour

	// TicketFilingConcurrency bounds the number of concurrent issue-tracker
	// calls during best-effort ticket filing.
	TicketFilingConcurrency = 3
)

// SchemaVersion is the current version of the persisted container document
// schema. This enables forward-compatible schema migrations.
const SchemaVersion = 1
