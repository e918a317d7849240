// Package errors provides centralized error handling for ScrumPilot.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrStorage indicates the backing document store is unreachable or a
	// read/write against it failed.
	ErrStorage = errors.New("storage operation failed")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrConfigMissingAPIKey indicates the model API key is not configured.
	// This is fatal at startup; no retry is attempted.
	ErrConfigMissingAPIKey = errors.New("model API key not configured")

	// ErrConfigMissingDatabase indicates the database path is not configured.
	ErrConfigMissingDatabase = errors.New("database path not configured")

	// ErrContainerNotFound indicates the requested task container does not exist.
	ErrContainerNotFound = errors.New("task container not found")

	// ErrTaskNotFound indicates a task could not be located at the given path.
	ErrTaskNotFound = errors.New("task not found")

	// ErrPatchMismatch indicates a blind patch found a different task at the
	// target path than the one the matcher resolved. The container was
	// restructured between decision and write.
	ErrPatchMismatch = errors.New("patch target mismatch")

	// ErrModelCall indicates a language-model or embedding request failed.
	ErrModelCall = errors.New("model call failed")

	// ErrModelResponseFormat indicates the model returned a response that
	// could not be parsed into the expected structure.
	ErrModelResponseFormat = errors.New("model response not in expected format")

	// ErrModelEmptyResponse indicates the model returned an empty response.
	ErrModelEmptyResponse = errors.New("model returned empty response")

	// ErrExtractionFailed indicates action-item extraction failed for a transcript.
	ErrExtractionFailed = errors.New("action item extraction failed")

	// ErrTrackerCall indicates an issue-tracker API operation failed.
	// Ticket filing is best-effort; callers log and continue.
	ErrTrackerCall = errors.New("issue tracker call failed")

	// ErrTranscriptSource indicates the transcript provider could not be reached
	// or returned an unusable payload.
	ErrTranscriptSource = errors.New("transcript source failed")

	// ErrEmbeddingUnavailable indicates no embedding could be produced for a
	// task (text too short, task missing). Callers treat this as "no vector",
	// not as a fatal error.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrCounterConflict indicates a counter initialization raced with another
	// writer and lost. The counter retains the first writer's value.
	ErrCounterConflict = errors.New("counter already initialized")

	// ErrNoTranscripts indicates no transcripts were found in the run window.
	ErrNoTranscripts = errors.New("no transcripts in window")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
)
