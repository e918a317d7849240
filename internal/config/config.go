// Package config provides configuration loading and validation for ScrumPilot.
// Configuration is layered: built-in defaults, a global file
// (~/.scrumpilot/config.yaml), a project file (./scrumpilot.yaml), and
// SCRUMPILOT_* environment variables, highest precedence last.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Database configures the document store.
	Database DatabaseConfig `mapstructure:"database"`

	// Model configures the language-model and embedding provider.
	Model ModelConfig `mapstructure:"model"`

	// Tracker configures the external issue tracker.
	Tracker TrackerConfig `mapstructure:"tracker"`

	// Transcripts configures the meeting transcript provider.
	Transcripts TranscriptsConfig `mapstructure:"transcripts"`

	// Logging configures log output.
	Logging LoggingConfig `mapstructure:"logging"`
}

// DatabaseConfig configures the SQLite-backed document store.
type DatabaseConfig struct {
	// Path is the database file path. Required.
	Path string `mapstructure:"path"`
}

// ModelConfig configures the OpenAI-compatible model provider used for
// extraction, similarity judgment, summarization, and embeddings.
type ModelConfig struct {
	// BaseURL is the provider's API base URL.
	BaseURL string `mapstructure:"base_url"`

	// APIKey authenticates requests. Required; fatal at startup when missing.
	APIKey string `mapstructure:"api_key"`

	// ChatModel is the model used for extraction, judgment, and notes.
	ChatModel string `mapstructure:"chat_model"`

	// EmbeddingModel is the model used for embedding generation.
	EmbeddingModel string `mapstructure:"embedding_model"`

	// Timeout bounds a single model request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// TrackerConfig configures the Jira-style issue tracker.
// When Enabled is false, ticket filing is skipped entirely.
type TrackerConfig struct {
	// Enabled controls whether tickets are filed externally.
	Enabled bool `mapstructure:"enabled"`

	// BaseURL is the tracker instance URL (e.g., "https://acme.atlassian.net").
	BaseURL string `mapstructure:"base_url"`

	// ProjectKey is the tracker project issues are filed under.
	ProjectKey string `mapstructure:"project_key"`

	// Email and APIToken authenticate via basic auth.
	Email    string `mapstructure:"email"`
	APIToken string `mapstructure:"api_token"`
}

// TranscriptsConfig configures the meeting transcript provider.
type TranscriptsConfig struct {
	// BaseURL is the provider's API base URL.
	BaseURL string `mapstructure:"base_url"`

	// APIKey authenticates requests.
	APIKey string `mapstructure:"api_key"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `mapstructure:"level"`

	// File is an optional rotating log file path. Empty disables file output.
	File string `mapstructure:"file"`

	// MaxSizeMB caps a log file before rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`

	// MaxBackups caps the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups"`
}
