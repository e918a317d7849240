package config

import (
	"fmt"
	"net/url"

	"github.com/mrz1836/scrumpilot/internal/errors"
)

// Validate checks a loaded configuration for fatal problems.
// Configuration errors abort at startup with no retry: a pipeline run
// cannot degrade around a missing database path or API key.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigInvalid
	}

	if cfg.Database.Path == "" {
		return errors.ErrConfigMissingDatabase
	}

	if cfg.Model.APIKey == "" {
		return errors.ErrConfigMissingAPIKey
	}
	if err := validateURL("model.base_url", cfg.Model.BaseURL); err != nil {
		return err
	}
	if cfg.Model.ChatModel == "" {
		return fmt.Errorf("%w: model.chat_model is required", errors.ErrConfigInvalid)
	}
	if cfg.Model.EmbeddingModel == "" {
		return fmt.Errorf("%w: model.embedding_model is required", errors.ErrConfigInvalid)
	}
	if cfg.Model.Timeout <= 0 {
		return fmt.Errorf("%w: model.timeout must be positive", errors.ErrConfigInvalid)
	}

	if cfg.Tracker.Enabled {
		if err := validateURL("tracker.base_url", cfg.Tracker.BaseURL); err != nil {
			return err
		}
		if cfg.Tracker.ProjectKey == "" {
			return fmt.Errorf("%w: tracker.project_key is required when tracker is enabled", errors.ErrConfigInvalid)
		}
		if cfg.Tracker.Email == "" || cfg.Tracker.APIToken == "" {
			return fmt.Errorf("%w: tracker.email and tracker.api_token are required when tracker is enabled", errors.ErrConfigInvalid)
		}
	}

	switch cfg.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q is not one of trace, debug, info, warn, error", errors.ErrConfigInvalid, cfg.Logging.Level)
	}

	return nil
}

// validateURL checks that a configured URL parses and carries a scheme.
func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s is required", errors.ErrConfigInvalid, field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s %q is not a valid URL", errors.ErrConfigInvalid, field, raw)
	}
	return nil
}
