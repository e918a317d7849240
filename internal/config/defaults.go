package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mrz1836/scrumpilot/internal/constants"
)

// setDefaults registers the built-in defaults on a viper instance.
// Defaults are the lowest-precedence configuration layer.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", defaultDatabasePath())

	v.SetDefault("model.base_url", "https://api.openai.com/v1")
	v.SetDefault("model.chat_model", "gpt-4o")
	v.SetDefault("model.embedding_model", "text-embedding-3-small")
	v.SetDefault("model.timeout", constants.DefaultModelTimeout)

	v.SetDefault("tracker.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
}

// defaultDatabasePath returns ~/.scrumpilot/scrumpilot.db, falling back to a
// relative path when the home directory cannot be determined.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return constants.DatabaseFileName
	}
	return filepath.Join(home, constants.ScrumPilotHome, constants.DatabaseFileName)
}

// DataDir returns the directory holding the database and run artifacts.
func (c *Config) DataDir() string {
	return filepath.Dir(c.Database.Path)
}

// ReportsDir returns the directory for per-run report artifacts.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.DataDir(), constants.ReportsDir)
}
