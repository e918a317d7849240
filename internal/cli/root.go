// Package cli provides the command-line interface for ScrumPilot.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/scrumpilot/internal/config"
	"github.com/mrz1836/scrumpilot/internal/logging"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// app holds the state shared by subcommands, populated by the root
// command's PersistentPreRunE before any subcommand runs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// newRootCmd creates the root command. Configuration loading and logger
// setup happen once here so every subcommand sees the same state.
func newRootCmd(a *app, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrumpilot",
		Short: "ScrumPilot - meeting transcripts to tracked tasks",
		Long: `ScrumPilot turns meeting transcripts into tracked tasks: it fetches
transcripts for the look-back window, extracts action items with a language
model, matches them against existing tasks, allocates sequential ticket IDs
for new work, and files issues with the external tracker.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.Logging)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newProcessCmd(a))
	cmd.AddCommand(newCounterCmd(a))
	cmd.AddCommand(newEmbeddingsCmd(a))

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	a := &app{}
	cmd := newRootCmd(a, info)
	return cmd.ExecuteContext(ctx)
}
