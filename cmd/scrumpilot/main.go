// Package main provides the entry point for the scrumpilot CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/scrumpilot/internal/cli"
)

// Build information set via ldflags.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(1)
	}
}
