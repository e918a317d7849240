package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scrumpilot/internal/ai"
	"github.com/mrz1836/scrumpilot/internal/clock"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/embedding"
	scrumerrors "github.com/mrz1836/scrumpilot/internal/errors"
	"github.com/mrz1836/scrumpilot/internal/matcher"
	"github.com/mrz1836/scrumpilot/internal/pipeline"
	"github.com/mrz1836/scrumpilot/internal/store"
	"github.com/mrz1836/scrumpilot/internal/tracker"
	"github.com/mrz1836/scrumpilot/internal/transcript"
)

// processFlags holds the flags for the process command.
type processFlags struct {
	noTracker bool
	noNotes   bool
}

// newProcessCmd creates the process command, the main pipeline entry point.
func newProcessCmd(a *app) *cobra.Command {
	flags := &processFlags{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process new meeting transcripts into tasks",
		Long: `Process fetches the transcripts since the last successful run, extracts
action items, matches them against existing tasks, and persists the results.

Examples:
  scrumpilot process               # Full run: tasks, tracker issues, notes
  scrumpilot process --no-tracker  # Skip external issue filing
  scrumpilot process --no-notes    # Skip meeting-notes generation`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd.Context(), a, os.Stdout, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noTracker, "no-tracker", false, "Skip filing issues with the external tracker")
	cmd.Flags().BoolVar(&flags.noNotes, "no-notes", false, "Skip meeting-notes generation")

	return cmd
}

// runProcess assembles the pipeline from configuration and executes one run.
func runProcess(ctx context.Context, a *app, w io.Writer, flags *processFlags) error {
	st, err := store.Open(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	client := ai.NewClient(a.cfg.Model, a.logger)
	embeddings := embedding.NewStore(st, client, clock.RealClock{}, a.logger)
	judge := ai.NewJudge(client)

	m := matcher.New(a.logger,
		matcher.NewExplicitReferenceStrategy(a.logger),
		matcher.NewVectorStrategy(embeddings, a.logger),
		matcher.NewJudgmentStrategy(judge, a.logger),
		matcher.NewLexicalStrategy(a.logger),
	)

	opts := pipeline.Options{
		Clock:      clock.RealClock{},
		ReportsDir: a.cfg.ReportsDir(),
	}
	if !flags.noNotes {
		opts.Summarizer = ai.NewSummarizer(client)
	}
	if a.cfg.Tracker.Enabled && !flags.noTracker {
		opts.Filer = tracker.NewClient(a.cfg.Tracker, a.logger)
	}

	source := transcript.NewHTTPSource(a.cfg.Transcripts, a.logger)
	p := pipeline.New(st, source, ai.NewExtractor(client), m, embeddings, opts, a.logger)

	summary, err := p.Run(ctx)
	if stderrors.Is(err, scrumerrors.ErrNoTranscripts) {
		fmt.Fprintln(w, "No transcripts in window; nothing to do.")
		return nil
	}
	if err != nil {
		return err
	}

	printSummary(w, summary)
	return nil
}

// printSummary renders the run outcome for the terminal.
func printSummary(w io.Writer, s *domain.BatchSummary) {
	fmt.Fprintf(w, "Run %s finished in %s\n", s.RunID, s.FinishedAt.Sub(s.StartedAt).Round(10*time.Millisecond))
	fmt.Fprintf(w, "  Window:      %s — %s\n", s.WindowStart.Format("2006-01-02 15:04"), s.WindowEnd.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  Transcripts: %d\n", s.Transcripts)
	fmt.Fprintf(w, "  Created:     %d\n", s.Created)
	fmt.Fprintf(w, "  Updated:     %d\n", s.Updated)
	fmt.Fprintf(w, "  Failed:      %d\n", s.Failed)
	for _, o := range s.Outcomes {
		if o.Error != "" {
			fmt.Fprintf(w, "  FAILED %s (%s): %s\n", o.TicketID, o.Assignee, o.Error)
		}
	}
}
