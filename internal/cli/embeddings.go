package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scrumpilot/internal/ai"
	"github.com/mrz1836/scrumpilot/internal/clock"
	"github.com/mrz1836/scrumpilot/internal/embedding"
	scrumerrors "github.com/mrz1836/scrumpilot/internal/errors"
	"github.com/mrz1836/scrumpilot/internal/matcher"
	"github.com/mrz1836/scrumpilot/internal/store"
)

// newEmbeddingsCmd groups the embedding-lifecycle administration commands.
func newEmbeddingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embeddings",
		Short: "Administer task embeddings",
	}

	cmd.AddCommand(newEmbeddingsRebuildCmd(a))
	cmd.AddCommand(newEmbeddingsInvalidateCmd(a))

	return cmd
}

// newEmbeddingsRebuildCmd creates the embeddings rebuild command.
func newEmbeddingsRebuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate stale embeddings across the task pool",
		Long: `Rebuild walks every stored task and regenerates embeddings whose content
hash no longer matches the task text. Up-to-date embeddings are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEmbeddingsRebuild(cmd.Context(), a, os.Stdout)
		},
	}
}

func runEmbeddingsRebuild(ctx context.Context, a *app, w io.Writer) error {
	st, err := store.Open(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	client := ai.NewClient(a.cfg.Model, a.logger)
	embeddings := embedding.NewStore(st, client, clock.RealClock{}, a.logger)

	rebuilt, err := embeddings.RebuildStale(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Rebuilt %d stale embedding(s).\n", rebuilt)
	return nil
}

// newEmbeddingsInvalidateCmd creates the embeddings invalidate command.
func newEmbeddingsInvalidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <ticket-id>",
		Short: "Remove one task's embedding",
		Long: `Invalidate unsets a task's stored vector and metadata. This is the only
operation that removes an embedding; the next rebuild or pipeline update
regenerates it.

The ticket ID is normalized, so "sp 12", "SP12", and "SP-12" are equivalent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbeddingsInvalidate(cmd.Context(), a, os.Stdout, args[0])
		},
	}
}

func runEmbeddingsInvalidate(ctx context.Context, a *app, w io.Writer, rawID string) error {
	ticketID, ok := matcher.NormalizeTicketRef(rawID)
	if !ok {
		return scrumerrors.Wrapf(scrumerrors.ErrInvalidArgument, "%q is not a ticket ID", rawID)
	}

	st, err := store.Open(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	client := ai.NewClient(a.cfg.Model, a.logger)
	embeddings := embedding.NewStore(st, client, clock.RealClock{}, a.logger)

	removed, err := embeddings.Invalidate(ctx, ticketID)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(w, "No embedding stored for %s.\n", ticketID)
		return nil
	}

	fmt.Fprintf(w, "Embedding removed for %s.\n", ticketID)
	return nil
}
