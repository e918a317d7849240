package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scrumpilot/internal/constants"
	scrumerrors "github.com/mrz1836/scrumpilot/internal/errors"
	"github.com/mrz1836/scrumpilot/internal/store"
)

// newCounterCmd groups the ticket-counter administration commands.
func newCounterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Administer the ticket-ID counter",
	}

	cmd.AddCommand(newCounterInitCmd(a))
	cmd.AddCommand(newCounterResetCmd(a))
	cmd.AddCommand(newCounterPeekCmd(a))

	return cmd
}

// newCounterInitCmd creates the counter init command.
func newCounterInitCmd(a *app) *cobra.Command {
	var start int64

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the ticket counter",
		Long: `Initialize the ticket counter so the first allocated ticket gets the
given starting number. Initialization is idempotent-safe: if the counter
already exists, nothing changes and the command reports the conflict.

Examples:
  scrumpilot counter init              # First ticket will be ` + constants.TicketPrefix + `-1
  scrumpilot counter init --start 100  # First ticket will be ` + constants.TicketPrefix + `-100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCounterInit(cmd.Context(), a, os.Stdout, start)
		},
	}

	cmd.Flags().Int64Var(&start, "start", 1, "Number the first allocated ticket receives")

	return cmd
}

func runCounterInit(ctx context.Context, a *app, w io.Writer, start int64) error {
	if start < 1 {
		return scrumerrors.Wrapf(scrumerrors.ErrInvalidArgument, "starting number must be >= 1, got %d", start)
	}

	st, err := store.Open(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	err = st.InitializeCounter(ctx, start)
	if stderrors.Is(err, scrumerrors.ErrCounterConflict) {
		next, peekErr := st.PeekCounter(ctx)
		if peekErr != nil {
			return peekErr
		}
		fmt.Fprintf(w, "Counter already initialized; next ticket is %s-%d.\n", constants.TicketPrefix, next+1)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Counter initialized; first ticket will be %s-%d.\n", constants.TicketPrefix, start)
	return nil
}

// newCounterResetCmd creates the counter reset command.
func newCounterResetCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset <value>",
		Short: "Overwrite the ticket counter (privileged)",
		Long: `Reset overwrites the counter unconditionally: the next allocated ticket
gets <value>+1. Resetting backwards can mint duplicate ticket IDs, so the
command refuses to run without --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return scrumerrors.Wrapf(scrumerrors.ErrInvalidArgument, "counter value %q is not an integer", args[0])
			}
			return runCounterReset(cmd.Context(), a, os.Stdout, value, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm the overwrite")

	return cmd
}

func runCounterReset(ctx context.Context, a *app, w io.Writer, value int64, force bool) error {
	if value < 0 {
		return scrumerrors.Wrapf(scrumerrors.ErrInvalidArgument, "counter value must be >= 0, got %d", value)
	}
	if !force {
		return scrumerrors.Wrap(scrumerrors.ErrInvalidArgument, "reset can mint duplicate ticket IDs; re-run with --force to confirm")
	}

	st, err := store.Open(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.ResetCounter(ctx, value); err != nil {
		return err
	}

	fmt.Fprintf(w, "Counter reset; next ticket will be %s-%d.\n", constants.TicketPrefix, value+1)
	return nil
}

// newCounterPeekCmd creates the counter peek command.
func newCounterPeekCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "peek",
		Short: "Show the counter without consuming an ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCounterPeek(cmd.Context(), a, os.Stdout)
		},
	}
}

func runCounterPeek(ctx context.Context, a *app, w io.Writer) error {
	st, err := store.Open(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	value, err := st.PeekCounter(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Counter value: %d (next ticket: %s-%d)\n", value, constants.TicketPrefix, value+1)
	return nil
}
