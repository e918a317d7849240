package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// Allocate issues the next ticket identifier, formatted as SP-<n>.
//
// The increment-and-read is a single SQL statement, so no two callers can
// observe the same pre-increment value regardless of concurrency. An absent
// counter auto-initializes: the first allocation ever returns SP-1.
func (s *Store) Allocate(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = counters.value + 1
		RETURNING value`,
		constants.TicketCounterName,
	).Scan(&value)
	if err != nil {
		return "", errors.Wrap(errors.ErrStorage, "allocate ticket id: "+err.Error())
	}

	id := fmt.Sprintf("%s-%d", constants.TicketPrefix, value)
	s.logger.Debug().Str("ticket_id", id).Msg("allocated ticket id")
	return id, nil
}

// InitializeCounter creates the ticket counter only if absent, set so the
// next allocation returns startingNumber. Calling it again is a no-op; the
// counter retains the first writer's value and ErrCounterConflict is
// returned so callers can distinguish the cases.
func (s *Store) InitializeCounter(ctx context.Context, startingNumber int64) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if startingNumber < 1 {
		return errors.Wrapf(errors.ErrInvalidArgument, "starting number %d must be >= 1", startingNumber)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING`,
		constants.TicketCounterName, startingNumber-1,
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "initialize counter: "+err.Error())
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "initialize counter: "+err.Error())
	}
	if affected == 0 {
		return errors.ErrCounterConflict
	}

	s.logger.Info().Int64("starting_number", startingNumber).Msg("ticket counter initialized")
	return nil
}

// ResetCounter unconditionally overwrites the counter value. Intended for
// test and recovery use only; logged as a privileged action.
func (s *Store) ResetCounter(ctx context.Context, newCount int64) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if newCount < 0 {
		return errors.Wrapf(errors.ErrInvalidArgument, "new count %d must be >= 0", newCount)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		constants.TicketCounterName, newCount,
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "reset counter: "+err.Error())
	}

	s.logger.Warn().Int64("new_count", newCount).Msg("ticket counter reset (privileged action)")
	return nil
}

// PeekCounter reads the counter without incrementing it.
// Returns 0 when the counter does not exist yet.
func (s *Store) PeekCounter(ctx context.Context) (int64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE name = ?`,
		constants.TicketCounterName,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(errors.ErrStorage, "peek counter: "+err.Error())
	}
	return value, nil
}
