package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// GetRunRecord loads the bookkeeping record for a named job.
// Returns nil (no error) when the job has never run.
func (s *Store) GetRunRecord(ctx context.Context, job string) (*domain.RunRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var (
		rec     domain.RunRecord
		status  string
		success sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT job, last_run_at, last_status, last_success_at FROM runs WHERE job = ?`, job,
	).Scan(&rec.Job, &rec.LastRunAt, &status, &success)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "get run record: "+err.Error())
	}

	rec.LastStatus = constants.RunStatus(status)
	if success.Valid {
		rec.LastSuccessAt = success.Time
	}
	return &rec, nil
}

// RecordRun upserts the bookkeeping record after a run completes.
// last_success_at only advances on success.
func (s *Store) RecordRun(ctx context.Context, job string, ranAt time.Time, status constants.RunStatus) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	var success any
	if status == constants.RunStatusSucceeded {
		success = ranAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (job, last_run_at, last_status, last_success_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(job) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_status = excluded.last_status,
			last_success_at = COALESCE(excluded.last_success_at, runs.last_success_at)`,
		job, ranAt.UTC(), status.String(), success,
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "record run: "+err.Error())
	}
	return nil
}

// RunWindow computes the transcript look-back window for a job:
// start = last successful run, end = now. When the job has no prior
// successful run, a fixed fallback window is used instead.
func (s *Store) RunWindow(ctx context.Context, job string, now time.Time) (start, end time.Time, err error) {
	rec, err := s.GetRunRecord(ctx, job)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end = now.UTC()
	if rec == nil || rec.LastSuccessAt.IsZero() {
		return end.Add(-constants.FallbackLookBack), end, nil
	}
	return rec.LastSuccessAt.UTC(), end, nil
}
