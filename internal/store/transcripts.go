package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// SaveTranscript persists a raw transcript blob keyed by the provider's
// transcript ID. Re-saving the same ID overwrites the blob.
func (s *Store) SaveTranscript(ctx context.Context, t *domain.Transcript) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	content, err := json.Marshal(t.Entries)
	if err != nil {
		return errors.Wrap(err, "marshal transcript entries")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, title, meeting_date, content, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, content = excluded.content`,
		t.ID, t.Title, t.Date.UTC(), string(content), time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "save transcript: "+err.Error())
	}
	return nil
}

// GetTranscript loads one stored transcript by ID.
func (s *Store) GetTranscript(ctx context.Context, id string) (*domain.Transcript, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var (
		t       domain.Transcript
		content string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, meeting_date, content FROM transcripts WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &t.Date, &content)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrTranscriptSource, "transcript %s not stored", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "get transcript: "+err.Error())
	}

	if err := json.Unmarshal([]byte(content), &t.Entries); err != nil {
		return nil, errors.Wrapf(err, "unmarshal transcript %s", id)
	}
	return &t, nil
}

// SaveMeetingNotes persists a generated meeting summary for a transcript.
func (s *Store) SaveMeetingNotes(ctx context.Context, n *domain.MeetingNotes) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meeting_notes (transcript_id, summary, generated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(transcript_id) DO UPDATE SET summary = excluded.summary, generated_at = excluded.generated_at`,
		n.TranscriptID, n.Summary, n.GeneratedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "save meeting notes: "+err.Error())
	}
	return nil
}

// GetMeetingNotes loads the stored summary for a transcript, if any.
func (s *Store) GetMeetingNotes(ctx context.Context, transcriptID string) (*domain.MeetingNotes, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var n domain.MeetingNotes
	err := s.db.QueryRowContext(ctx,
		`SELECT transcript_id, summary, generated_at FROM meeting_notes WHERE transcript_id = ?`,
		transcriptID,
	).Scan(&n.TranscriptID, &n.Summary, &n.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrTaskNotFound, "no notes for transcript %s", transcriptID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "get meeting notes: "+err.Error())
	}
	return &n, nil
}
