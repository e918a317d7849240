// Package pipeline orchestrates one transcript-processing run: fetch the
// transcripts for the look-back window, extract candidate tasks, match each
// candidate against the existing pool, persist creations and updates, file
// tracker issues best-effort, and generate meeting notes.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/scrumpilot/internal/clock"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/embedding"
	"github.com/mrz1836/scrumpilot/internal/errors"
	"github.com/mrz1836/scrumpilot/internal/matcher"
	"github.com/mrz1836/scrumpilot/internal/store"
	"github.com/mrz1836/scrumpilot/internal/transcript"
)

// Extractor produces candidate tasks from a transcript.
type Extractor interface {
	Extract(ctx context.Context, t *domain.Transcript) (*domain.ExtractionResult, error)
}

// Summarizer produces meeting notes from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, t *domain.Transcript) (string, error)
}

// Filer files a ticket with the external issue tracker.
type Filer interface {
	FileTicket(ctx context.Context, req domain.TicketRequest) (domain.TicketRef, error)
}

// Pipeline wires the run's collaborators. Filer and Summarizer are optional:
// a nil Filer disables tracker filing, a nil Summarizer disables notes.
type Pipeline struct {
	store      *store.Store
	source     transcript.Source
	extractor  Extractor
	summarizer Summarizer
	matcher    *matcher.Matcher
	embeddings *embedding.Store
	filer      Filer
	clock      clock.Clock
	logger     zerolog.Logger
	reportsDir string

	// sleep is replaceable so throttle behavior is testable.
	sleep func(ctx context.Context, d time.Duration) error

	// modelCalls counts throttle-relevant work within one run.
	modelCalls int
}

// Options carries the optional collaborators and settings for New.
type Options struct {
	Summarizer Summarizer
	Filer      Filer
	Clock      clock.Clock
	ReportsDir string
}

// New assembles a pipeline.
func New(st *store.Store, source transcript.Source, ex Extractor, m *matcher.Matcher, emb *embedding.Store, opts Options, logger zerolog.Logger) *Pipeline {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Pipeline{
		store:      st,
		source:     source,
		extractor:  ex,
		summarizer: opts.Summarizer,
		matcher:    m,
		embeddings: emb,
		filer:      opts.Filer,
		clock:      clk,
		logger:     logger.With().Str("component", "pipeline").Logger(),
		reportsDir: opts.ReportsDir,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// filingJob is one pending tracker filing for a task created this run.
type filingJob struct {
	path     domain.TaskPath
	ticketID string
	request  domain.TicketRequest
}

// Run executes one full processing run. Per-candidate and per-transcript
// failures are contained and counted; Run itself fails only when the window
// cannot be established, the transcripts cannot be fetched, or the existing
// pool cannot be read. Returns ErrNoTranscripts (with a valid summary) when
// the window holds nothing to process.
func (p *Pipeline) Run(ctx context.Context) (*domain.BatchSummary, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := p.logger.With().Str("run_id", runID).Logger()
	now := p.clock.Now().UTC()
	p.modelCalls = 0

	windowStart, windowEnd, err := p.store.RunWindow(ctx, constants.JobProcess, now)
	if err != nil {
		return nil, errors.Wrap(err, "establish run window")
	}

	summary := &domain.BatchSummary{
		RunID:       runID,
		StartedAt:   now,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	logger.Info().
		Time("window_start", windowStart).
		Time("window_end", windowEnd).
		Msg("Starting processing run")

	transcripts, err := p.source.FetchWindow(ctx, windowStart, windowEnd)
	if err != nil {
		p.recordRun(ctx, now, constants.RunStatusFailed, logger)
		return nil, errors.Wrap(err, "fetch transcripts")
	}
	if len(transcripts) == 0 {
		logger.Info().Msg("No transcripts in window")
		p.recordRun(ctx, now, constants.RunStatusSucceeded, logger)
		summary.FinishedAt = p.clock.Now().UTC()
		return summary, errors.ErrNoTranscripts
	}

	// One pool snapshot per run. Creations and updates made during the run
	// are folded back in so later candidates see them.
	pool, err := p.store.AllTasks(ctx)
	if err != nil {
		p.recordRun(ctx, now, constants.RunStatusFailed, logger)
		return nil, errors.Wrap(err, "snapshot task pool")
	}

	// All tasks created this run land in one container keyed by the run ID.
	containerID := runID

	var filings []filingJob
	transcriptFailed := false

	for i := range transcripts {
		t := &transcripts[i]
		jobs, err := p.processTranscript(ctx, t, containerID, &pool, summary, logger)
		if err != nil {
			if ctx.Err() != nil {
				p.recordRun(ctx, now, constants.RunStatusFailed, logger)
				return summary, err
			}
			transcriptFailed = true
			logger.Error().Err(err).Str("transcript_id", t.ID).Msg("Transcript processing failed")
			continue
		}
		filings = append(filings, jobs...)
		summary.Transcripts++
	}

	p.fileTickets(ctx, filings, logger)

	status := constants.RunStatusSucceeded
	if transcriptFailed {
		// A failed transcript stays in the look-back window for the next
		// run; the matcher absorbs any resulting re-processing.
		status = constants.RunStatusFailed
	}
	p.recordRun(ctx, now, status, logger)

	summary.FinishedAt = p.clock.Now().UTC()

	if p.reportsDir != "" {
		if err := writeReport(p.reportsDir, summary); err != nil {
			logger.Warn().Err(err).Msg("Failed to write run report")
		}
	}

	logger.Info().
		Int("transcripts", summary.Transcripts).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Msg("Processing run finished")

	return summary, nil
}

// processTranscript handles one transcript end to end: persist the raw
// transcript, extract candidates, match and persist each, and generate
// meeting notes. Returns the tracker filings queued for tasks created here.
func (p *Pipeline) processTranscript(ctx context.Context, t *domain.Transcript, containerID string, pool *[]domain.LocatedTask, summary *domain.BatchSummary, logger zerolog.Logger) ([]filingJob, error) {
	logger = logger.With().Str("transcript_id", t.ID).Logger()

	if err := p.store.SaveTranscript(ctx, t); err != nil {
		return nil, errors.Wrap(err, "persist transcript")
	}

	if err := p.throttle(ctx); err != nil {
		return nil, err
	}
	result, err := p.extractor.Extract(ctx, t)
	if err != nil {
		return nil, errors.Wrap(err, "extract candidates")
	}

	candidates := result.Flatten(result.ParticipantOrder())
	logger.Info().Int("candidates", len(candidates)).Msg("Extracted candidate tasks")

	var filings []filingJob
	for _, cand := range candidates {
		if err := ctxutil.Canceled(ctx); err != nil {
			return filings, err
		}
		if err := p.throttle(ctx); err != nil {
			return filings, err
		}

		job, outcome, err := p.processCandidate(ctx, cand, containerID, pool, logger)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if err != nil {
			// An allocation or persistence failure means the task has no
			// durable identity or location; the whole transcript fails so
			// the next run's window re-covers it.
			summary.Failed++
			return filings, errors.Wrap(err, "persist candidate decision")
		}
		switch {
		case outcome.Error != "":
			summary.Failed++
		case outcome.Action == constants.MatchActionCreate:
			summary.Created++
		default:
			summary.Updated++
		}
		if job != nil {
			filings = append(filings, *job)
		}
	}

	p.generateNotes(ctx, t, logger)

	return filings, nil
}

// processCandidate matches one candidate and persists the decision. The
// returned filing is non-nil only for a successfully created task with
// tracker filing enabled.
//
// Failures split two ways: a storage failure during allocation or
// persistence returns a non-nil error and aborts the transcript, while a
// patch-target mismatch is recorded on the outcome and contained.
func (p *Pipeline) processCandidate(ctx context.Context, cand domain.CandidateTask, containerID string, pool *[]domain.LocatedTask, logger zerolog.Logger) (*filingJob, domain.CandidateOutcome, error) {
	outcome := domain.CandidateOutcome{Assignee: cand.Assignee}

	result := p.matcher.Match(ctx, cand, *pool)
	outcome.Action = result.Action
	outcome.Tier = result.Tier
	outcome.Confidence = result.Confidence

	if result.Action == constants.MatchActionUpdate {
		ticketID := result.Target.Task.TicketID
		outcome.TicketID = ticketID

		patch, err := p.store.ApplyUpdate(ctx, result.Target.Path, result.Delta)
		if err != nil {
			outcome.Error = fmt.Sprintf("apply update: %v", err)
			return nil, outcome, errors.Wrapf(err, "apply update to %s", ticketID)
		}
		if !patch.Matched {
			// The container was restructured between decision and write.
			// Surfaced as a candidate failure, never silently retargeted.
			outcome.Error = fmt.Sprintf("update target %s no longer at decided path: %v", ticketID, errors.ErrPatchMismatch)
			return nil, outcome, nil
		}

		if patch.Modified {
			p.refreshPoolEntry(ctx, ticketID, pool, logger)
			p.upsertEmbedding(ctx, ticketID, cand, logger)
		}

		logger.Info().
			Str("ticket_id", ticketID).
			Str("tier", result.Tier).
			Float64("confidence", result.Confidence).
			Bool("modified", patch.Modified).
			Msg("Updated task")
		return nil, outcome, nil
	}

	// CREATE: an allocation or persistence failure aborts the transcript.
	task := matcher.NewTaskPayload(cand)
	located, err := p.store.CreateTask(ctx, containerID, cand.Assignee, cand.Type, task)
	if err != nil {
		outcome.Error = fmt.Sprintf("create task: %v", err)
		return nil, outcome, errors.Wrap(err, "create task")
	}
	outcome.TicketID = located.Task.TicketID

	*pool = append(*pool, *located)
	p.upsertEmbedding(ctx, located.Task.TicketID, cand, logger)

	logger.Info().
		Str("ticket_id", located.Task.TicketID).
		Str("assignee", cand.Assignee).
		Str("type", cand.Type.String()).
		Msg("Created task")

	var job *filingJob
	if p.filer != nil {
		job = &filingJob{
			path:     located.Path,
			ticketID: located.Task.TicketID,
			request: domain.TicketRequest{
				Title:       located.Task.Title,
				Description: located.Task.Description,
				Assignee:    cand.Assignee,
				Type:        cand.Type,
				StoryPoints: located.Task.EstimatedTime,
			},
		}
	}
	return job, outcome, nil
}

// refreshPoolEntry reloads an updated task into the in-run pool snapshot so
// later candidates match against current state.
func (p *Pipeline) refreshPoolEntry(ctx context.Context, ticketID string, pool *[]domain.LocatedTask, logger zerolog.Logger) {
	located, err := p.store.FindTask(ctx, ticketID)
	if err != nil {
		logger.Warn().Err(err).Str("ticket_id", ticketID).Msg("Failed to refresh pool entry")
		return
	}
	for i := range *pool {
		if (*pool)[i].Task.TicketID == ticketID {
			(*pool)[i] = *located
			return
		}
	}
}

// upsertEmbedding regenerates a task's embedding after its text changed.
// Embedding failures never fail the candidate.
func (p *Pipeline) upsertEmbedding(ctx context.Context, ticketID string, cand domain.CandidateTask, logger zerolog.Logger) {
	if p.embeddings == nil {
		return
	}
	ectx := embedding.Context{
		Assignee: cand.Assignee,
		Type:     cand.Type,
		Status:   cand.Status,
	}
	if _, err := p.embeddings.Upsert(ctx, ticketID, ectx); err != nil {
		logger.Warn().Err(err).Str("ticket_id", ticketID).Msg("Embedding upsert failed")
	}
}

// fileTickets files the run's created tasks with the tracker, bounded
// concurrency, best-effort. Failures are logged; the tasks already exist.
func (p *Pipeline) fileTickets(ctx context.Context, filings []filingJob, logger zerolog.Logger) {
	if p.filer == nil || len(filings) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.TicketFilingConcurrency)

	for _, job := range filings {
		g.Go(func() error {
			ref, err := p.filer.FileTicket(gctx, job.request)
			if err != nil {
				logger.Warn().Err(err).Str("ticket_id", job.ticketID).Msg("Tracker filing failed")
				return nil
			}
			if err := p.store.SetTaskIssueRef(gctx, job.path, job.ticketID, ref); err != nil {
				logger.Warn().Err(err).Str("ticket_id", job.ticketID).Msg("Failed to record issue reference")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// generateNotes summarizes the meeting and persists the notes. Best-effort.
func (p *Pipeline) generateNotes(ctx context.Context, t *domain.Transcript, logger zerolog.Logger) {
	if p.summarizer == nil {
		return
	}
	if err := p.throttle(ctx); err != nil {
		return
	}
	text, err := p.summarizer.Summarize(ctx, t)
	if err != nil {
		logger.Warn().Err(err).Str("transcript_id", t.ID).Msg("Meeting notes generation failed")
		return
	}
	notes := &domain.MeetingNotes{
		TranscriptID: t.ID,
		Summary:      text,
		GeneratedAt:  p.clock.Now().UTC(),
	}
	if err := p.store.SaveMeetingNotes(ctx, notes); err != nil {
		logger.Warn().Err(err).Str("transcript_id", t.ID).Msg("Failed to persist meeting notes")
	}
}

// throttle inserts a fixed pause before every ThrottleEvery-th model call.
func (p *Pipeline) throttle(ctx context.Context) error {
	p.modelCalls++
	if p.modelCalls%constants.ThrottleEvery != 0 {
		return nil
	}
	p.logger.Debug().Int("calls", p.modelCalls).Msg("Throttling before model call")
	return p.sleep(ctx, constants.ThrottleDelay)
}

// recordRun persists run bookkeeping; a bookkeeping failure is logged, not
// propagated, so it cannot mask the run's real outcome.
func (p *Pipeline) recordRun(ctx context.Context, ranAt time.Time, status constants.RunStatus, logger zerolog.Logger) {
	if err := p.store.RecordRun(ctx, constants.JobProcess, ranAt, status); err != nil {
		logger.Error().Err(err).Msg("Failed to record run bookkeeping")
	}
}
