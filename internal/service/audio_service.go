package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/joblock"
	"github.com/phrazzld/vocal-api/internal/jobstatus"
	"github.com/phrazzld/vocal-api/internal/store"
	"github.com/phrazzld/vocal-api/internal/task"
)

const (
	// eventWindow bounds how far ahead events are listed when giving the
	// intent extractor its view of the calendar.
	eventWindow = 90 * 24 * time.Hour

	// eventListLimit caps that view.
	eventListLimit = 50

	taskTypeAudio = "audio_processing"
)

// AudioService runs the upload-to-calendar pipeline. One job flows through
// transcription, intent extraction, and calendar mutation; its observable
// state lives exclusively in the status store.
type AudioService struct {
	store      store.SeriesStore
	resolver   ScopeResolver
	transcribe Transcriber
	extract    IntentExtractor
	statuses   *jobstatus.Store
	locks      *joblock.Lock
	runner     *task.Runner
	logger     *slog.Logger
	now        func() time.Time
}

// NewAudioService assembles the pipeline.
func NewAudioService(
	st store.SeriesStore,
	resolver ScopeResolver,
	transcriber Transcriber,
	extractor IntentExtractor,
	statuses *jobstatus.Store,
	locks *joblock.Lock,
	runner *task.Runner,
	logger *slog.Logger,
) *AudioService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioService{
		store:      st,
		resolver:   resolver,
		transcribe: transcriber,
		extract:    extractor,
		statuses:   statuses,
		locks:      locks,
		runner:     runner,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit registers a new job for the saved upload and queues its processing.
// The job is immediately observable as processing; callers poll the status
// store for the terminal result.
func (s *AudioService) Submit(jobID, audioPath, mimeType string) error {
	s.statuses.Set(domain.Job{
		ID:        jobID,
		Status:    domain.JobStatusProcessing,
		AudioPath: audioPath,
	})

	err := s.runner.Submit(task.NewFunc(jobID, taskTypeAudio, func(ctx context.Context) error {
		s.process(ctx, jobID, audioPath, mimeType)
		return nil
	}))
	if err != nil {
		s.statuses.Set(domain.Job{
			ID:     jobID,
			Status: domain.JobStatusError,
			Error:  "processing queue is full",
		})
		return err
	}
	return nil
}

// Status returns the job's current state.
func (s *AudioService) Status(id string) (domain.Job, bool) {
	return s.statuses.Get(id)
}

// AwaitStatus blocks until the job reaches a terminal status or the timeout
// elapses, returning the freshest state it saw.
func (s *AudioService) AwaitStatus(ctx context.Context, id string, timeout time.Duration) (domain.Job, error) {
	return s.statuses.WaitFor(ctx, id, timeout)
}

// process is the worker-side pipeline. It always leaves the job in a
// terminal status; panics aside, no job stays processing forever.
func (s *AudioService) process(ctx context.Context, jobID, audioPath, mimeType string) {
	if !s.locks.TryAcquire(jobID) {
		// A duplicate submission is already being processed.
		s.logger.Info("job already being processed, skipping", "job_id", jobID)
		return
	}
	defer s.locks.Release(jobID)

	job, err := s.run(ctx, jobID, audioPath, mimeType)
	if err != nil {
		s.logger.Error("audio job failed", "job_id", jobID, "error", err)
		s.statuses.Set(domain.Job{
			ID:        jobID,
			Status:    domain.JobStatusError,
			AudioPath: audioPath,
			Error:     err.Error(),
		})
		return
	}
	s.statuses.Set(job)
}

func (s *AudioService) run(ctx context.Context, jobID, audioPath, mimeType string) (domain.Job, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return domain.Job{}, fmt.Errorf("reading uploaded audio: %w", err)
	}

	transcript, err := s.transcribe.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return domain.Job{}, fmt.Errorf("transcription failed: %w", err)
	}
	s.logger.Info("audio transcribed", "job_id", jobID, "chars", len(transcript))

	now := s.now()
	events, err := s.store.ListEvents(ctx, now, now.Add(eventWindow), eventListLimit)
	if err != nil {
		return domain.Job{}, fmt.Errorf("listing events: %w", err)
	}

	intent, err := s.extract.ExtractIntent(ctx, transcript, events, now)
	if err != nil {
		return domain.Job{}, fmt.Errorf("intent extraction failed: %w", err)
	}

	return s.apply(ctx, jobID, audioPath, intent, now)
}

// apply executes the extracted intent against the calendar and builds the
// job's terminal state.
func (s *AudioService) apply(
	ctx context.Context,
	jobID, audioPath string,
	intent *domain.Intent,
	now time.Time,
) (domain.Job, error) {
	job := domain.Job{ID: jobID, AudioPath: audioPath}

	switch intent.Operation {
	case domain.OperationCreate:
		created, err := s.createEvent(ctx, intent, now)
		if err != nil {
			return domain.Job{}, err
		}
		job.Status = domain.JobStatusReady
		job.EventID = created.ID

	case domain.OperationUpdate:
		fields, err := intentFields(intent, now)
		if err != nil {
			return domain.Job{}, err
		}
		scope := intent.UpdateScope
		if scope == "" {
			scope = domain.ScopeThisEvent
		}
		updated, err := s.resolver.Update(ctx, domain.ScopeRequest{
			TargetEventID: intent.EventID,
			Scope:         scope,
			Fields:        fields,
		})
		if err != nil {
			return domain.Job{}, fmt.Errorf("updating event: %w", err)
		}
		job.Status = domain.JobStatusReady
		job.EventID = updated.ID

	case domain.OperationDelete:
		err := s.resolver.Delete(ctx, domain.ScopeRequest{
			TargetEventID: intent.EventID,
			Scope:         intent.DeleteScope,
		})
		if err != nil {
			return domain.Job{}, fmt.Errorf("deleting event: %w", err)
		}
		job.Status = domain.JobStatusReady
		job.EventID = intent.EventID

	case domain.OperationNoAction:
		job.Status = domain.JobStatusNoAction
		job.Reason = intent.Description

	default:
		return domain.Job{}, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, intent.Operation)
	}

	s.logger.Info("intent applied",
		"job_id", jobID,
		"operation", intent.Operation,
		"event_id", job.EventID)
	return job, nil
}

func (s *AudioService) createEvent(ctx context.Context, intent *domain.Intent, now time.Time) (*domain.CalendarEvent, error) {
	if intent.Title == "" {
		return nil, fmt.Errorf("%w: create requires a title", domain.ErrInvalidInput)
	}
	fields, err := intentFields(intent, now)
	if err != nil {
		return nil, err
	}
	if fields.Start.IsZero() {
		return nil, domain.ErrMissingStartTime
	}

	created, err := s.store.CreateEvent(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return created, nil
}

// intentFields converts the intent's raw string times into concrete event
// fields, resolving relative date placeholders against now.
func intentFields(intent *domain.Intent, now time.Time) (domain.EventFields, error) {
	fields := domain.EventFields{
		Title:       intent.Title,
		Location:    intent.Location,
		Description: intent.Description,
		Attendees:   intent.Attendees,
		Recurrence:  intent.Recurrence,
	}

	if intent.StartTime != "" {
		resolved, err := domain.ResolveRelativeDate(intent.StartTime, now)
		if err != nil {
			return domain.EventFields{}, err
		}
		start, err := time.Parse(time.RFC3339, resolved)
		if err != nil {
			return domain.EventFields{}, fmt.Errorf("%w: bad start time %q", domain.ErrInvalidDate, intent.StartTime)
		}
		fields.Start = start
	}
	if intent.EndTime != "" {
		resolved, err := domain.ResolveRelativeDate(intent.EndTime, now)
		if err != nil {
			return domain.EventFields{}, err
		}
		end, err := time.Parse(time.RFC3339, resolved)
		if err != nil {
			return domain.EventFields{}, fmt.Errorf("%w: bad end time %q", domain.ErrInvalidDate, intent.EndTime)
		}
		fields.End = &end
	}
	return fields, nil
}
