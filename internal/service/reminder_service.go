package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/joblock"
	"github.com/phrazzld/vocal-api/internal/jobstatus"
	"github.com/phrazzld/vocal-api/internal/storage"
	"github.com/phrazzld/vocal-api/internal/store"
	"github.com/phrazzld/vocal-api/internal/task"
)

// reminderWindow is how far around now the current-events listing looks.
const reminderWindow = time.Hour

const taskTypeReminder = "reminder_generation"

// ErrNothingOccurring is returned when no event is in progress right now.
var ErrNothingOccurring = errors.New("no event is occurring right now")

// ReminderService announces the event happening right now: it composes a
// spoken reminder, synthesizes it, and cancels the announced occurrence so
// it is never announced twice.
type ReminderService struct {
	store    store.SeriesStore
	resolver ScopeResolver
	composer ReminderComposer
	speech   SpeechSynthesizer
	statuses *jobstatus.Store
	locks    *joblock.Lock
	runner   *task.Runner
	disk     *storage.Disk
	logger   *slog.Logger
	now      func() time.Time
}

// NewReminderService assembles the reminder pipeline.
func NewReminderService(
	st store.SeriesStore,
	resolver ScopeResolver,
	composer ReminderComposer,
	speech SpeechSynthesizer,
	statuses *jobstatus.Store,
	locks *joblock.Lock,
	runner *task.Runner,
	disk *storage.Disk,
	logger *slog.Logger,
) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{
		store:    st,
		resolver: resolver,
		composer: composer,
		speech:   speech,
		statuses: statuses,
		locks:    locks,
		runner:   runner,
		disk:     disk,
		logger:   logger,
		now:      time.Now,
	}
}

// CurrentEvents returns the events in progress right now.
func (s *ReminderService) CurrentEvents(ctx context.Context) ([]*domain.CalendarEvent, error) {
	now := s.now()
	events, err := s.store.ListEvents(ctx, now.Add(-reminderWindow), now.Add(reminderWindow), eventListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	var occurring []*domain.CalendarEvent
	for _, ev := range events {
		if ev.Status != domain.EventStatusCancelled && ev.OccurringAt(now) {
			occurring = append(occurring, ev)
		}
	}
	return occurring, nil
}

// Announce picks the first event occurring right now and queues reminder
// generation for it, returning the job ID to poll. The job is keyed on the
// calendar event, so concurrent callers share one announcement.
func (s *ReminderService) Announce(ctx context.Context) (string, *domain.CalendarEvent, error) {
	occurring, err := s.CurrentEvents(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(occurring) == 0 {
		return "", nil, ErrNothingOccurring
	}
	event := occurring[0]

	if !s.locks.TryAcquire(event.ID) {
		// Another caller is already announcing this event; point them at the
		// shared job.
		if job, ok := s.statuses.Get(reminderJobID(event.ID)); ok {
			return job.ID, event, nil
		}
		return reminderJobID(event.ID), event, nil
	}

	jobID := reminderJobID(event.ID)
	s.statuses.Set(domain.Job{
		ID:      jobID,
		Status:  domain.JobStatusProcessing,
		EventID: event.ID,
	})

	occursAt := *event.Start
	err = s.runner.Submit(task.NewFunc(jobID, taskTypeReminder, func(ctx context.Context) error {
		defer s.locks.Release(event.ID)
		s.generate(ctx, jobID, event, occursAt)
		return nil
	}))
	if err != nil {
		s.locks.Release(event.ID)
		s.statuses.Set(domain.Job{
			ID:      jobID,
			Status:  domain.JobStatusError,
			EventID: event.ID,
			Error:   "processing queue is full",
		})
		return "", nil, err
	}
	return jobID, event, nil
}

func (s *ReminderService) generate(ctx context.Context, jobID string, event *domain.CalendarEvent, occursAt time.Time) {
	job, err := s.render(ctx, jobID, event)
	if err != nil {
		s.logger.Error("reminder generation failed",
			"job_id", jobID, "event_id", event.ID, "error", err)
		s.statuses.Set(domain.Job{
			ID:      jobID,
			Status:  domain.JobStatusError,
			EventID: event.ID,
			Error:   err.Error(),
		})
		return
	}

	// The announced occurrence goes away so it cannot be announced again.
	// When that fails the reminder itself still stands, but the occurrence
	// survives and the next poll may announce it again; the job records the
	// degradation.
	if err := s.resolver.CancelOccurrence(ctx, event, occursAt); err != nil {
		s.logger.Warn("could not cancel announced occurrence",
			"event_id", event.ID, "error", err)
		job.Warning = "occurrence was not cancelled and may be announced again"
	}

	s.statuses.Set(job)
}

func (s *ReminderService) render(ctx context.Context, jobID string, event *domain.CalendarEvent) (domain.Job, error) {
	text, err := s.composer.ComposeReminder(ctx, event)
	if err != nil {
		return domain.Job{}, fmt.Errorf("composing reminder: %w", err)
	}

	job := domain.Job{
		ID:      jobID,
		Status:  domain.JobStatusReady,
		EventID: event.ID,
		Reason:  text,
	}

	if s.speech != nil && s.speech.Enabled() {
		audio, err := s.speech.Synthesize(ctx, text)
		if err != nil {
			return domain.Job{}, fmt.Errorf("synthesizing reminder: %w", err)
		}
		path, err := s.disk.WriteSpeech(jobID, audio)
		if err != nil {
			return domain.Job{}, fmt.Errorf("storing reminder audio: %w", err)
		}
		job.AudioPath = path
	}
	return job, nil
}

// reminderJobID derives the shared job ID for an event's announcement.
func reminderJobID(eventID string) string {
	return "reminder-" + eventID
}
