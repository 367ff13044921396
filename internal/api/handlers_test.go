package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/joblock"
	"github.com/phrazzld/vocal-api/internal/jobstatus"
	"github.com/phrazzld/vocal-api/internal/service"
	"github.com/phrazzld/vocal-api/internal/storage"
	"github.com/phrazzld/vocal-api/internal/store"
	"github.com/phrazzld/vocal-api/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubStore serves a fixed event list; mutations are accepted and dropped.
type stubStore struct {
	events []*domain.CalendarEvent
}

func (s *stubStore) GetEvent(_ context.Context, id string) (*domain.CalendarEvent, error) {
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubStore) ListEvents(context.Context, time.Time, time.Time, int) ([]*domain.CalendarEvent, error) {
	return s.events, nil
}

func (s *stubStore) ListInstances(context.Context, string, time.Time, time.Time) ([]*domain.CalendarEvent, error) {
	return nil, nil
}

func (s *stubStore) CreateEvent(_ context.Context, fields domain.EventFields) (*domain.CalendarEvent, error) {
	start := fields.Start
	return &domain.CalendarEvent{ID: "created", Title: fields.Title, Start: &start}, nil
}

func (s *stubStore) UpdateEvent(_ context.Context, id string, ev *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	out := *ev
	out.ID = id
	return &out, nil
}

func (s *stubStore) DeleteEvent(context.Context, string) error { return nil }

type stubResolver struct{}

func (stubResolver) Update(_ context.Context, req domain.ScopeRequest) (*domain.CalendarEvent, error) {
	return &domain.CalendarEvent{ID: req.TargetEventID}, nil
}

func (stubResolver) Delete(context.Context, domain.ScopeRequest) error { return nil }

func (stubResolver) CancelOccurrence(context.Context, *domain.CalendarEvent, time.Time) error {
	return nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "transcript", nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractIntent(context.Context, string, []*domain.CalendarEvent, time.Time) (*domain.Intent, error) {
	return &domain.Intent{Operation: domain.OperationNoAction}, nil
}

type stubComposer struct{}

func (stubComposer) ComposeReminder(context.Context, *domain.CalendarEvent) (string, error) {
	return "reminder text", nil
}

type stubSpeech struct{}

func (stubSpeech) Enabled() bool { return false }

func (stubSpeech) Synthesize(context.Context, string) ([]byte, error) { return nil, nil }

type fixture struct {
	router   *chi.Mux
	statuses *jobstatus.Store
	disk     *storage.Disk
}

func newFixture(t *testing.T, st *stubStore) *fixture {
	t.Helper()
	statuses := jobstatus.New(testLogger())
	locks := joblock.New(testLogger())
	runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 8}, testLogger())
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	audio := service.NewAudioService(st, stubResolver{}, stubTranscriber{}, stubExtractor{},
		statuses, locks, runner, testLogger())
	reminders := service.NewReminderService(st, stubResolver{}, stubComposer{}, stubSpeech{},
		statuses, locks, runner, disk, testLogger())

	audioHandler := NewAudioHandler(audio, disk, testLogger())
	eventsHandler := NewEventsHandler(reminders, testLogger())

	r := chi.NewRouter()
	r.Post("/api/audio", audioHandler.Submit)
	r.Get("/api/audio/{jobID}/status", audioHandler.Status)
	r.Get("/api/audio/{jobID}/download", audioHandler.Download)
	r.Get("/api/events/current", eventsHandler.Current)

	return &fixture{router: r, statuses: statuses, disk: disk}
}

func multipartAudio(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestSubmitAcceptsUpload(t *testing.T) {
	fx := newFixture(t, &stubStore{})

	body, contentType := multipartAudio(t, "audio", "note.webm", []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/audio", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp SubmitAudioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, domain.JobStatusProcessing, resp.Status)

	// The job is observable immediately even though no worker ran yet.
	job, ok := fx.statuses.Get(resp.JobID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusProcessing, job.Status)
}

func TestSubmitWithoutFileIsBadRequest(t *testing.T) {
	fx := newFixture(t, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/audio", bytes.NewBufferString("raw"))
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusUnknownJob(t *testing.T) {
	fx := newFixture(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/audio/nope/status", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusReturnsCurrentState(t *testing.T) {
	fx := newFixture(t, &stubStore{})
	fx.statuses.Set(domain.Job{ID: "j1", Status: domain.JobStatusReady, EventID: "ev1"})

	req := httptest.NewRequest(http.MethodGet, "/api/audio/j1/status", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp JobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.JobStatusReady, resp.Status)
	assert.Equal(t, "ev1", resp.EventID)
}

func TestStatusLongPollReturnsTerminalImmediately(t *testing.T) {
	fx := newFixture(t, &stubStore{})
	fx.statuses.Set(domain.Job{ID: "j1", Status: domain.JobStatusNoAction, Reason: "nothing to do"})

	req := httptest.NewRequest(http.MethodGet, "/api/audio/j1/status?timeout=30", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		fx.router.ServeHTTP(rec, req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("long-poll did not return for a terminal job")
	}

	require.Equal(t, http.StatusOK, rec.Code)
	var resp JobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "nothing to do", resp.Reason)
}

func TestDownloadStates(t *testing.T) {
	fx := newFixture(t, &stubStore{})

	fx.statuses.Set(domain.Job{ID: "processing", Status: domain.JobStatusProcessing})
	fx.statuses.Set(domain.Job{ID: "failed", Status: domain.JobStatusError, Error: "boom"})
	fx.statuses.Set(domain.Job{ID: "noop", Status: domain.JobStatusNoAction})

	path, err := fx.disk.WriteSpeech("ready", []byte("mp3"))
	require.NoError(t, err)
	fx.statuses.Set(domain.Job{ID: "ready", Status: domain.JobStatusReady, AudioPath: path})

	tests := []struct {
		jobID    string
		wantCode int
	}{
		{"processing", http.StatusAccepted},
		{"failed", http.StatusInternalServerError},
		{"noop", http.StatusOK},
		{"ready", http.StatusOK},
		{"missing", http.StatusNotFound},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/audio/"+tc.jobID+"/download", nil)
		rec := httptest.NewRecorder()
		fx.router.ServeHTTP(rec, req)
		assert.Equal(t, tc.wantCode, rec.Code, "job %s", tc.jobID)
	}

	// The ready download streams the artifact.
	req := httptest.NewRequest(http.MethodGet, "/api/audio/ready/download", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp3", rec.Body.String())
}

func TestCurrentEventsNothingOccurring(t *testing.T) {
	fx := newFixture(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/current", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCurrentEventsQueuesAnnouncement(t *testing.T) {
	now := time.Now()
	start := now.Add(-5 * time.Minute)
	end := now.Add(25 * time.Minute)
	fx := newFixture(t, &stubStore{events: []*domain.CalendarEvent{{
		ID:     "ev1",
		Title:  "Standup",
		Start:  &start,
		End:    &end,
		Status: domain.EventStatusConfirmed,
	}}})

	req := httptest.NewRequest(http.MethodGet, "/api/events/current", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp CurrentEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	require.NotNil(t, resp.Event)
	assert.Equal(t, "ev1", resp.Event.ID)
	assert.Equal(t, "Standup", resp.Event.Title)
}
