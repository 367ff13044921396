package api

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/vocal-api/internal/api/shared"
	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/service"
	"github.com/phrazzld/vocal-api/internal/storage"
)

const (
	// maxUploadBytes caps uploaded recordings.
	maxUploadBytes = 25 << 20

	// maxStatusWait caps how long a status long-poll may block.
	maxStatusWait = 60 * time.Second
)

// AudioHandler serves the audio job lifecycle: upload, status poll, and
// artifact download.
type AudioHandler struct {
	audio  *service.AudioService
	disk   *storage.Disk
	logger *slog.Logger
}

// NewAudioHandler creates an AudioHandler.
func NewAudioHandler(audio *service.AudioService, disk *storage.Disk, logger *slog.Logger) *AudioHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioHandler{audio: audio, disk: disk, logger: logger}
}

// Submit handles POST /api/audio. The recording arrives as the multipart
// form field "audio"; the response carries the job ID to poll.
func (h *AudioHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing audio file")
		return
	}
	defer func() { _ = file.Close() }()

	jobID := h.disk.NewJobID()
	ext := filepath.Ext(header.Filename)
	path, size, err := h.disk.SaveUpload(jobID, ext, file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Could not store the upload", err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if err := h.audio.Submit(jobID, path, mimeType); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"Processing queue is full, try again later", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitAudioResponse{
		JobID:  jobID,
		Status: domain.JobStatusProcessing,
		Bytes:  size,
	})
}

// Status handles GET /api/audio/{jobID}/status. An optional timeout query
// parameter (seconds) turns the poll into a long-poll that returns as soon
// as the job reaches a terminal status.
func (h *AudioHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing job ID")
		return
	}

	wait := parseTimeout(r.URL.Query().Get("timeout"))
	if wait <= 0 {
		job, ok := h.audio.Status(jobID)
		if !ok {
			shared.RespondWithError(w, r, http.StatusNotFound, "Unknown job")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, jobResponse(job))
		return
	}

	job, err := h.audio.AwaitStatus(r.Context(), jobID, wait)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusRequestTimeout {
			// Timing out a long-poll is normal; hand back the latest state.
			if current, ok := h.audio.Status(jobID); ok {
				shared.RespondWithJSON(w, r, http.StatusOK, jobResponse(current))
				return
			}
		}
		shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, jobResponse(job))
}

// Download handles GET /api/audio/{jobID}/download, serving the synthesized
// audio once the job is ready.
func (h *AudioHandler) Download(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing job ID")
		return
	}

	job, ok := h.audio.Status(jobID)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown job")
		return
	}

	switch job.Status {
	case domain.JobStatusProcessing:
		shared.RespondWithJSON(w, r, http.StatusAccepted, jobResponse(job))
	case domain.JobStatusError:
		shared.RespondWithError(w, r, http.StatusInternalServerError, job.Error)
	case domain.JobStatusNoAction:
		shared.RespondWithJSON(w, r, http.StatusOK, jobResponse(job))
	case domain.JobStatusReady:
		if job.AudioPath == "" {
			shared.RespondWithJSON(w, r, http.StatusOK, jobResponse(job))
			return
		}
		f, err := h.disk.OpenSpeech(jobID)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Audio artifact is gone", err)
			return
		}
		defer func() { _ = f.Close() }()
		w.Header().Set("Content-Type", "audio/mpeg")
		http.ServeContent(w, r, jobID+".mp3", time.Time{}, f)
	default:
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Unknown job state")
	}
}

// parseTimeout reads a timeout in whole seconds, capped to maxStatusWait.
func parseTimeout(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0
	}
	wait := time.Duration(secs) * time.Second
	if wait > maxStatusWait {
		wait = maxStatusWait
	}
	return wait
}
