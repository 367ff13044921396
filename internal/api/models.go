package api

import "github.com/phrazzld/vocal-api/internal/domain"

// SubmitAudioResponse is returned when an upload is accepted for processing.
type SubmitAudioResponse struct {
	JobID  string           `json:"job_id"`
	Status domain.JobStatus `json:"status"`
	Bytes  int64            `json:"bytes"`
}

// JobStatusResponse is the poll/long-poll view of one job.
type JobStatusResponse struct {
	JobID   string           `json:"job_id"`
	Status  domain.JobStatus `json:"status"`
	EventID string           `json:"event_id,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	Warning string           `json:"warning,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// CurrentEventResponse describes the announced event and the job to poll for
// its reminder audio.
type CurrentEventResponse struct {
	JobID  string           `json:"job_id"`
	Event  *EventView       `json:"event"`
	Status domain.JobStatus `json:"status"`
}

// EventView is the client-facing shape of a calendar event.
type EventView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Location string `json:"location,omitempty"`
}

func jobResponse(job domain.Job) JobStatusResponse {
	return JobStatusResponse{
		JobID:   job.ID,
		Status:  job.Status,
		EventID: job.EventID,
		Reason:  job.Reason,
		Warning: job.Warning,
		Error:   job.Error,
	}
}
