package domain

// JobStatus is the lifecycle state of one audio-processing or
// reminder-generation job.
type JobStatus string

// Possible job status values. processing is the only non-terminal state.
const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusReady      JobStatus = "ready"
	JobStatusError      JobStatus = "error"
	JobStatusNoAction   JobStatus = "no_action"
)

// Terminal reports whether s is a terminal status. A job transitions to a
// terminal status exactly once and is never set back to processing.
func (s JobStatus) Terminal() bool {
	return s != JobStatusProcessing
}

// Job is the per-request status record read by polling clients. It is owned
// by the request that created it; the orchestrator mutates it exactly once at
// the terminal transition.
type Job struct {
	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`

	// AudioPath is the output artifact location once status is ready for a
	// reminder job.
	AudioPath string `json:"audio_path,omitempty"`

	// Error carries a human-readable message only, never retry counts or
	// internal error chains.
	Error string `json:"error,omitempty"`

	// EventID links the job to the calendar event it produced or consumed.
	EventID string `json:"event_id,omitempty"`

	// Reason explains a no_action outcome, or carries the spoken reminder
	// text for a reminder job.
	Reason string `json:"reason,omitempty"`

	// Warning flags a degraded ready outcome, such as an announced
	// occurrence that could not be cancelled afterwards.
	Warning string `json:"warning,omitempty"`
}
