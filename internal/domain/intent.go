package domain

// Operation is the calendar mutation an extracted intent asks for.
type Operation string

// Recognized operations.
const (
	OperationCreate   Operation = "create"
	OperationUpdate   Operation = "update"
	OperationDelete   Operation = "delete"
	OperationNoAction Operation = "no_action"
)

// Intent is the structured result of extracting a calendar instruction from a
// transcription. Start and end times are raw strings at this stage: they may
// still contain currentDate+<milliseconds> placeholders that the pipeline
// resolves before any remote call.
type Intent struct {
	Operation   Operation `json:"operation"`
	EventID     string    `json:"event_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	Recurrence  []string  `json:"recurrence,omitempty"`
	UpdateScope Scope     `json:"update_scope,omitempty"`
	DeleteScope Scope     `json:"delete_scope,omitempty"`
}
