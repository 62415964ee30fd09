package structs

import (
	"encoding/json"
)

// EventType is the kind of progress event.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventPaused    EventType = "paused"
	EventResumed   EventType = "resumed"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

const (
	// ReasonWorkerStalled is set on events the sweeper publishes for jobs whose
	// worker stopped heartbeating.
	ReasonWorkerStalled = "worker_stalled"

	// ReasonUserRequest is set on events caused by a control action.
	ReasonUserRequest = "user_request"
)

// IsTerminal returns if this event announces that the job reached an end state.
func (t EventType) IsTerminal() bool {
	switch t {
	case EventCompleted, EventFailed, EventCancelled:
		return true
	default:
		return false
	}
}

// EventTypeFor returns the event type announcing a job reaching the given state.
func EventTypeFor(st State) EventType {
	switch st {
	case PAUSED:
		return EventPaused
	case COMPLETED:
		return EventCompleted
	case FAILED:
		return EventFailed
	case CANCELLED:
		return EventCancelled
	default:
		return EventProgress
	}
}

// EventPayload is the body of a progress event.
type EventPayload struct {
	State    State           `json:"state"`
	Progress int             `json:"progress"`
	Message  string          `json:"message,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Event is a realtime message describing a state or progress change.
//
// Sequence is assigned by the bus on publish; it is strictly increasing per job.
// Version is the job version the event describes. The bus refuses an event
// with a version at or below one it already published for the job, so
// sequence order always agrees with the order writes were made in.
type Event struct {
	JobID       string        `json:"job_id"`
	OwnerID     string        `json:"owner_id"`
	Sequence    int64         `json:"sequence,omitempty"`
	Version     int64         `json:"version,omitempty"`
	Type        EventType     `json:"type"`
	Payload     *EventPayload `json:"payload,omitempty"`
	PublishedAt int64         `json:"published_at"`
}

// NewEvent builds an (unsequenced) event describing the job as it is now.
func NewEvent(j *Job, t EventType, reason string) *Event {
	return &Event{
		JobID:   j.ID,
		OwnerID: j.OwnerID,
		Version: j.Version,
		Type:    t,
		Payload: &EventPayload{
			State:    j.State,
			Progress: j.Progress,
			Message:  j.Message,
			Reason:   reason,
			Result:   j.Result,
			Error:    j.Error,
		},
	}
}
