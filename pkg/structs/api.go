package structs

import (
	"encoding/json"
)

// CreateJobRequest is an outline to create a new job.
type CreateJobRequest struct {
	JobSpec `json:",inline"`
}

// CreateJobResponse is returned when a job is created.
type CreateJobResponse struct {
	JobID string `json:"job_id"`
	Job   *Job   `json:"job"`
}

// JobStatusResponse is the full current state of a job; this is what a client
// fetches when it's missed more events than the backlog holds.
type JobStatusResponse struct {
	Job *Job `json:"job"`

	// Checkpoint is the job's current checkpoint, if there is one and it
	// hasn't expired. Checkpoint data is omitted.
	Checkpoint *Checkpoint `json:"checkpoint,omitempty"`

	// CheckpointError explains why there is no checkpoint (not found / expired).
	CheckpointError string `json:"checkpoint_error,omitempty"`

	// Resumable is true if Resume (paused jobs) or Retry (failed jobs) would
	// be able to pick up from Checkpoint.
	Resumable bool `json:"resumable"`

	// LastSequence is the sequence of the last event published for this job.
	// Events up to & including this are reflected in Job.
	LastSequence int64 `json:"last_sequence"`
}

// TerminalPayload is what a worker reports when a job finishes.
type TerminalPayload struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Action is a user control action on a job.
type Action string

const (
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionCancel Action = "cancel"
	ActionRetry  Action = "retry"
)
