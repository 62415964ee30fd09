package structs

import (
	"encoding/json"
)

// JobSpec are fields that can be set when a job is created
type JobSpec struct {
	// Type is the kind of job. This should match the name of a registered
	// worker handler.
	//
	// Required.
	Type string `json:"type"`

	// OwnerID is the user / session that created the job. Only the owner may
	// control the job or subscribe to its events.
	//
	// Required.
	OwnerID string `json:"owner_id"`

	// Params is optional data the job handler is given.
	Params json.RawMessage `json:"params,omitempty"`
}

// Job is a durable unit of background work.
type Job struct {
	// JobSpec are fields that can be set when a job is created
	JobSpec `json:",inline"`

	// ID is a unique identifier for this job
	ID string `json:"id"`

	// State is the current state of this job
	State State `json:"state"`

	// Progress is 0-100. It only goes down when a job is resumed from an
	// earlier checkpoint.
	Progress int `json:"progress"`

	// Message is the last progress message from the worker (user specified).
	Message string `json:"message,omitempty"`

	// Result is set when the job completes.
	Result json.RawMessage `json:"result,omitempty"`

	// Error is a human readable summary, set when the job fails.
	Error string `json:"error,omitempty"`

	// RetryOf is the ID of the failed job this job was restarted from (if any).
	RetryOf string `json:"retry_of,omitempty"`

	// CreatedAt is the time this job was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this job was last updated unix time in seconds
	UpdatedAt int64 `json:"updated_at"`

	// LastHeartbeatAt is the last time a worker said it was alive, unix seconds.
	LastHeartbeatAt int64 `json:"last_heartbeat_at"`

	// Version goes up by one on every write to the job. Events carry the
	// version they describe so older ones can be told apart from newer.
	Version int64 `json:"version"`

	// Attempt counts the times the job has entered running. A worker holds the
	// attempt it started with; reports for any other attempt are refused.
	Attempt int64 `json:"attempt"`
}

// JobPatch is a set of changes applied to a job in a single compare-and-swap
// write. Zero values are left alone.
type JobPatch struct {
	// State to move to. If empty the state is unchanged.
	State State

	// Progress to record. Writes never lower the stored progress unless
	// ResetProgress is set.
	Progress *int

	// ResetProgress permits Progress to go down (resume from a checkpoint).
	ResetProgress bool

	Message *string

	// HeartbeatAt sets LastHeartbeatAt.
	HeartbeatAt int64

	Result json.RawMessage

	Error string

	// IfHeartbeatBefore is a precondition; if set the write only applies if the
	// job's LastHeartbeatAt is strictly before this value.
	IfHeartbeatBefore int64

	// IfAttempt is a precondition; if set the write only applies if the job's
	// Attempt equals this value.
	IfAttempt int64

	// NextAttempt increments Attempt. Set when the job enters running from
	// another state.
	NextAttempt bool
}

// Apply applies the patch to the job in place & bumps it's version.
// Preconditions are not checked here.
func (j *Job) Apply(p *JobPatch, now int64) {
	j.Version++
	j.UpdatedAt = now
	if p == nil {
		return
	}
	if p.NextAttempt {
		j.Attempt++
	}
	if p.State != "" {
		j.State = p.State
	}
	if p.Progress != nil {
		if p.ResetProgress || *p.Progress > j.Progress {
			j.Progress = *p.Progress
		}
	}
	if p.Message != nil {
		j.Message = *p.Message
	}
	if p.HeartbeatAt > 0 {
		j.LastHeartbeatAt = p.HeartbeatAt
	}
	if p.Result != nil {
		j.Result = p.Result
	}
	if p.Error != "" {
		j.Error = p.Error
	}
}

// Copy returns a shallow copy of the job; raw JSON fields are shared.
func (j *Job) Copy() *Job {
	cp := *j
	return &cp
}

// Holds returns if a write with the patch's preconditions would apply to the job.
func (p *JobPatch) Holds(j *Job) bool {
	if p == nil {
		return true
	}
	if p.IfHeartbeatBefore > 0 && j.LastHeartbeatAt >= p.IfHeartbeatBefore {
		return false
	}
	if p.IfAttempt > 0 && j.Attempt != p.IfAttempt {
		return false
	}
	return true
}

// IntPtr is a helper for setting JobPatch.Progress
func IntPtr(i int) *int {
	return &i
}

// StringPtr is a helper for setting JobPatch.Message
func StringPtr(s string) *string {
	return &s
}
