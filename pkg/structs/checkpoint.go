package structs

import (
	"encoding/json"
	"time"
)

const (
	// DefaultCheckpointTTL is how long a checkpoint may be resumed from.
	DefaultCheckpointTTL = int64(7 * 24 * time.Hour / time.Second)

	// CheckpointSchemaVersion is the current CheckpointData schema version
	// written by this package.
	CheckpointSchemaVersion = 1
)

// CheckpointData is the job-type specific part of a checkpoint.
//
// Type matches the job Type; Body is decoded by the handler for that type, and
// SchemaVersion lets a handler evolve the shape of Body while still reading
// checkpoints written by older versions.
type CheckpointData struct {
	Type          string          `json:"type"`
	SchemaVersion int             `json:"schema_version"`
	Body          json.RawMessage `json:"body,omitempty"`
}

// NewCheckpointData builds CheckpointData by encoding the given body.
func NewCheckpointData(jobType string, version int, body interface{}) (*CheckpointData, error) {
	if body == nil {
		return &CheckpointData{Type: jobType, SchemaVersion: version}, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &CheckpointData{Type: jobType, SchemaVersion: version, Body: raw}, nil
}

// Decode unmarshals Body into out. It's a no-op if there is no body.
func (d *CheckpointData) Decode(out interface{}) error {
	if d == nil || len(d.Body) == 0 {
		return nil
	}
	return json.Unmarshal(d.Body, out)
}

// Checkpoint is a snapshot of job progress sufficient to resume without
// redoing completed work. There is at most one current checkpoint per job.
type Checkpoint struct {
	// JobID is the job this checkpoint belongs to
	JobID string `json:"job_id"`

	// Step describes where execution stopped. Steps up to and including this
	// one are considered done.
	Step string `json:"step"`

	// Progress matches the job's progress when the checkpoint was saved.
	Progress int `json:"progress"`

	Data *CheckpointData `json:"data,omitempty"`

	// SavedAt is when this checkpoint was written, unix seconds
	SavedAt int64 `json:"saved_at"`

	// TTL in seconds after SavedAt that this checkpoint can be resumed from.
	TTL int64 `json:"ttl"`
}

// ExpiresAt returns the unix time (seconds) this checkpoint expires.
func (c *Checkpoint) ExpiresAt() int64 {
	return c.SavedAt + c.TTL
}

// Expired returns if the checkpoint is past it's TTL at the given time.
func (c *Checkpoint) Expired(now int64) bool {
	return c.ExpiresAt() <= now
}

// ResumableFrom returns if this checkpoint may be used to resume a job in the
// given state at the given time.
func (c *Checkpoint) ResumableFrom(st State, now int64) bool {
	if c.Expired(now) {
		return false
	}
	return st == PAUSED || st == FAILED
}
