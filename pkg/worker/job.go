package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/voidshard/keel/pkg/structs"
)

// Job is handed to a Func; it's the job being run plus helpers to report on it.
type Job struct {
	*structs.Job

	rep    Reporter
	resume *structs.Checkpoint

	lock   sync.Mutex
	result json.RawMessage
}

// Checkpoint returns the checkpoint this run should pick up from, or nil if
// the job is starting from scratch.
func (j *Job) Checkpoint() *structs.Checkpoint {
	return j.resume
}

// ResumeState decodes the body of the checkpoint being resumed into out.
// Returns false (and leaves out alone) if there is nothing to resume from.
func (j *Job) ResumeState(out interface{}) (bool, error) {
	if j.resume == nil || j.resume.Data == nil {
		return false, nil
	}
	return true, j.resume.Data.Decode(out)
}

// DecodeParams decodes the job params into out.
func (j *Job) DecodeParams(out interface{}) error {
	if len(j.Job.Params) == 0 {
		return nil
	}
	return json.Unmarshal(j.Job.Params, out)
}

// Report records progress (0-100) & a message.
//
// Returns ErrJobNotRunning if the job has been paused or cancelled; the
// Func should return (with that error) as soon as possible.
func (j *Job) Report(ctx context.Context, progress int, msg string) error {
	out, err := j.rep.ReportProgress(ctx, j.ID, j.Attempt, progress, msg)
	if err != nil {
		return err
	}
	j.Job.Progress = out.Progress
	j.Job.Message = out.Message
	return nil
}

// SaveCheckpoint saves the point the job can be resumed from. Body is encoded
// as JSON and handed back via ResumeState on a later run.
func (j *Job) SaveCheckpoint(ctx context.Context, step string, progress int, body interface{}) error {
	data, err := structs.NewCheckpointData(j.Type, structs.CheckpointSchemaVersion, body)
	if err != nil {
		return err
	}
	return j.rep.SaveCheckpoint(ctx, j.ID, j.Attempt, step, progress, data)
}

// Complete sets the result the job finishes with. Return it from the Func:
//
//	return j.Complete(summary)
func (j *Job) Complete(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	j.result = raw
	return nil
}

// Fail returns an error that fails the job with the given message.
func (j *Job) Fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func (j *Job) getResult() json.RawMessage {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.result
}
