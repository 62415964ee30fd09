package core

import (
	"context"
	"errors"
	"fmt"

	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

const (
	// StepStart is the step of the checkpoint written when a job is paused
	// before it saved one of it's own; resuming starts from the beginning.
	StepStart = "start"
)

// Pause stops a running job. The job keeps it's current checkpoint; if it has
// none a StepStart checkpoint is written so it can always be resumed.
func (c *Service) Pause(ctx context.Context, owner, id string) (*structs.Job, error) {
	var out *structs.Job
	err := c.retryOnConflict(ctx, func() error {
		j, err := c.ownedJob(ctx, owner, id)
		if err != nil {
			return err
		}
		if j.State != structs.RUNNING {
			return fmt.Errorf("%w cannot pause job in state %s", ie.ErrInvalidTransition, j.State)
		}

		err = c.ensureCheckpoint(ctx, j)
		if err != nil {
			return err
		}

		out, err = c.Transition(ctx, id, structs.RUNNING, structs.PAUSED, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, structs.NewEvent(out, structs.EventPaused, structs.ReasonUserRequest))
	return out, nil
}

// Resume restarts a paused job from it's checkpoint. Progress is reset to the
// checkpoint's progress & the job is handed back to a worker.
func (c *Service) Resume(ctx context.Context, owner, id string) (*structs.Job, error) {
	var out *structs.Job
	err := c.retryOnConflict(ctx, func() error {
		j, err := c.ownedJob(ctx, owner, id)
		if err != nil {
			return err
		}
		if j.State != structs.PAUSED {
			return fmt.Errorf("%w cannot resume job in state %s", ie.ErrInvalidTransition, j.State)
		}

		cp, err := c.resumableCheckpoint(ctx, j)
		if err != nil {
			return err
		}

		out, err = c.Transition(ctx, id, structs.PAUSED, structs.RUNNING, &structs.JobPatch{
			Progress:      structs.IntPtr(cp.Progress),
			ResetProgress: true,
			Message:       structs.StringPtr(fmt.Sprintf("resuming after %s", cp.Step)),
			HeartbeatAt:   timeNow(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, structs.NewEvent(out, structs.EventResumed, structs.ReasonUserRequest))

	err = c.qu.Enqueue(ctx, out)
	if err != nil {
		// the sweeper recovers it once the heartbeat goes stale
		c.reportErr(fmt.Errorf("failed to dispatch resumed job %s: %w", id, err))
	}
	return out, nil
}

// Cancel ends a job that hasn't finished. A running worker notices on it's
// next report & stops.
func (c *Service) Cancel(ctx context.Context, owner, id string) (*structs.Job, error) {
	var out *structs.Job
	err := c.retryOnConflict(ctx, func() error {
		j, err := c.ownedJob(ctx, owner, id)
		if err != nil {
			return err
		}
		if j.State.IsTerminal() {
			return fmt.Errorf("%w cannot cancel job in state %s", ie.ErrInvalidTransition, j.State)
		}

		out, err = c.Transition(ctx, id, j.State, structs.CANCELLED, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, structs.NewEvent(out, structs.EventCancelled, structs.ReasonUserRequest))
	return out, nil
}

// Retry starts a new job with the same spec as a failed one. If the failed job
// left a valid checkpoint the new job starts from it.
func (c *Service) Retry(ctx context.Context, owner, id string) (*structs.Job, error) {
	old, err := c.ownedJob(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if old.State != structs.FAILED {
		return nil, fmt.Errorf("%w cannot retry job in state %s", ie.ErrInvalidTransition, old.State)
	}

	now := timeNow()
	j := buildJob(&old.JobSpec, now)
	j.RetryOf = old.ID

	var seed *structs.Checkpoint
	cp, err := c.resumableCheckpoint(ctx, old)
	if err == nil {
		seed = &structs.Checkpoint{
			JobID:    j.ID,
			Step:     cp.Step,
			Progress: cp.Progress,
			Data:     cp.Data,
			SavedAt:  now,
			TTL:      int64(c.opts.CheckpointTTL.Seconds()),
		}
		j.Progress = cp.Progress
	} else if !errors.Is(err, ie.ErrNoResumableCheckpoint) {
		return nil, err
	}

	err = c.insertAndDispatch(ctx, j, seed)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// resumableCheckpoint returns the job's checkpoint if it may be resumed from,
// else an error wrapping ErrNoResumableCheckpoint and the reason.
func (c *Service) resumableCheckpoint(ctx context.Context, j *structs.Job) (*structs.Checkpoint, error) {
	cp, err := c.db.Checkpoint(ctx, j.ID)
	if errors.Is(err, ie.ErrCheckpointNotFound) || errors.Is(err, ie.ErrCheckpointExpired) {
		return nil, fmt.Errorf("%w: %w", ie.ErrNoResumableCheckpoint, err)
	} else if err != nil {
		return nil, err
	}
	if !cp.ResumableFrom(j.State, timeNow()) {
		return nil, fmt.Errorf("%w: job %s is %s", ie.ErrNoResumableCheckpoint, j.ID, j.State)
	}
	return cp, nil
}

// ensureCheckpoint writes a StepStart checkpoint if the job has no valid one.
func (c *Service) ensureCheckpoint(ctx context.Context, j *structs.Job) error {
	_, err := c.db.Checkpoint(ctx, j.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ie.ErrCheckpointNotFound) && !errors.Is(err, ie.ErrCheckpointExpired) {
		return err
	}
	return c.saveCheckpoint(ctx, &structs.Checkpoint{
		JobID:    j.ID,
		Step:     StepStart,
		Progress: 0,
		Data:     &structs.CheckpointData{Type: j.Type, SchemaVersion: structs.CheckpointSchemaVersion},
	})
}
