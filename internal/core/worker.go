package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/voidshard/keel/internal/metrics"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// Heartbeat tells us the worker is alive. The first heartbeat on a created job
// moves it to running.
//
// A worker claims a job with attempt 0 & is handed back the job with the
// attempt it now holds; later heartbeats & reports pass that attempt.
//
// Returns ErrJobNotRunning if the job has been paused, cancelled or finished,
// or has moved on to another attempt; the worker should stop.
func (c *Service) Heartbeat(ctx context.Context, id string, attempt int64) (*structs.Job, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}

	var (
		out     *structs.Job
		started bool
	)
	err := c.retryOnConflict(ctx, func() error {
		j, err := c.db.Job(ctx, id)
		if err != nil {
			return err
		}

		if attempt > 0 && j.Attempt != attempt {
			return fmt.Errorf("%w job %s is on attempt %d not %d", ie.ErrJobNotRunning, id, j.Attempt, attempt)
		}

		patch := &structs.JobPatch{HeartbeatAt: timeNow(), IfAttempt: attempt}
		switch j.State {
		case structs.CREATED:
			out, err = c.Transition(ctx, id, structs.CREATED, structs.RUNNING, patch)
			started = err == nil
		case structs.RUNNING:
			out, err = c.Transition(ctx, id, structs.RUNNING, structs.RUNNING, patch)
		default:
			return fmt.Errorf("%w job %s is %s", ie.ErrJobNotRunning, id, j.State)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if started {
		c.publish(ctx, structs.NewEvent(out, structs.EventProgress, ""))
	}
	return out, nil
}

// ReportProgress records progress (0-100) & a message for a running job and
// publishes a progress event. Stored progress never goes down.
func (c *Service) ReportProgress(ctx context.Context, id string, attempt int64, progress int, msg string) (*structs.Job, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}
	if err := validateProgress(progress, msg); err != nil {
		return nil, err
	}

	j, err := c.Transition(ctx, id, structs.RUNNING, structs.RUNNING, &structs.JobPatch{
		Progress:    structs.IntPtr(progress),
		Message:     structs.StringPtr(msg),
		HeartbeatAt: timeNow(),
		IfAttempt:   attempt,
	})
	if errors.Is(err, ie.ErrConflict) {
		return nil, fmt.Errorf("%w: %w", ie.ErrJobNotRunning, err)
	} else if err != nil {
		return nil, err
	}

	c.publish(ctx, structs.NewEvent(j, structs.EventProgress, ""))
	return j, nil
}

// SaveCheckpoint records the point a running job may be resumed from,
// replacing any earlier checkpoint.
func (c *Service) SaveCheckpoint(ctx context.Context, id string, attempt int64, step string, progress int, data *structs.CheckpointData) error {
	if err := validateJobID(id); err != nil {
		return err
	}
	if err := validateCheckpoint(step, progress, data); err != nil {
		return err
	}

	j, err := c.db.Job(ctx, id)
	if err != nil {
		return err
	}
	if j.State != structs.RUNNING {
		return fmt.Errorf("%w job %s is %s", ie.ErrJobNotRunning, id, j.State)
	}
	if attempt > 0 && j.Attempt != attempt {
		return fmt.Errorf("%w job %s is on attempt %d not %d", ie.ErrJobNotRunning, id, j.Attempt, attempt)
	}

	return c.saveCheckpoint(ctx, &structs.Checkpoint{JobID: id, Step: step, Progress: progress, Data: data})
}

// ReportTerminal finishes a running job as completed or failed.
func (c *Service) ReportTerminal(ctx context.Context, id string, attempt int64, st structs.State, payload *structs.TerminalPayload) (*structs.Job, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}
	if st != structs.COMPLETED && st != structs.FAILED {
		return nil, fmt.Errorf("%w workers may only report completed or failed, got %s", ie.ErrInvalidArg, st)
	}
	if payload == nil {
		payload = &structs.TerminalPayload{}
	}

	patch := &structs.JobPatch{HeartbeatAt: timeNow(), IfAttempt: attempt}
	if st == structs.COMPLETED {
		patch.Progress = structs.IntPtr(100)
		patch.Result = payload.Result
	} else {
		patch.Error = payload.Error
		if patch.Error == "" {
			patch.Error = "job failed"
		}
	}

	j, err := c.Transition(ctx, id, structs.RUNNING, st, patch)
	if errors.Is(err, ie.ErrConflict) {
		return nil, fmt.Errorf("%w: %w", ie.ErrJobNotRunning, err)
	} else if err != nil {
		return nil, err
	}

	c.publish(ctx, structs.NewEvent(j, structs.EventTypeFor(st), ""))
	return j, nil
}

// RecoverStalled handles a running job whose worker stopped heartbeating
// before `staleBefore`: paused if it has a valid checkpoint, else failed.
//
// The write only applies if the job is still running with a heartbeat before
// staleBefore, so a worker that woke up in the meantime wins.
func (c *Service) RecoverStalled(ctx context.Context, id string, staleBefore int64) (*structs.Job, error) {
	to := structs.PAUSED
	patch := &structs.JobPatch{
		IfHeartbeatBefore: staleBefore,
		Message:           structs.StringPtr(ie.ErrWorkerStalled.Error()),
	}

	_, err := c.db.Checkpoint(ctx, id)
	if errors.Is(err, ie.ErrCheckpointNotFound) || errors.Is(err, ie.ErrCheckpointExpired) {
		to = structs.FAILED
		patch.Error = ie.ErrWorkerStalled.Error()
	} else if err != nil {
		return nil, err
	}

	j, err := c.Transition(ctx, id, structs.RUNNING, to, patch)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, structs.NewEvent(j, structs.EventTypeFor(to), structs.ReasonWorkerStalled))
	return j, nil
}

func (c *Service) saveCheckpoint(ctx context.Context, cp *structs.Checkpoint) error {
	cp.SavedAt = timeNow()
	cp.TTL = int64(c.opts.CheckpointTTL.Seconds())
	err := c.db.SaveCheckpoint(ctx, cp)
	if err == nil {
		metrics.CheckpointsSaved.Inc()
	}
	return err
}
