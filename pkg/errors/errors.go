package errors

import (
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a state change isn't legal from the
	// job's current state. Surface it to the caller; don't retry.
	ErrInvalidTransition = fmt.Errorf("invalid transition")

	// ErrConflict is returned when a compare-and-swap write lost to a
	// concurrent writer. Re-read & retry, or treat as already handled.
	ErrConflict = fmt.Errorf("conflict")

	// ErrNoResumableCheckpoint is returned by resume when there is no valid
	// checkpoint. It wraps ErrCheckpointNotFound or ErrCheckpointExpired.
	ErrNoResumableCheckpoint = fmt.Errorf("no resumable checkpoint")
	ErrCheckpointNotFound    = fmt.Errorf("checkpoint not found")
	ErrCheckpointExpired     = fmt.Errorf("checkpoint expired")

	// ErrBacklogGap means a subscriber missed more events than the backlog retains.
	ErrBacklogGap = fmt.Errorf("backlog gap detected")

	// ErrWorkerStalled is the error recorded on jobs failed by the sweeper.
	ErrWorkerStalled = fmt.Errorf("worker stalled")

	// ErrJobNotRunning is returned to workers reporting on a job that is no
	// longer running (cancelled, paused ..). The worker should stop.
	ErrJobNotRunning = fmt.Errorf("job not running")

	// ErrStaleEvent is returned by the bus for an event describing an older
	// version of a job than one already published. It is dropped, not retried.
	ErrStaleEvent = fmt.Errorf("stale event")

	// ErrClosed is returned for work abandoned because the component shut down.
	ErrClosed = fmt.Errorf("closed")

	ErrNotFound     = fmt.Errorf("not found")
	ErrForbidden    = fmt.Errorf("forbidden")
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrNoJobType    = fmt.Errorf("no job type specified")
	ErrNoOwner      = fmt.Errorf("no owner specified")
	ErrMaxExceeded  = fmt.Errorf("max length exceeded")
	ErrInvalidArg   = fmt.Errorf("invalid arg")
	ErrNotSupported = fmt.Errorf("not supported")
)
