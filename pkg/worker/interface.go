package worker

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/worker_mock/worker_mock.go -package=worker_mock

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// Reporter is how a worker tells the rest of the system what a job is doing.
// Implemented in keel/internal/core.Service.
//
// Every call but the first Heartbeat passes the attempt the worker holds; a
// job that has since been paused & resumed is on a new attempt and refuses
// reports from the old one with ErrJobNotRunning.
type Reporter interface {
	// Heartbeat marks the job as alive (starting it if needed). Attempt 0
	// claims the job & returns it with the attempt now held.
	Heartbeat(ctx context.Context, id string, attempt int64) (*structs.Job, error)

	// ReportProgress records progress (0-100) & a message.
	ReportProgress(ctx context.Context, id string, attempt int64, progress int, msg string) (*structs.Job, error)

	// SaveCheckpoint records the point the job may be resumed from.
	SaveCheckpoint(ctx context.Context, id string, attempt int64, step string, progress int, data *structs.CheckpointData) error

	// ReportTerminal finishes the job as completed or failed.
	ReportTerminal(ctx context.Context, id string, attempt int64, st structs.State, payload *structs.TerminalPayload) (*structs.Job, error)

	// LoadCheckpoint returns the job's current checkpoint.
	LoadCheckpoint(ctx context.Context, id string) (*structs.Checkpoint, error)
}
