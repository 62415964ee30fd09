package api

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/api_mock/api_mock.go -package=api_mock

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// API represents the functions keel servers expose to users.
//
// Calls that take an owner check the job belongs to them; an empty owner
// skips the check (auth disabled or internal callers).
type API interface {
	// Implemented in keel/internal/core.Service

	CreateJob(ctx context.Context, cjr *structs.CreateJobRequest) (*structs.CreateJobResponse, error)
	JobStatus(ctx context.Context, owner, id string) (*structs.JobStatusResponse, error)
	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)

	Pause(ctx context.Context, owner, id string) (*structs.Job, error)
	Resume(ctx context.Context, owner, id string) (*structs.Job, error)
	Cancel(ctx context.Context, owner, id string) (*structs.Job, error)
	Retry(ctx context.Context, owner, id string) (*structs.Job, error)
}

// Worker represents the functions workers use to report on the jobs they run.
// It matches keel/pkg/worker.Reporter.
type Worker interface {
	Heartbeat(ctx context.Context, id string, attempt int64) (*structs.Job, error)
	ReportProgress(ctx context.Context, id string, attempt int64, progress int, msg string) (*structs.Job, error)
	SaveCheckpoint(ctx context.Context, id string, attempt int64, step string, progress int, data *structs.CheckpointData) error
	ReportTerminal(ctx context.Context, id string, attempt int64, st structs.State, payload *structs.TerminalPayload) (*structs.Job, error)
	LoadCheckpoint(ctx context.Context, id string) (*structs.Checkpoint, error)
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
