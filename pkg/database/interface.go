package database

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/database_mock/database_mock.go -package=database_mock

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// JobStore is durable CRUD for jobs with compare-and-swap writes.
type JobStore interface {
	// InsertJob writes a new job. The ID must be unique.
	InsertJob(ctx context.Context, j *structs.Job) error

	// Job returns the job by ID or ErrNotFound.
	Job(ctx context.Context, id string) (*structs.Job, error)

	// Jobs returns jobs matching the query, newest first.
	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)

	// CASUpdate applies the patch to the job iff the stored state is `expected`
	// (and any precondition on the patch holds), in a single write.
	//
	// Returns the updated job, ErrConflict if the stored state (or precondition)
	// no longer matches, or ErrNotFound if there is no such job.
	CASUpdate(ctx context.Context, id string, expected structs.State, patch *structs.JobPatch) (*structs.Job, error)

	// DeleteJobs removes the given jobs (and their checkpoints). Returns the
	// number of jobs deleted.
	DeleteJobs(ctx context.Context, ids []string) (int64, error)
}

// CheckpointStore holds the single current checkpoint per job.
type CheckpointStore interface {
	// SaveCheckpoint writes the checkpoint, overwriting any prior one for the job.
	SaveCheckpoint(ctx context.Context, cp *structs.Checkpoint) error

	// Checkpoint returns the current checkpoint for the job.
	//
	// Returns ErrCheckpointNotFound if there is none, or ErrCheckpointExpired
	// if it's past it's TTL (validity is checked here at read time).
	Checkpoint(ctx context.Context, jobID string) (*structs.Checkpoint, error)

	// DeleteExpiredCheckpoints reclaims storage used by checkpoints expired at
	// the given time (unix seconds). This is advisory; reads check expiry anyway.
	DeleteExpiredCheckpoints(ctx context.Context, now int64) (int64, error)
}

// Database is the storage backend shared by the job & checkpoint stores.
type Database interface {
	JobStore
	CheckpointStore

	Close() error
}
