package queue

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/queue_mock/queue_mock.go -package=queue_mock

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// Handler runs a job. It's handed the job as it is when the worker picks it up.
//
// Retries are not the queue's business; a handler that returns an error has
// the error logged, it's up to the handler to report the job failed.
type Handler func(ctx context.Context, j *structs.Job) error

// JobLoader fetches the current state of a job by ID.
type JobLoader interface {
	Job(ctx context.Context, id string) (*structs.Job, error)
}

type Queue interface {
	// Register a handler for a job type. This is called for each job of that
	// type that is enqueued (and still runnable when it's picked up).
	Register(jobType string, handler Handler) error

	// Run the queue & process jobs (via Register funcs). This blocks until Close() is called.
	Run() error

	// Enqueue hands a job to a worker.
	Enqueue(ctx context.Context, j *structs.Job) error

	// Close & shutdown the queue.
	Close() error
}
