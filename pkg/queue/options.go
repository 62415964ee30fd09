package queue

import (
	"crypto/tls"

	"github.com/voidshard/keel/pkg/structs"
)

const (
	// MemoryURL selects the in-process queue.
	MemoryURL = "memory://"

	defConcurrency = 10
)

// Options are options for the queue.
type Options struct {
	// URL encodes how we'll connect to the queue, eg. redis://localhost:6379/1
	URL string

	// TLSConfig needed to connect to the queue (optional).
	TLSConfig *tls.Config

	// Concurrency is the max number of jobs a worker process runs at once.
	Concurrency int
}

func (o *Options) SetDefaults() {
	if o.URL == "" {
		o.URL = MemoryURL
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defConcurrency
	}
}

// New returns a Queue for the given options; asynq unless the URL is MemoryURL.
func New(loader JobLoader, opts *Options) (Queue, error) {
	opts.SetDefaults()
	if opts.URL == MemoryURL {
		return NewMemory(loader, opts), nil
	}
	return NewAsynqQueue(loader, opts)
}

// runnable returns if a job picked up by a worker should be handed to it's handler.
func runnable(j *structs.Job) bool {
	return j.State == structs.CREATED || j.State == structs.RUNNING
}
