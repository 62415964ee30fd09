package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/internal/utils"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/database"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// timeNow returns the current time in unix seconds
var timeNow = func() int64 {
	return time.Now().Unix()
}

// Dispatcher hands jobs to workers.
type Dispatcher interface {
	Enqueue(ctx context.Context, j *structs.Job) error
}

// Service ties the state machine to the job & checkpoint stores, the event bus
// and the worker queue. All state changes go through Transition.
type Service struct {
	db   database.Database
	bus  bus.Bus
	qu   Dispatcher
	opts *Options

	observer Observer
	errs     chan error
	done     chan struct{}
	once     sync.Once
}

func NewService(db database.Database, eb bus.Bus, qu Dispatcher, opts *Options) *Service {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()

	me := &Service{
		db:       db,
		bus:      eb,
		qu:       qu,
		opts:     opts,
		observer: nopObserver{},
		errs:     make(chan error),
		done:     make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-me.done:
				return
			case err := <-me.errs:
				if err != nil {
					log.WithError(err).Error("[Service]")
				}
			}
		}
	}()

	return me
}

// SetObserver registers the observer told about jobs entering & leaving the
// running state (the sweeper).
func (c *Service) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
}

// Close stops the service's background logging. Safe to call more than once.
func (c *Service) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// reportErr hands an error to the logging goroutine; dropped once closed.
func (c *Service) reportErr(err error) {
	select {
	case c.errs <- err:
	case <-c.done:
		log.WithError(err).Debug("[Service] error after close")
	}
}

// CreateJob validates & persists a new job in the created state and hands it
// to a worker.
func (c *Service) CreateJob(ctx context.Context, cjr *structs.CreateJobRequest) (*structs.CreateJobResponse, error) {
	err := validateCreateJobRequest(cjr)
	if err != nil {
		return nil, err
	}

	j := buildJob(&cjr.JobSpec, timeNow())
	err = c.insertAndDispatch(ctx, j, nil)
	if err != nil {
		return nil, err
	}

	return &structs.CreateJobResponse{JobID: j.ID, Job: j}, nil
}

// Job returns a job by ID with no ownership check.
func (c *Service) Job(ctx context.Context, id string) (*structs.Job, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}
	return c.db.Job(ctx, id)
}

// Jobs returns jobs matching the query.
func (c *Service) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	return c.db.Jobs(ctx, q)
}

// JobStatus returns the full current state of a job; what a client fetches to
// resync after missing events.
func (c *Service) JobStatus(ctx context.Context, owner, id string) (*structs.JobStatusResponse, error) {
	// read the sequence before the job; the job then reflects at least every
	// event up to that sequence
	last, err := c.bus.LastSequence(ctx, id)
	if err != nil {
		return nil, err
	}

	j, err := c.ownedJob(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	resp := &structs.JobStatusResponse{Job: j, LastSequence: last}

	cp, err := c.db.Checkpoint(ctx, id)
	if errors.Is(err, ie.ErrCheckpointNotFound) || errors.Is(err, ie.ErrCheckpointExpired) {
		resp.CheckpointError = err.Error()
	} else if err != nil {
		return nil, err
	} else {
		cp.Data = nil
		resp.Checkpoint = cp
		resp.Resumable = cp.ResumableFrom(j.State, timeNow())
	}

	return resp, nil
}

// LoadCheckpoint returns the job's current checkpoint (the point a worker
// should resume from).
func (c *Service) LoadCheckpoint(ctx context.Context, id string) (*structs.Checkpoint, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}
	return c.db.Checkpoint(ctx, id)
}

// ownedJob fetches the job, checking it belongs to owner.
// An empty owner skips the check (internal callers, auth disabled).
func (c *Service) ownedJob(ctx context.Context, owner, id string) (*structs.Job, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}
	j, err := c.db.Job(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner != "" && j.OwnerID != owner {
		return nil, fmt.Errorf("%w job %s is not owned by %s", ie.ErrForbidden, id, owner)
	}
	return j, nil
}

// insertAndDispatch writes the job (& optional seed checkpoint) then enqueues it.
// If it can't be handed to a worker it's cancelled rather than left in created forever.
func (c *Service) insertAndDispatch(ctx context.Context, j *structs.Job, seed *structs.Checkpoint) error {
	err := c.db.InsertJob(ctx, j)
	if err != nil {
		return err
	}
	metrics.JobsCreated.WithLabelValues(j.Type).Inc()

	if seed != nil {
		err = c.db.SaveCheckpoint(ctx, seed)
		if err != nil {
			return err
		}
	}

	err = c.qu.Enqueue(ctx, j)
	if err == nil {
		return nil
	}

	_, cerr := c.Transition(ctx, j.ID, structs.CREATED, structs.CANCELLED, &structs.JobPatch{
		Error: fmt.Sprintf("failed to dispatch: %v", err),
	})
	if cerr != nil {
		c.reportErr(fmt.Errorf("failed to cancel undispatched job %s: %w", j.ID, cerr))
	}
	return fmt.Errorf("failed to dispatch job %s: %w", j.ID, err)
}

// publish sends the event, retrying a few times. A failure is logged & counted
// but not returned; the state change it describes has already been persisted.
//
// An event overtaken by one for a later write of the job is dropped; the
// newer event already describes the job.
func (c *Service) publish(ctx context.Context, ev *structs.Event) {
	ctx = context.WithoutCancel(ctx)

	op := func() error {
		_, err := c.bus.Publish(ctx, ev)
		if errors.Is(err, ie.ErrStaleEvent) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, backoff.WithMaxRetries(shortBackoff(), c.opts.PublishRetries))
	if errors.Is(err, ie.ErrStaleEvent) {
		metrics.StaleEvents.Inc()
		log.WithFields(log.Fields{"job_id": ev.JobID, "version": ev.Version, "type": ev.Type}).Debug("[Service] dropped superseded event")
		return
	} else if err != nil {
		metrics.PublishFailures.Inc()
		c.reportErr(fmt.Errorf("failed to publish %s event for job %s: %w", ev.Type, ev.JobID, err))
		return
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
}

// retryOnConflict runs fn until it succeeds, fails with something other than
// ErrConflict, or we run out of retries.
func (c *Service) retryOnConflict(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil || errors.Is(err, ie.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(shortBackoff(), c.opts.ConflictRetries), ctx))
}

func shortBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return b
}

func buildJob(spec *structs.JobSpec, now int64) *structs.Job {
	return &structs.Job{
		JobSpec:   *spec,
		ID:        utils.NewRandomID(),
		State:     structs.CREATED,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}
