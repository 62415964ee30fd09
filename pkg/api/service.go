package api

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/core"
	"github.com/voidshard/keel/internal/sweeper"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/database"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/gateway"
	"github.com/voidshard/keel/pkg/queue"
	"github.com/voidshard/keel/pkg/worker"
)

// Service is a keel node: the job service plus the storage, bus & queue it
// runs on, and optionally the sweeper & job handlers.
type Service struct {
	*core.Service

	db   database.Database
	eb   bus.Bus
	qu   queue.Queue
	opts *Options

	runner  *worker.Runner
	sweeper *sweeper.Sweeper
	cancel  context.CancelFunc
}

// New connects to the database, bus & queue and returns a Service using them.
func New(dbOpts *database.Options, busOpts *bus.Options, qOpts *queue.Options, opts *Options) (*Service, error) {
	db, err := database.New(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	eb, err := bus.New(busOpts)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to event bus: %w", err)
	}

	qu, err := queue.New(db, qOpts)
	if err != nil {
		eb.Close()
		db.Close()
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	return newService(db, eb, qu, opts), nil
}

func newService(db database.Database, eb bus.Bus, qu queue.Queue, opts *Options) *Service {
	if opts == nil {
		opts = OptionsClientDefault()
	}
	if opts.Worker == nil {
		opts.Worker = &worker.Options{}
	}

	svc := core.NewService(db, eb, qu, &core.Options{CheckpointTTL: opts.CheckpointTTL})
	me := &Service{
		Service: svc,
		db:      db,
		eb:      eb,
		qu:      qu,
		opts:    opts,
		runner:  worker.NewRunner(svc, qu, opts.Worker),
	}

	if opts.Sweeper != nil {
		lock := opts.SweeperLock
		if lock == nil {
			lock = sweeper.NopLocker{}
		}
		me.sweeper = sweeper.New(db, eb, svc, lock, opts.Sweeper)
		svc.SetObserver(me.sweeper)

		ctx, cancel := context.WithCancel(context.Background())
		me.cancel = cancel
		go func() {
			err := me.sweeper.Run(ctx)
			if err != nil {
				log.WithError(err).Error("[Sweeper] stopped")
			}
		}()
	}

	return me
}

// Register a handler for a job type. Jobs are processed once RunWorkers is called.
func (s *Service) Register(jobType string, fn worker.Func) error {
	return s.runner.Register(jobType, fn)
}

// RunWorkers processes jobs with the registered handlers until Close is called.
func (s *Service) RunWorkers() error {
	return s.runner.Run()
}

// Gateway returns a realtime gateway for events on this service's bus. The
// caller serves it (it's an http.Handler) and calls Run.
func (s *Service) Gateway(auth gateway.Verifier, opts *gateway.Options) *gateway.Gateway {
	return gateway.New(s.eb, s.Service, auth, opts)
}

// Sweep runs a sweep now. Returns ErrNotSupported if this service wasn't
// created with sweeper options.
func (s *Service) Sweep(ctx context.Context) (*sweeper.Report, error) {
	if s.sweeper == nil {
		return nil, fmt.Errorf("%w sweeper not enabled", ie.ErrNotSupported)
	}
	return s.sweeper.Sweep(ctx)
}

func (s *Service) Close() error {
	if s.cancel != nil {
		s.cancel()
	}

	var first error
	for _, fn := range []func() error{s.qu.Close, s.Service.Close, s.eb.Close, s.db.Close} {
		err := fn()
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
