package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/pkg/structs"
)

const (
	asyncWorkQueue = "keel:work"
)

type Asynq struct {
	opts *Options

	// the asynq client
	cli *asynq.Client
	rco asynq.RedisClientOpt

	// fetches jobs by ID when tasks are picked up
	loader JobLoader

	// if register is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server
	done chan struct{}
}

func NewAsynqQueue(loader JobLoader, opts *Options) (*Asynq, error) {
	opts.SetDefaults()
	rco, err := redisClientOpt(opts)
	if err != nil {
		return nil, err
	}
	return &Asynq{
		opts:   opts,
		cli:    asynq.NewClient(rco),
		rco:    rco,
		loader: loader,
		done:   make(chan struct{}),
	}, nil
}

func (a *Asynq) Close() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	select {
	case <-a.done:
		return nil
	default:
		close(a.done)
	}

	if a.srv != nil {
		a.srv.Stop()
		a.srv.Shutdown()
	}
	return a.cli.Close()
}

func (a *Asynq) Register(jobType string, handler Handler) error {
	if a.mux == nil {
		a.buildServer()
	}
	a.mux.HandleFunc(jobType, func(ctx context.Context, t *asynq.Task) error {
		return a.handle(ctx, t, handler)
	})
	return nil
}

// Run starts processing & blocks until Close is called.
func (a *Asynq) Run() error {
	if a.mux == nil {
		return fmt.Errorf("no handlers registered")
	}
	err := a.srv.Start(a.mux)
	if err != nil {
		return err
	}
	<-a.done
	return nil
}

func (a *Asynq) Enqueue(ctx context.Context, j *structs.Job) error {
	qtask := asynq.NewTask(j.Type, []byte(j.ID))
	_, err := a.cli.EnqueueContext(
		ctx,
		qtask,
		asynq.Queue(asyncWorkQueue),
		asynq.MaxRetry(0), // retries go through the state machine, not the queue
	)
	return err
}

// handle loads the job a task refers to & passes it to the handler if it's still runnable
func (a *Asynq) handle(ctx context.Context, t *asynq.Task, handler Handler) error {
	j, err := a.loader.Job(ctx, string(t.Payload()))
	if err != nil {
		return err
	}
	if !runnable(j) {
		log.WithFields(log.Fields{"job_id": j.ID, "state": j.State}).Debug("[Queue] skipping job that is no longer runnable")
		return nil
	}
	err = handler(ctx, j)
	if err != nil {
		log.WithError(err).WithField("job_id", j.ID).Warn("[Queue] handler returned error")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return nil
}

func (a *Asynq) buildServer() {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return
	}
	srv := asynq.NewServer(
		a.rco,
		asynq.Config{
			Queues:      map[string]int{asyncWorkQueue: 1},
			Concurrency: a.opts.Concurrency,
			Logger:      log.StandardLogger(),
		},
	)
	mux := asynq.NewServeMux()
	a.srv = srv
	a.mux = mux
}

// redisClientOpt converts a redis:// URL into asynq connection options
func redisClientOpt(opts *Options) (asynq.RedisClientOpt, error) {
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	tlsCfg := ropts.TLSConfig
	if opts.TLSConfig != nil {
		tlsCfg = opts.TLSConfig
	}
	return asynq.RedisClientOpt{
		Network:   ropts.Network,
		Addr:      ropts.Addr,
		Username:  ropts.Username,
		Password:  ropts.Password,
		DB:        ropts.DB,
		TLSConfig: tlsCfg,
	}, nil
}
