package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/queue"
	"github.com/voidshard/keel/pkg/structs"
)

// Func does the work of a job.
//
// Returning nil completes the job (with any result given to Complete), an
// error fails it. If the job is paused or cancelled while running the ctx is
// cancelled & whatever the Func returns is ignored.
type Func func(ctx context.Context, j *Job) error

// Runner runs registered Funcs for jobs handed out by the queue, keeping them
// alive with heartbeats and reporting how they end.
type Runner struct {
	rep  Reporter
	qu   queue.Queue
	opts *Options
}

func NewRunner(rep Reporter, qu queue.Queue, opts *Options) *Runner {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	return &Runner{rep: rep, qu: qu, opts: opts}
}

// Register a Func for a job type.
func (r *Runner) Register(jobType string, fn Func) error {
	return r.qu.Register(jobType, func(ctx context.Context, j *structs.Job) error {
		return r.run(ctx, j, fn)
	})
}

// Run processes jobs until Close is called.
func (r *Runner) Run() error {
	return r.qu.Run()
}

func (r *Runner) Close() error {
	return r.qu.Close()
}

func (r *Runner) run(ctx context.Context, sj *structs.Job, fn Func) error {
	l := log.WithFields(log.Fields{"job_id": sj.ID, "type": sj.Type})

	current, err := r.rep.Heartbeat(ctx, sj.ID, 0)
	if errors.Is(err, ie.ErrJobNotRunning) {
		l.Debug("[Worker] job no longer runnable, skipping")
		return nil
	} else if err != nil {
		return err
	}

	j := &Job{Job: current, rep: r.rep}

	cp, err := r.rep.LoadCheckpoint(ctx, sj.ID)
	if err == nil && cp.Step != "" {
		j.resume = cp
		l = l.WithField("step", cp.Step)
		l.Info("[Worker] resuming from checkpoint")
	} else if err != nil && !errors.Is(err, ie.ErrCheckpointNotFound) && !errors.Is(err, ie.ErrCheckpointExpired) {
		return err
	}

	jctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := &stopFlag{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.heartbeat(jctx, sj.ID, current.Attempt, stopped, cancel)
	}()

	ferr := fn(jctx, j)
	cancel()
	wg.Wait()

	if stopped.get() || errors.Is(ferr, ie.ErrJobNotRunning) {
		l.Info("[Worker] job stopped elsewhere")
		return nil
	}

	st := structs.COMPLETED
	payload := &structs.TerminalPayload{Result: j.getResult()}
	if ferr != nil {
		st = structs.FAILED
		payload = &structs.TerminalPayload{Error: ferr.Error()}
	}

	_, err = r.rep.ReportTerminal(context.WithoutCancel(ctx), sj.ID, current.Attempt, st, payload)
	if errors.Is(err, ie.ErrJobNotRunning) {
		// paused / cancelled as we finished
		l.WithError(err).Info("[Worker] job finished after it was stopped")
		return nil
	}
	return err
}

// heartbeat reports the job alive every interval until ctx is done. If we're
// told the job isn't running anymore (or not by this attempt) the job's ctx
// is cancelled.
func (r *Runner) heartbeat(ctx context.Context, id string, attempt int64, stopped *stopFlag, cancel context.CancelFunc) {
	ticker := time.NewTicker(r.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := r.rep.Heartbeat(ctx, id, attempt)
			if errors.Is(err, ie.ErrJobNotRunning) {
				stopped.set()
				cancel()
				return
			} else if err != nil && ctx.Err() == nil {
				log.WithError(err).WithField("job_id", id).Warn("[Worker] heartbeat failed")
			}
		}
	}
}

type stopFlag struct {
	lock sync.Mutex
	val  bool
}

func (s *stopFlag) set() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.val = true
}

func (s *stopFlag) get() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.val
}
