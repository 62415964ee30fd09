package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/database"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// timeNow returns the current time in unix seconds
var timeNow = func() int64 {
	return time.Now().Unix()
}

var endStates = []structs.State{structs.COMPLETED, structs.FAILED, structs.CANCELLED}

// Recoverer moves a stalled job on through the state machine.
type Recoverer interface {
	RecoverStalled(ctx context.Context, id string, staleBefore int64) (*structs.Job, error)
}

// Report summarises a single sweep.
type Report struct {
	// Skipped is set if another instance held the lock.
	Skipped bool

	Paused      int
	Failed      int
	Deleted     int64
	Checkpoints int64
}

// Sweeper periodically recovers jobs whose worker stopped heartbeating and
// deletes old finished jobs.
type Sweeper struct {
	db   database.Database
	bus  bus.Bus
	rec  Recoverer
	lock Locker
	opts *Options

	trackLock sync.Mutex
	tracked   map[string]int64
}

func New(db database.Database, eb bus.Bus, rec Recoverer, lock Locker, opts *Options) *Sweeper {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	if lock == nil {
		lock = NopLocker{}
	}
	return &Sweeper{
		db:      db,
		bus:     eb,
		rec:     rec,
		lock:    lock,
		opts:    opts,
		tracked: map[string]int64{},
	}
}

// Watch starts tracking a running job.
func (s *Sweeper) Watch(jobID string, heartbeatAt int64) {
	s.trackLock.Lock()
	defer s.trackLock.Unlock()
	s.tracked[jobID] = heartbeatAt
	metrics.TrackedJobs.Set(float64(len(s.tracked)))
}

// Forget stops tracking a job (it's paused or finished).
func (s *Sweeper) Forget(jobID string) {
	s.trackLock.Lock()
	defer s.trackLock.Unlock()
	delete(s.tracked, jobID)
	metrics.TrackedJobs.Set(float64(len(s.tracked)))
}

// Tracked returns the number of running jobs being tracked.
func (s *Sweeper) Tracked() int {
	s.trackLock.Lock()
	defer s.trackLock.Unlock()
	return len(s.tracked)
}

// Run sweeps immediately & then every Interval until the context is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepAndLog(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	report, err := s.Sweep(ctx)
	if err != nil {
		log.WithError(err).Error("[Sweeper] sweep failed")
		return
	}
	if report.Skipped {
		log.Debug("[Sweeper] lock held elsewhere, skipping")
		return
	}
	log.WithFields(log.Fields{
		"paused":      report.Paused,
		"failed":      report.Failed,
		"deleted":     report.Deleted,
		"checkpoints": report.Checkpoints,
	}).Info("[Sweeper] sweep complete")
}

// Sweep runs one pass of hung-worker recovery then stale cleanup.
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	report := &Report{}

	held, err := s.lock.Acquire(ctx, s.opts.LockKey, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !held {
		report.Skipped = true
		return report, nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), s.opts.LockKey); err != nil {
			log.WithError(err).Warn("[Sweeper] failed to release lock")
		}
	}()

	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	now := timeNow()
	err = s.recoverStalled(ctx, now, report)
	if err != nil {
		return report, err
	}

	err = s.deleteStale(ctx, now, report)
	if err != nil {
		return report, err
	}

	report.Checkpoints, err = s.db.DeleteExpiredCheckpoints(ctx, now)
	return report, err
}

// recoverStalled pauses or fails running jobs that haven't heartbeat within ActiveJobTimeout
func (s *Sweeper) recoverStalled(ctx context.Context, now int64, report *Report) error {
	staleBefore := now - int64(s.opts.ActiveJobTimeout.Seconds())

	offset := 0
	for {
		jobs, err := s.db.Jobs(ctx, &structs.Query{
			States:          []structs.State{structs.RUNNING},
			HeartbeatBefore: staleBefore,
			Limit:           s.opts.BatchSize,
			Offset:          offset,
		})
		if err != nil {
			return err
		}

		for _, j := range jobs {
			result, err := s.rec.RecoverStalled(ctx, j.ID, staleBefore)
			if errors.Is(err, ie.ErrConflict) {
				// it heartbeat or changed state since we looked
				offset++
				continue
			} else if err != nil {
				log.WithError(err).WithField("job_id", j.ID).Warn("[Sweeper] failed to recover job")
				offset++
				continue
			}

			s.Forget(j.ID)
			metrics.SweeperRecovered.WithLabelValues(string(result.State)).Inc()
			log.WithFields(log.Fields{
				"job_id":            j.ID,
				"state":             result.State,
				"last_heartbeat_at": j.LastHeartbeatAt,
			}).Warn("[Sweeper] recovered stalled job")

			if result.State == structs.PAUSED {
				report.Paused++
			} else {
				report.Failed++
			}
		}

		if len(jobs) < s.opts.BatchSize {
			return nil
		}
	}
}

// deleteStale removes finished jobs (& their checkpoints & bus state) older than StaleJobMaxAge
func (s *Sweeper) deleteStale(ctx context.Context, now int64, report *Report) error {
	before := now - int64(s.opts.StaleJobMaxAge.Seconds())

	for {
		jobs, err := s.db.Jobs(ctx, &structs.Query{
			States:        endStates,
			UpdatedBefore: before,
			Limit:         s.opts.BatchSize,
		})
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]string, len(jobs))
		for i, j := range jobs {
			ids[i] = j.ID
		}

		count, err := s.db.DeleteJobs(ctx, ids)
		if err != nil {
			return err
		}
		report.Deleted += count
		metrics.SweeperDeleted.Add(float64(count))

		err = s.bus.Purge(ctx, ids...)
		if err != nil {
			log.WithError(err).Warn("[Sweeper] failed to purge bus state")
		}

		if count == 0 || len(jobs) < s.opts.BatchSize {
			return nil
		}
	}
}
