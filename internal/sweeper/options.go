package sweeper

import (
	"time"
)

const (
	defInterval         = 5 * time.Minute
	defActiveJobTimeout = 60 * time.Minute
	defStaleJobMaxAge   = 24 * time.Hour
	defBatchSize        = 500
	defLockKey          = "keel:sweeper:lock"
)

// Options for the sweeper.
type Options struct {
	// Interval between sweeps.
	Interval time.Duration

	// ActiveJobTimeout is how long a running job may go without a heartbeat
	// before it's considered stalled.
	ActiveJobTimeout time.Duration

	// StaleJobMaxAge is how long a job in an end state is kept (since it's last
	// update) before it's deleted.
	StaleJobMaxAge time.Duration

	// BatchSize is how many jobs are fetched per query.
	BatchSize int

	// LockKey names the lock held while sweeping.
	LockKey string

	// LockTTL is how long the sweep lock is held before it expires on it's own
	// (if we die mid sweep). Defaults to Interval.
	LockTTL time.Duration
}

func (o *Options) SetDefaults() {
	if o.Interval <= 0 {
		o.Interval = defInterval
	}
	if o.ActiveJobTimeout <= 0 {
		o.ActiveJobTimeout = defActiveJobTimeout
	}
	if o.StaleJobMaxAge <= 0 {
		o.StaleJobMaxAge = defStaleJobMaxAge
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defBatchSize
	}
	if o.LockKey == "" {
		o.LockKey = defLockKey
	}
	if o.LockTTL <= 0 {
		o.LockTTL = o.Interval
	}
}
