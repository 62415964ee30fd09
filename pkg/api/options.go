package api

import (
	"time"

	"github.com/voidshard/keel/internal/sweeper"
	"github.com/voidshard/keel/pkg/worker"
)

const (
	defCheckpointTTL = 7 * 24 * time.Hour
)

// Options passed to the keel API on creation
type Options struct {
	// CheckpointTTL is how long a saved checkpoint may be resumed from.
	CheckpointTTL time.Duration

	// Sweeper settings. If nil no sweeper is run by this process.
	Sweeper *sweeper.Options

	// SweeperLock makes sure only one process sweeps at a time. If nil no
	// locking is done; only do this if there is one sweeper.
	SweeperLock sweeper.Locker

	// Worker settings, used if job handlers are registered.
	Worker *worker.Options
}

// OptionsClientDefault runs a keel service that runs no background routines.
// This is intended either for;
// - workers that register job handlers
// - API servers that leave sweeping to another process
func OptionsClientDefault() *Options {
	return &Options{
		CheckpointTTL: defCheckpointTTL,
		Worker:        &worker.Options{},
	}
}

// OptionsServerDefault runs a keel service with the sweeper, recovering
// stalled jobs & deleting old ones.
func OptionsServerDefault() *Options {
	return &Options{
		CheckpointTTL: defCheckpointTTL,
		Sweeper:       &sweeper.Options{},
		Worker:        &worker.Options{},
	}
}
