package bus

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/bus_mock/bus_mock.go -package=bus_mock

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// Bus fans job events out to subscribers and keeps a short, bounded backlog
// per job so late or reconnecting subscribers can catch up.
//
// Live delivery is at-most-once; a subscriber that falls behind may have
// events dropped. Consumers notice the sequence gap and fill it from Backlog.
type Bus interface {
	// Publish assigns the event the next sequence number for it's job, appends
	// it to the backlog & fans it out. The sequenced event is returned.
	//
	// An event with a Version at or below the last version published for the
	// job is refused with ErrStaleEvent; nothing is sequenced or delivered.
	Publish(ctx context.Context, ev *structs.Event) (*structs.Event, error)

	// Subscribe to events for the given jobs, or for every job if none are given.
	// Only events published after Subscribe returns are delivered.
	Subscribe(ctx context.Context, jobIDs ...string) (Subscription, error)

	// Backlog returns retained events for the job with a sequence > after,
	// oldest first.
	Backlog(ctx context.Context, jobID string, after int64) (*Backlog, error)

	// LastSequence returns the sequence of the last event published for the
	// job (0 if none).
	LastSequence(ctx context.Context, jobID string) (int64, error)

	// Purge drops all bus state (sequence & backlog) for the given jobs.
	Purge(ctx context.Context, jobIDs ...string) error

	Close() error
}

// Subscription is a live feed of events.
type Subscription interface {
	// Events is closed when the subscription is closed.
	Events() <-chan *structs.Event

	Close() error
}

// Backlog is a window of retained events for a job.
type Backlog struct {
	// Events after the requested sequence, oldest first.
	Events []*structs.Event

	// Oldest is the sequence of the oldest retained event (0 if none are).
	Oldest int64

	// Last is the sequence of the last event ever published for the job.
	Last int64
}

// Gap returns if events after `after` were published but are no longer
// retained, ie. the caller can't be brought up to date from the backlog alone.
func (b *Backlog) Gap(after int64) bool {
	if b.Last <= after {
		return false
	}
	if b.Oldest == 0 {
		return true
	}
	return b.Oldest > after+1
}
