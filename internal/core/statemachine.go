package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/voidshard/keel/internal/metrics"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// Observer is told when a job starts running & when it stops.
type Observer interface {
	// Watch is called when a job enters running, with it's last heartbeat.
	Watch(jobID string, heartbeatAt int64)

	// Forget is called when a job leaves running (paused or terminal).
	Forget(jobID string)
}

type nopObserver struct{}

func (nopObserver) Watch(string, int64) {}
func (nopObserver) Forget(string)       {}

// Transition moves a job from `from` to `to`, applying the patch in the same
// write. It's the only way job state changes. Entering running from another
// state starts a new attempt.
//
// Returns ErrInvalidTransition if `to` isn't reachable from `from`. If the
// stored state isn't `from` (someone else got there first) the error matches
// both ErrInvalidTransition and ErrConflict.
func (c *Service) Transition(ctx context.Context, id string, from, to structs.State, patch *structs.JobPatch) (*structs.Job, error) {
	if !structs.CanTransition(from, to) {
		return nil, fmt.Errorf("%w %s -> %s", ie.ErrInvalidTransition, from, to)
	}

	p := structs.JobPatch{}
	if patch != nil {
		p = *patch
	}
	p.State = to
	if to == structs.RUNNING && from != structs.RUNNING {
		p.NextAttempt = true
	}

	j, err := c.db.CASUpdate(ctx, id, from, &p)
	if errors.Is(err, ie.ErrConflict) {
		metrics.TransitionConflicts.Inc()
		return nil, fmt.Errorf("%w: %w", ie.ErrInvalidTransition, err)
	} else if err != nil {
		return nil, err
	}

	if from != to {
		metrics.Transitions.WithLabelValues(string(from), string(to)).Inc()
		switch {
		case to == structs.RUNNING:
			c.observer.Watch(j.ID, j.LastHeartbeatAt)
		case to == structs.PAUSED || to.IsTerminal():
			c.observer.Forget(j.ID)
		}
	}

	return j, nil
}
