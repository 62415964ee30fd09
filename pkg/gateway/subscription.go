package gateway

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/pkg/structs"
)

// subscription is one connection's interest in one job.
//
// last is the highest sequence sent to the client; events at or below it are
// duplicates. Once a terminal event is sent nothing more is.
type subscription struct {
	conn *conn
	key  roomKey

	lock sync.Mutex
	last int64
	done bool
}

// deliver forwards a live event, first filling any gap between what we last
// sent & this event from the backlog.
func (s *subscription) deliver(ctx context.Context, ev *structs.Event) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.done || ev.Sequence <= s.last {
		return
	}
	if ev.Sequence > s.last+1 {
		s.catchUp(ctx)
		if s.done || ev.Sequence <= s.last {
			return
		}
	}
	s.forward(ev)
}

// catchUp sends everything retained after s.last. If events we need have
// already aged out of the backlog the client is told (backlog_gap) so it can
// fetch the job's full state, and then sent what is retained.
//
// Caller holds s.lock.
func (s *subscription) catchUp(ctx context.Context) {
	bl, err := s.conn.gw.bus.Backlog(ctx, s.key.job, s.last)
	if err != nil {
		log.WithError(err).WithField("job_id", s.key.job).Warn("[Gateway] failed to read backlog")
		s.gap()
		return
	}

	if bl.Gap(s.last) {
		s.gap()
	}
	for _, ev := range bl.Events {
		if s.done {
			return
		}
		if ev.Sequence <= s.last {
			continue
		}
		s.forward(ev)
	}
}

func (s *subscription) gap() {
	metrics.GatewayBacklogGaps.Inc()
	s.conn.push(&structs.ServerFrame{Type: structs.FrameBacklogGap, JobID: s.key.job})
}

func (s *subscription) forward(ev *structs.Event) {
	s.last = ev.Sequence
	if ev.Type.IsTerminal() {
		s.done = true
	}
	s.conn.push(&structs.ServerFrame{Type: structs.FrameEvent, JobID: ev.JobID, Event: ev})
}
