package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voidshard/keel/internal/metrics"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// timeNow returns the current time in unix seconds
var timeNow = func() int64 {
	return time.Now().Unix()
}

// Memory is an in-process Bus.
type Memory struct {
	opts *Options

	lock    sync.Mutex
	seq     map[string]int64
	version map[string]int64
	backlog map[string][]*structs.Event
	subs    map[*memorySub]bool
}

func NewMemory(opts *Options) *Memory {
	opts.SetDefaults()
	return &Memory{
		opts:    opts,
		seq:     map[string]int64{},
		version: map[string]int64{},
		backlog: map[string][]*structs.Event{},
		subs:    map[*memorySub]bool{},
	}
}

func (m *Memory) Publish(ctx context.Context, ev *structs.Event) (*structs.Event, error) {
	if ev.JobID == "" {
		return nil, fmt.Errorf("%w: event has no job id", ie.ErrInvalidArg)
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if ev.Version > 0 {
		if ev.Version <= m.version[ev.JobID] {
			return nil, fmt.Errorf("%w: job %s version %d, already at %d", ie.ErrStaleEvent, ev.JobID, ev.Version, m.version[ev.JobID])
		}
		m.version[ev.JobID] = ev.Version
	}

	out := *ev
	m.seq[ev.JobID]++
	out.Sequence = m.seq[ev.JobID]
	if out.PublishedAt == 0 {
		out.PublishedAt = timeNow()
	}

	retained := append(m.backlog[ev.JobID], &out)
	if int64(len(retained)) > m.opts.BacklogSize {
		retained = retained[int64(len(retained))-m.opts.BacklogSize:]
	}
	m.backlog[ev.JobID] = retained

	for s := range m.subs {
		if !s.wants(ev.JobID) {
			continue
		}
		select {
		case s.out <- &out:
		default:
			metrics.SubscriberDrops.Inc()
		}
	}

	return &out, nil
}

func (m *Memory) Subscribe(ctx context.Context, jobIDs ...string) (Subscription, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	s := &memorySub{bus: m, out: make(chan *structs.Event, m.opts.SubscriberBuffer)}
	if len(jobIDs) > 0 {
		s.jobs = map[string]bool{}
		for _, id := range jobIDs {
			s.jobs[id] = true
		}
	}
	m.subs[s] = true
	return s, nil
}

func (m *Memory) Backlog(ctx context.Context, jobID string, after int64) (*Backlog, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	b := &Backlog{Events: []*structs.Event{}, Last: m.seq[jobID]}
	retained := m.backlog[jobID]
	if len(retained) > 0 {
		b.Oldest = retained[0].Sequence
	}
	for _, ev := range retained {
		if ev.Sequence > after {
			b.Events = append(b.Events, ev)
		}
	}
	return b, nil
}

func (m *Memory) LastSequence(ctx context.Context, jobID string) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.seq[jobID], nil
}

func (m *Memory) Purge(ctx context.Context, jobIDs ...string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, id := range jobIDs {
		delete(m.seq, id)
		delete(m.version, id)
		delete(m.backlog, id)
	}
	return nil
}

func (m *Memory) Close() error {
	m.lock.Lock()
	subs := []*memorySub{}
	for s := range m.subs {
		subs = append(subs, s)
	}
	m.lock.Unlock()

	for _, s := range subs {
		s.Close()
	}
	return nil
}

type memorySub struct {
	bus  *Memory
	jobs map[string]bool
	out  chan *structs.Event
	once sync.Once
}

func (s *memorySub) wants(jobID string) bool {
	return s.jobs == nil || s.jobs[jobID]
}

func (s *memorySub) Events() <-chan *structs.Event {
	return s.out
}

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.bus.lock.Lock()
		defer s.bus.lock.Unlock()
		delete(s.bus.subs, s)
		close(s.out)
	})
	return nil
}
