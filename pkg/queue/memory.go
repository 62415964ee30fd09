package queue

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/pkg/structs"
)

// Memory is an in-process Queue; jobs are run by a pool of goroutines in this
// process. Nothing survives a restart.
type Memory struct {
	opts   *Options
	loader JobLoader

	lock     sync.Mutex
	handlers map[string]Handler

	work chan string
	done chan struct{}
	once sync.Once
}

func NewMemory(loader JobLoader, opts *Options) *Memory {
	opts.SetDefaults()
	return &Memory{
		opts:     opts,
		loader:   loader,
		handlers: map[string]Handler{},
		work:     make(chan string, 1000),
		done:     make(chan struct{}),
	}
}

func (m *Memory) Register(jobType string, handler Handler) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.handlers[jobType] = handler
	return nil
}

func (m *Memory) Enqueue(ctx context.Context, j *structs.Job) error {
	select {
	case <-m.done:
		return fmt.Errorf("queue closed")
	default:
	}
	select {
	case m.work <- j.ID:
		return nil
	case <-m.done:
		return fmt.Errorf("queue closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes jobs until Close is called.
func (m *Memory) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < m.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-m.done:
					return
				case id := <-m.work:
					m.handle(ctx, id)
				}
			}
		}()
	}

	<-m.done
	cancel()
	wg.Wait()
	return nil
}

func (m *Memory) handle(ctx context.Context, id string) {
	j, err := m.loader.Job(ctx, id)
	if err != nil {
		log.WithError(err).WithField("job_id", id).Warn("[Queue] failed to load job")
		return
	}
	if !runnable(j) {
		return
	}

	m.lock.Lock()
	handler, ok := m.handlers[j.Type]
	m.lock.Unlock()
	if !ok {
		log.WithFields(log.Fields{"job_id": id, "type": j.Type}).Warn("[Queue] no handler registered")
		return
	}

	err = handler(ctx, j)
	if err != nil {
		log.WithError(err).WithField("job_id", id).Warn("[Queue] handler returned error")
	}
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
