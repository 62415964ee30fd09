package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/keel/pkg/structs"
)

func TestMemoryQueue(t *testing.T) {
	loader := &fakeLoader{jobs: map[string]*structs.Job{
		"a": {ID: "a", JobSpec: structs.JobSpec{Type: "research"}, State: structs.CREATED},
		"b": {ID: "b", JobSpec: structs.JobSpec{Type: "research"}, State: structs.CANCELLED},
		"c": {ID: "c", JobSpec: structs.JobSpec{Type: "unknown"}, State: structs.CREATED},
	}}
	q := NewMemory(loader, &Options{Concurrency: 1})

	ran := make(chan string, 3)
	assert.Nil(t, q.Register("research", func(ctx context.Context, j *structs.Job) error {
		ran <- j.ID
		return nil
	}))

	done := make(chan error)
	go func() { done <- q.Run() }()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		assert.Nil(t, q.Enqueue(ctx, &structs.Job{ID: id}))
	}

	select {
	case id := <-ran:
		assert.Equal(t, "a", id)
	case <-time.After(5 * time.Second):
		t.Fatal("job not run")
	}

	// give the other jobs a chance to (not) run
	assert.Eventually(t, func() bool { return len(q.work) == 0 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, len(ran))

	assert.Nil(t, q.Close())
	assert.Nil(t, <-done)

	assert.NotNil(t, q.Enqueue(ctx, &structs.Job{ID: "d"}))
}
