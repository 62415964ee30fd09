package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

func TestBacklogGap(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *Backlog
		After  int64
		Expect bool
	}{
		{"NothingPublished", &Backlog{}, 0, false},
		{"UpToDate", &Backlog{Oldest: 1, Last: 5}, 5, false},
		{"AheadOfLast", &Backlog{Oldest: 1, Last: 5}, 7, false},
		{"AllRetained", &Backlog{Oldest: 1, Last: 5}, 0, false},
		{"NextRetained", &Backlog{Oldest: 6, Last: 9}, 5, false},
		{"Trimmed", &Backlog{Oldest: 7, Last: 9}, 5, true},
		{"Expired", &Backlog{Last: 9}, 5, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, c.Given.Gap(c.After))
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	ev, err := decodeEvent(`{"sequence":3,"job_id":"j1","owner_id":"alice","type":"progress","published_at":10}`)
	assert.Nil(t, err)
	assert.Equal(t, int64(3), ev.Sequence)
	assert.Equal(t, "j1", ev.JobID)
	assert.Equal(t, structs.EventProgress, ev.Type)

	_, err = decodeEvent(`{"job_id":"j1"}`)
	assert.NotNil(t, err)

	_, err = decodeEvent(`nope`)
	assert.NotNil(t, err)
}

func TestMemoryBus(t *testing.T) {
	testBus(t, NewMemory(&Options{BacklogSize: 5}))
}

func TestRedisBus(t *testing.T) {
	url := os.Getenv("KEEL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("KEEL_TEST_REDIS_URL not set")
	}
	b, err := NewRedis(&Options{URL: url, BacklogSize: 5, KeyPrefix: "keeltest"})
	assert.Nil(t, err)
	defer b.Close()

	testBus(t, b)
}

// testBus checks behaviour every Bus implementation must share.
func testBus(t *testing.T, b Bus) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobA := uuid.New().String()
	jobB := uuid.New().String()
	defer b.Purge(ctx, jobA, jobB)

	event := func(job string, progress int) *structs.Event {
		return &structs.Event{
			JobID:   job,
			OwnerID: "alice",
			Type:    structs.EventProgress,
			Payload: &structs.EventPayload{State: structs.RUNNING, Progress: progress},
		}
	}

	_, err := b.Publish(ctx, &structs.Event{})
	assert.ErrorIs(t, err, ie.ErrInvalidArg)

	onlyA, err := b.Subscribe(ctx, jobA)
	assert.Nil(t, err)
	defer onlyA.Close()

	all, err := b.Subscribe(ctx)
	assert.Nil(t, err)
	defer all.Close()

	for i := 1; i <= 7; i++ {
		ev, err := b.Publish(ctx, event(jobA, i*10))
		assert.Nil(t, err)
		assert.Equal(t, int64(i), ev.Sequence)
	}
	ev, err := b.Publish(ctx, event(jobB, 50))
	assert.Nil(t, err)
	assert.Equal(t, int64(1), ev.Sequence)

	// per job subscription sees only it's job, in order
	for i := 1; i <= 7; i++ {
		got := receive(t, onlyA)
		assert.Equal(t, jobA, got.JobID)
		assert.Equal(t, int64(i), got.Sequence)
		assert.Equal(t, i*10, got.Payload.Progress)
	}

	// wildcard subscription sees everything
	seen := map[string]int64{}
	for i := 0; i < 8; i++ {
		got := receive(t, all)
		assert.Greater(t, got.Sequence, seen[got.JobID])
		seen[got.JobID] = got.Sequence
	}
	assert.Equal(t, int64(7), seen[jobA])
	assert.Equal(t, int64(1), seen[jobB])

	last, err := b.LastSequence(ctx, jobA)
	assert.Nil(t, err)
	assert.Equal(t, int64(7), last)

	// backlog holds the most recent 5
	bl, err := b.Backlog(ctx, jobA, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(3), bl.Oldest)
	assert.Equal(t, int64(7), bl.Last)
	assert.Equal(t, 5, len(bl.Events))
	assert.True(t, bl.Gap(0))
	assert.False(t, bl.Gap(2))

	bl, err = b.Backlog(ctx, jobA, 5)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(bl.Events))
	assert.Equal(t, int64(6), bl.Events[0].Sequence)
	assert.Equal(t, int64(7), bl.Events[1].Sequence)
	assert.False(t, bl.Gap(5))

	// unknown job
	bl, err = b.Backlog(ctx, uuid.New().String(), 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), bl.Last)
	assert.Equal(t, 0, len(bl.Events))

	// events for older job versions are refused
	versioned := func(version int64, st structs.State) *structs.Event {
		ev := event(jobB, 60)
		ev.Version = version
		ev.Payload.State = st
		return ev
	}
	_, err = b.Publish(ctx, versioned(5, structs.PAUSED))
	assert.Nil(t, err)
	_, err = b.Publish(ctx, versioned(4, structs.RUNNING))
	assert.ErrorIs(t, err, ie.ErrStaleEvent)
	_, err = b.Publish(ctx, versioned(5, structs.RUNNING))
	assert.ErrorIs(t, err, ie.ErrStaleEvent)
	ev, err = b.Publish(ctx, versioned(6, structs.RUNNING))
	assert.Nil(t, err)
	assert.Equal(t, int64(3), ev.Sequence)

	bl, err = b.Backlog(ctx, jobB, 1)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(bl.Events))
	assert.Equal(t, structs.PAUSED, bl.Events[0].Payload.State)
	assert.Equal(t, int64(6), bl.Events[1].Version)

	assert.Nil(t, b.Purge(ctx, jobA))
	last, err = b.LastSequence(ctx, jobA)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), last)

	// closed subscriptions close their channel
	assert.Nil(t, onlyA.Close())
	for range onlyA.Events() {
	}
}

func receive(t *testing.T, s Subscription) *structs.Event {
	select {
	case ev, ok := <-s.Events():
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestMemorySlowSubscriberDrops(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(&Options{SubscriberBuffer: 2})

	sub, err := b.Subscribe(ctx, "j1")
	assert.Nil(t, err)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		_, err := b.Publish(ctx, &structs.Event{JobID: "j1", Type: structs.EventProgress})
		assert.Nil(t, err)
	}

	// publishing never blocks; the subscriber gets what fit
	assert.Equal(t, int64(1), receive(t, sub).Sequence)
	assert.Equal(t, int64(2), receive(t, sub).Sequence)
	select {
	case <-sub.Events():
		t.Fatal("expected dropped events")
	default:
	}

	// the gap is recoverable from the backlog
	bl, err := b.Backlog(ctx, "j1", 2)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(bl.Events))
	assert.False(t, bl.Gap(2))
}
