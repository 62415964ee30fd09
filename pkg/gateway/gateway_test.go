package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/voidshard/keel/internal/utils"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/database"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// tokens are just the owner's name prefixed with "token-"
type fakeVerifier struct{}

func (fakeVerifier) Subject(token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", fmt.Errorf("%w bad token", ie.ErrUnauthorized)
	}
	return strings.TrimPrefix(token, "token-"), nil
}

type testEnv struct {
	gw  *Gateway
	bus *bus.Memory
	db  *database.Memory
	srv *httptest.Server
}

func newTestEnv(t *testing.T, backlog int64) *testEnv {
	env := &testEnv{
		bus: bus.NewMemory(&bus.Options{BacklogSize: backlog}),
		db:  database.NewMemory(),
	}
	env.gw = New(env.bus, env.db, fakeVerifier{}, &Options{})
	env.srv = httptest.NewServer(env.gw)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) job(t *testing.T, owner string) *structs.Job {
	j := &structs.Job{
		JobSpec: structs.JobSpec{Type: "research", OwnerID: owner},
		ID:      utils.NewRandomID(),
		State:   structs.RUNNING,
	}
	assert.Nil(t, e.db.InsertJob(context.Background(), j))
	return j
}

// publish n progress events for the job, returning the last one
func (e *testEnv) publish(t *testing.T, j *structs.Job, n int, et structs.EventType) *structs.Event {
	var last *structs.Event
	for i := 0; i < n; i++ {
		ev, err := e.bus.Publish(context.Background(), &structs.Event{JobID: j.ID, OwnerID: j.OwnerID, Type: et})
		assert.Nil(t, err)
		last = ev
	}
	return last
}

func (e *testEnv) dial(t *testing.T, owner string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(e.srv.URL, "http")
	header := http.Header{}
	header.Set("Authorization", "Bearer token-"+owner)

	ws, _, err := websocket.DefaultDialer.Dial(u, header)
	assert.Nil(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func subscribe(t *testing.T, ws *websocket.Conn, jobID string, last int64) {
	err := ws.WriteJSON(&structs.ClientFrame{Op: structs.OpSubscribe, JobID: jobID, LastSeenSequence: last})
	assert.Nil(t, err)
}

func readFrame(t *testing.T, ws *websocket.Conn) *structs.ServerFrame {
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	f := &structs.ServerFrame{}
	err := ws.ReadJSON(f)
	assert.Nil(t, err)
	return f
}

func readSequences(t *testing.T, ws *websocket.Conn, n int) []int64 {
	seqs := []int64{}
	for i := 0; i < n; i++ {
		f := readFrame(t, ws)
		if !assert.Equal(t, structs.FrameEvent, f.Type) {
			return seqs
		}
		seqs = append(seqs, f.Event.Sequence)
	}
	return seqs
}

// expectQuiet asserts nothing more arrives. The connection is unusable after.
func expectQuiet(t *testing.T, ws *websocket.Conn) {
	ws.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, data, err := ws.ReadMessage()
	assert.NotNil(t, err, "unexpected frame %s", string(data))
}

func TestUnauthorized(t *testing.T) {
	env := newTestEnv(t, 0)

	resp, err := http.Get(env.srv.URL + "?token=nope")
	assert.Nil(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenFromQuery(t *testing.T) {
	u := "ws" + strings.TrimPrefix(newTestEnv(t, 0).srv.URL, "http") + "?token=token-alice"

	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	assert.Nil(t, err)
	ws.Close()
}

func TestSubscribeRefused(t *testing.T) {
	env := newTestEnv(t, 0)
	mine := env.job(t, "alice")
	theirs := env.job(t, "bob")

	cases := []struct {
		Name       string
		JobID      string
		Expect     string
		ExpectCode structs.ErrorCode
	}{
		{"InvalidID", "not-an-id", "invalid job id", structs.ErrorCodeInvalid},
		{"NotFound", utils.NewRandomID(), ie.ErrNotFound.Error(), structs.ErrorCodeNotFound},
		{"NotOwner", theirs.ID, ie.ErrForbidden.Error(), structs.ErrorCodeForbidden},
	}

	ws := env.dial(t, "alice")
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			subscribe(t, ws, c.JobID, 0)

			f := readFrame(t, ws)

			assert.Equal(t, structs.FrameError, f.Type)
			assert.Equal(t, c.Expect, f.Error)
			assert.Equal(t, c.ExpectCode, f.Code)
			assert.True(t, f.Code.Permanent())
		})
	}

	assert.Equal(t, 0, env.gw.Subscribers("alice", mine.ID))
	assert.Equal(t, 0, env.gw.Subscribers("alice", theirs.ID))
}

// failingReader fails the first n job reads.
type failingReader struct {
	*database.Memory
	lock  sync.Mutex
	fails int
}

func (r *failingReader) Job(ctx context.Context, id string) (*structs.Job, error) {
	r.lock.Lock()
	fail := r.fails > 0
	r.fails--
	r.lock.Unlock()
	if fail {
		return nil, fmt.Errorf("connection reset by peer")
	}
	return r.Memory.Job(ctx, id)
}

func TestSubscribeReadFailureIsTransient(t *testing.T) {
	env := newTestEnv(t, 0)
	env.gw = New(env.bus, &failingReader{Memory: env.db, fails: 1}, fakeVerifier{}, &Options{})
	env.srv = httptest.NewServer(env.gw)
	t.Cleanup(env.srv.Close)

	j := env.job(t, "alice")
	env.publish(t, j, 2, structs.EventProgress)

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 0)

	f := readFrame(t, ws)
	assert.Equal(t, structs.FrameError, f.Type)
	assert.Equal(t, structs.ErrorCodeInternal, f.Code)
	assert.False(t, f.Code.Permanent())

	// asking again works once the store is back
	subscribe(t, ws, j.ID, 0)
	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)
	assert.Equal(t, []int64{1, 2}, readSequences(t, ws, 2))
}

func TestSubscribeReplaysFromLastSeen(t *testing.T) {
	env := newTestEnv(t, 0)
	j := env.job(t, "alice")
	env.publish(t, j, 10, structs.EventProgress)

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 5)

	f := readFrame(t, ws)
	assert.Equal(t, structs.FrameSubscribed, f.Type)
	assert.Equal(t, []int64{6, 7, 8, 9, 10}, readSequences(t, ws, 5))
	assert.Equal(t, 1, env.gw.Subscribers("alice", j.ID))
}

func TestSubscribeBacklogGap(t *testing.T) {
	env := newTestEnv(t, 3)
	j := env.job(t, "alice")
	env.publish(t, j, 10, structs.EventProgress)

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 2)

	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)

	f := readFrame(t, ws)
	assert.Equal(t, structs.FrameBacklogGap, f.Type)
	assert.Equal(t, j.ID, f.JobID)

	assert.Equal(t, []int64{8, 9, 10}, readSequences(t, ws, 3))
}

func TestLiveDelivery(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	j := env.job(t, "alice")

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 0)
	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)
	assert.Eventually(t, func() bool { return env.gw.Subscribers("alice", j.ID) == 1 }, time.Second, 10*time.Millisecond)

	// in order
	env.gw.route(ctx, env.publish(t, j, 1, structs.EventProgress))
	assert.Equal(t, []int64{1}, readSequences(t, ws, 1))

	// 2 is never routed to us (dropped), 3 arrives: 2 is filled from the backlog
	env.publish(t, j, 1, structs.EventProgress)
	three := env.publish(t, j, 1, structs.EventProgress)
	env.gw.route(ctx, three)
	assert.Equal(t, []int64{2, 3}, readSequences(t, ws, 2))

	// duplicates are dropped
	env.gw.route(ctx, three)

	// nothing after a terminal event
	env.gw.route(ctx, env.publish(t, j, 1, structs.EventCompleted))
	env.gw.route(ctx, env.publish(t, j, 1, structs.EventProgress))

	f := readFrame(t, ws)
	assert.Equal(t, structs.FrameEvent, f.Type)
	assert.Equal(t, int64(4), f.Event.Sequence)
	assert.Equal(t, structs.EventCompleted, f.Event.Type)

	expectQuiet(t, ws)
}

func TestLiveDeliveryOtherOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	j := env.job(t, "alice")

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 0)
	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)

	// an event claiming another owner is routed to a different room
	ev, err := env.bus.Publish(ctx, &structs.Event{JobID: j.ID, OwnerID: "mallory", Type: structs.EventProgress})
	assert.Nil(t, err)
	env.gw.route(ctx, ev)

	expectQuiet(t, ws)
}

func TestUnsubscribe(t *testing.T) {
	env := newTestEnv(t, 0)
	j := env.job(t, "alice")

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 0)
	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)

	assert.Nil(t, ws.WriteJSON(&structs.ClientFrame{Op: structs.OpUnsubscribe, JobID: j.ID}))

	assert.Eventually(t, func() bool { return env.gw.Subscribers("alice", j.ID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestDisconnectLeavesRooms(t *testing.T) {
	env := newTestEnv(t, 0)
	j := env.job(t, "alice")

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 0)
	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)
	assert.Equal(t, 1, env.gw.Subscribers("alice", j.ID))

	ws.Close()

	assert.Eventually(t, func() bool { return env.gw.Subscribers("alice", j.ID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestRunRoutesBusEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	env := newTestEnv(t, 0)
	j := env.job(t, "alice")

	done := make(chan error)
	go func() { done <- env.gw.Run(ctx) }()

	ws := env.dial(t, "alice")
	subscribe(t, ws, j.ID, 0)
	assert.Equal(t, structs.FrameSubscribed, readFrame(t, ws).Type)

	// Run subscribes asynchronously; the first event may be missed live but
	// then arrives through the gap fill of the second.
	env.publish(t, j, 1, structs.EventProgress)
	time.Sleep(50 * time.Millisecond)
	env.publish(t, j, 1, structs.EventProgress)

	assert.Equal(t, []int64{1, 2}, readSequences(t, ws, 2))

	cancel()
	assert.Nil(t, <-done)
}

func TestCheckOrigin(t *testing.T) {
	g := New(nil, nil, fakeVerifier{}, &Options{AllowedOrigins: []string{"https://app.example.com"}})

	cases := []struct {
		Name   string
		Origin string
		Expect bool
	}{
		{"NoOrigin", "", true},
		{"Allowed", "https://app.example.com", true},
		{"AllowedCase", "https://APP.example.com", true},
		{"Other", "https://evil.example.com", false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if c.Origin != "" {
				r.Header.Set("Origin", c.Origin)
			}
			assert.Equal(t, c.Expect, g.checkOrigin(r))
		})
	}
}
