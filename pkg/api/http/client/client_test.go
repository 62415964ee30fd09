package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/keel/internal/utils"
	"github.com/voidshard/keel/pkg/api"
	"github.com/voidshard/keel/pkg/api/http/server"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/database"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/queue"
	"github.com/voidshard/keel/pkg/structs"
)

type fakeVerifier struct{}

func (fakeVerifier) Subject(token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", fmt.Errorf("%w bad token", ie.ErrUnauthorized)
	}
	return strings.TrimPrefix(token, "token-"), nil
}

func newTestServer(t *testing.T) string {
	svc, err := api.New(
		&database.Options{URL: database.MemoryURL},
		&bus.Options{URL: bus.MemoryURL},
		&queue.Options{URL: queue.MemoryURL},
		api.OptionsClientDefault(),
	)
	assert.Nil(t, err)
	t.Cleanup(func() { svc.Close() })

	srv := httptest.NewServer(server.NewServer(":0", false, fakeVerifier{}, nil).Handler(svc))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	addr := newTestServer(t)

	alice, err := New(addr, "token-alice")
	assert.Nil(t, err)
	bob, err := New(addr, "token-bob")
	assert.Nil(t, err)

	resp, err := alice.CreateJob(ctx, &structs.CreateJobRequest{JobSpec: structs.JobSpec{
		Type:   "research",
		Params: json.RawMessage(`{"q":"go"}`),
	}})
	assert.Nil(t, err)
	assert.True(t, utils.IsValidID(resp.JobID))
	assert.Equal(t, "alice", resp.Job.OwnerID)

	st, err := alice.JobStatus(ctx, "", resp.JobID)
	assert.Nil(t, err)
	assert.Equal(t, structs.CREATED, st.Job.State)
	assert.False(t, st.Resumable)

	jobs, err := alice.Jobs(ctx, &structs.Query{States: []structs.State{structs.CREATED}})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(jobs))

	jobs, err = bob.Jobs(ctx, nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(jobs))

	_, err = alice.Pause(ctx, "", resp.JobID)
	assert.ErrorIs(t, err, ie.ErrInvalidTransition)

	_, err = alice.Resume(ctx, "", resp.JobID)
	assert.ErrorIs(t, err, ie.ErrInvalidTransition)

	_, err = bob.Cancel(ctx, "", resp.JobID)
	assert.ErrorIs(t, err, ie.ErrForbidden)

	_, err = alice.Retry(ctx, "", utils.NewRandomID())
	assert.ErrorIs(t, err, ie.ErrNotFound)

	j, err := alice.Cancel(ctx, "", resp.JobID)
	assert.Nil(t, err)
	assert.Equal(t, structs.CANCELLED, j.State)
}

func TestClientUnauthorized(t *testing.T) {
	addr := newTestServer(t)
	c, err := New(addr, "")
	assert.Nil(t, err)

	_, err = c.Jobs(context.Background(), nil)

	assert.ErrorIs(t, err, ie.ErrUnauthorized)
}

func TestClientBadInput(t *testing.T) {
	addr := newTestServer(t)
	c, _ := New(addr, "token-alice")

	_, err := c.CreateJob(context.Background(), &structs.CreateJobRequest{})

	assert.ErrorIs(t, err, ie.ErrNoJobType)
}
