package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/voidshard/keel/pkg/api/http/common"
	"github.com/voidshard/keel/pkg/structs"
)

const (
	defTimeout = 30 * time.Second
)

// Client talks to a keel API server. Errors returned by the server can be
// checked with errors.Is against keel/pkg/errors.
type Client struct {
	url   *url.URL
	token string
	http  *http.Client
}

// New returns a client for the server at address. Token is sent as a bearer
// token if set.
func New(address, token string) (*Client, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	return &Client{url: u, token: token, http: &http.Client{Timeout: defTimeout}}, nil
}

func (c *Client) CreateJob(ctx context.Context, cjr *structs.CreateJobRequest) (*structs.CreateJobResponse, error) {
	var out structs.CreateJobResponse
	return &out, c.do(ctx, http.MethodPost, c.addr(common.API_JOBS), cjr, &out)
}

// JobStatus returns the job's full state. Owner is implied by the token; the
// argument is ignored.
func (c *Client) JobStatus(ctx context.Context, owner, id string) (*structs.JobStatusResponse, error) {
	var out structs.JobStatusResponse
	return &out, c.do(ctx, http.MethodGet, c.addr(common.JobPath(id)), nil, &out)
}

func (c *Client) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	setQueryString(addr, q)
	var out []*structs.Job
	return out, c.do(ctx, http.MethodGet, addr, nil, &out)
}

func (c *Client) Pause(ctx context.Context, owner, id string) (*structs.Job, error) {
	return c.action(ctx, id, structs.ActionPause)
}

func (c *Client) Resume(ctx context.Context, owner, id string) (*structs.Job, error) {
	return c.action(ctx, id, structs.ActionResume)
}

func (c *Client) Cancel(ctx context.Context, owner, id string) (*structs.Job, error) {
	return c.action(ctx, id, structs.ActionCancel)
}

func (c *Client) Retry(ctx context.Context, owner, id string) (*structs.Job, error) {
	return c.action(ctx, id, structs.ActionRetry)
}

func (c *Client) action(ctx context.Context, id string, a structs.Action) (*structs.Job, error) {
	var out structs.Job
	return &out, c.do(ctx, http.MethodPost, c.addr(common.ActionPath(id, string(a))), nil, &out)
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
