package agent

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// Controller issues control actions & fetches job state.
// The HTTP client (keel/pkg/api/http/client) satisfies this.
type Controller interface {
	JobStatus(ctx context.Context, owner, id string) (*structs.JobStatusResponse, error)
	Pause(ctx context.Context, owner, id string) (*structs.Job, error)
	Resume(ctx context.Context, owner, id string) (*structs.Job, error)
	Cancel(ctx context.Context, owner, id string) (*structs.Job, error)
}
