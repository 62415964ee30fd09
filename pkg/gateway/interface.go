package gateway

import (
	"context"

	"github.com/voidshard/keel/pkg/structs"
)

// Verifier turns a bearer token into the owner ID it was issued for.
// Implemented in keel/internal/auth.
type Verifier interface {
	Subject(token string) (string, error)
}

// JobReader looks up jobs so subscriptions can be checked for ownership.
type JobReader interface {
	Job(ctx context.Context, id string) (*structs.Job, error)
}
