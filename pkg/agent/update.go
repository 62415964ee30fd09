package agent

import (
	"github.com/voidshard/keel/pkg/structs"
)

// UpdateKind says what an Update carries.
type UpdateKind string

const (
	// UpdateEvent carries a new (never before delivered) event.
	UpdateEvent UpdateKind = "event"

	// UpdateSnapshot carries the full job state, fetched after we missed more
	// events than the gateway could replay. Err is set if the fetch failed.
	UpdateSnapshot UpdateKind = "snapshot"

	// UpdateActionDone reports a queued action was accepted.
	UpdateActionDone UpdateKind = "action_done"

	// UpdateActionFailed reports the server refused a queued action, or that
	// the agent was closed before it could be sent (Err wraps ErrClosed).
	UpdateActionFailed UpdateKind = "action_failed"

	// UpdateSubscribeFailed reports the gateway couldn't stream a job. If it
	// refused outright (not found, not ours) the job is no longer watched;
	// otherwise Retrying is set & the agent asks again with backoff.
	UpdateSubscribeFailed UpdateKind = "subscribe_failed"

	UpdateConnected    UpdateKind = "connected"
	UpdateDisconnected UpdateKind = "disconnected"
)

// Update is something the application should know about.
type Update struct {
	Kind  UpdateKind
	JobID string

	Event    *structs.Event
	Snapshot *structs.JobStatusResponse

	// Action & Job are set for action updates; Job is the job after the
	// action was applied.
	Action structs.Action
	Job    *structs.Job

	Err error

	// Retrying is set on a subscribe failure the agent will retry.
	Retrying bool
}
