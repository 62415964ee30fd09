package structs

// FrameOp is an operation a client sends over the realtime channel.
type FrameOp string

const (
	OpSubscribe   FrameOp = "subscribe"
	OpUnsubscribe FrameOp = "unsubscribe"
)

// FrameType is the kind of frame the gateway pushes to a client.
type FrameType string

const (
	// FrameEvent carries a single progress event.
	FrameEvent FrameType = "event"

	// FrameBacklogGap tells the client it missed more events than the backlog
	// holds and should fetch the full job state.
	FrameBacklogGap FrameType = "backlog_gap"

	// FrameSubscribed acknowledges a subscribe; replayed events follow it.
	FrameSubscribed FrameType = "subscribed"

	// FrameError reports a refused or failed operation. Code says which.
	FrameError FrameType = "error"
)

// ErrorCode classifies a FrameError so clients know if asking again can help.
type ErrorCode string

const (
	// ErrorCodeInvalid means the frame or job id was malformed.
	ErrorCodeInvalid ErrorCode = "invalid"

	// ErrorCodeNotFound means the job doesn't exist.
	ErrorCodeNotFound ErrorCode = "not_found"

	// ErrorCodeForbidden means the job belongs to someone else.
	ErrorCodeForbidden ErrorCode = "forbidden"

	// ErrorCodeInternal means the gateway failed to serve the request; the
	// same request may well succeed later.
	ErrorCodeInternal ErrorCode = "internal"
)

// Permanent returns if repeating the refused request can't succeed.
// Unknown codes are assumed transient.
func (c ErrorCode) Permanent() bool {
	switch c {
	case ErrorCodeInvalid, ErrorCodeNotFound, ErrorCodeForbidden:
		return true
	default:
		return false
	}
}

// ClientFrame is sent by clients to the gateway.
type ClientFrame struct {
	Op    FrameOp `json:"op"`
	JobID string  `json:"job_id"`

	// LastSeenSequence is the highest sequence the client has processed for
	// this job (0 if none). Events after it are replayed.
	LastSeenSequence int64 `json:"last_seen_sequence"`
}

// ServerFrame is pushed by the gateway to clients.
type ServerFrame struct {
	Type  FrameType `json:"type"`
	JobID string    `json:"job_id"`
	Event *Event    `json:"event,omitempty"`
	Error string    `json:"error,omitempty"`
	Code  ErrorCode `json:"code,omitempty"`
}
