package structs

import (
	"strings"
)

type State string

const (
	// transient states
	CREATED State = "created"
	RUNNING State = "running"
	PAUSED  State = "paused"

	// end states
	COMPLETED State = "completed"
	FAILED    State = "failed"
	CANCELLED State = "cancelled"
)

// transitions is the legal state graph. Anything not listed here is refused.
var transitions = map[State][]State{
	CREATED: {RUNNING, CANCELLED},
	RUNNING: {RUNNING, COMPLETED, FAILED, PAUSED, CANCELLED},
	PAUSED:  {RUNNING, CANCELLED},
}

// IsTerminal returns true if no further transitions are allowed from this state.
func (s State) IsTerminal() bool {
	switch s {
	case COMPLETED, FAILED, CANCELLED:
		return true
	default:
		return false
	}
}

// CanTransition returns if a job in state `from` may move to state `to`.
//
// RUNNING -> RUNNING is permitted; it's how progress & heartbeats are written
// while still guarding on the job being in the state the writer thinks it is.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllStates returns every known state, in graph order.
func AllStates() []State {
	return []State{CREATED, RUNNING, PAUSED, COMPLETED, FAILED, CANCELLED}
}

func ToState(s string) State {
	switch strings.ToLower(s) {
	case "created":
		return CREATED
	case "running":
		return RUNNING
	case "paused":
		return PAUSED
	case "completed":
		return COMPLETED
	case "failed":
		return FAILED
	case "cancelled":
		return CANCELLED
	default:
		return ""
	}
}
