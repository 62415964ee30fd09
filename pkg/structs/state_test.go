package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		Name   string
		Given  State
		Expect bool
	}{
		{"StateUndefined", "x", false},
		{"StateCreated", CREATED, false},
		{"StateRunning", RUNNING, false},
		{"StatePaused", PAUSED, false},
		{"StateCompleted", COMPLETED, true},
		{"StateFailed", FAILED, true},
		{"StateCancelled", CANCELLED, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, c.Given.IsTerminal())
		})
	}
}

func TestToState(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect State
	}{
		{"StateUndefined", "x", ""},
		{"StateCreated", "created", CREATED},
		{"StateRunningUpper", "RUNNING", RUNNING},
		{"StatePaused", "paused", PAUSED},
		{"StateCompleted", "completed", COMPLETED},
		{"StateFailed", "failed", FAILED},
		{"StateCancelled", "Cancelled", CANCELLED},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, ToState(c.Given))
		})
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		Name   string
		From   State
		To     State
		Expect bool
	}{
		{"CreatedRunning", CREATED, RUNNING, true},
		{"CreatedCancelled", CREATED, CANCELLED, true},
		{"CreatedPaused", CREATED, PAUSED, false},
		{"CreatedCompleted", CREATED, COMPLETED, false},
		{"RunningProgress", RUNNING, RUNNING, true},
		{"RunningCompleted", RUNNING, COMPLETED, true},
		{"RunningFailed", RUNNING, FAILED, true},
		{"RunningPaused", RUNNING, PAUSED, true},
		{"RunningCancelled", RUNNING, CANCELLED, true},
		{"RunningCreated", RUNNING, CREATED, false},
		{"PausedRunning", PAUSED, RUNNING, true},
		{"PausedCancelled", PAUSED, CANCELLED, true},
		{"PausedCompleted", PAUSED, COMPLETED, false},
		{"PausedFailed", PAUSED, FAILED, false},
		{"UnknownState", "x", RUNNING, false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, CanTransition(c.From, c.To))
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range AllStates() {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range AllStates() {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

// Walks every path through the graph from CREATED and checks each one ends in
// exactly one terminal state that is never left.
func TestAllPathsEndTerminal(t *testing.T) {
	var walk func(path []State)
	walk = func(path []State) {
		at := path[len(path)-1]
		if at.IsTerminal() {
			for _, s := range path[:len(path)-1] {
				assert.False(t, s.IsTerminal(), "path %v passes through terminal %s", path, s)
			}
			return
		}
		if len(path) > 8 {
			return // cycles (running <-> paused) are bounded here
		}
		for _, next := range AllStates() {
			if CanTransition(at, next) && next != at {
				walk(append(append([]State{}, path...), next))
			}
		}
	}
	walk([]State{CREATED})
}
