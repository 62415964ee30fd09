package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobApply(t *testing.T) {
	j := &Job{ID: "j1", State: RUNNING, Progress: 40, Version: 3, Attempt: 1}

	j.Apply(&JobPatch{Progress: IntPtr(30), HeartbeatAt: 7}, 100)
	assert.Equal(t, 40, j.Progress)
	assert.Equal(t, int64(4), j.Version)
	assert.Equal(t, int64(1), j.Attempt)
	assert.Equal(t, int64(7), j.LastHeartbeatAt)
	assert.Equal(t, int64(100), j.UpdatedAt)

	j.Apply(&JobPatch{State: PAUSED}, 101)
	j.Apply(&JobPatch{State: RUNNING, NextAttempt: true, Progress: IntPtr(20), ResetProgress: true}, 102)
	assert.Equal(t, 20, j.Progress)
	assert.Equal(t, int64(6), j.Version)
	assert.Equal(t, int64(2), j.Attempt)

	j.Apply(nil, 103)
	assert.Equal(t, int64(7), j.Version)
	assert.Equal(t, int64(103), j.UpdatedAt)
}

func TestJobPatchHolds(t *testing.T) {
	j := &Job{LastHeartbeatAt: 50, Attempt: 2}

	cases := []struct {
		Name   string
		Patch  *JobPatch
		Expect bool
	}{
		{"Nil", nil, true},
		{"NoPreconditions", &JobPatch{Progress: IntPtr(10)}, true},
		{"HeartbeatStale", &JobPatch{IfHeartbeatBefore: 51}, true},
		{"HeartbeatFresh", &JobPatch{IfHeartbeatBefore: 50}, false},
		{"SameAttempt", &JobPatch{IfAttempt: 2}, true},
		{"EarlierAttempt", &JobPatch{IfAttempt: 1}, false},
		{"Both", &JobPatch{IfHeartbeatBefore: 60, IfAttempt: 2}, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, c.Patch.Holds(j))
		})
	}
}

func TestNewEventCarriesVersion(t *testing.T) {
	j := &Job{JobSpec: JobSpec{OwnerID: "alice"}, ID: "j1", State: PAUSED, Progress: 30, Version: 9}

	ev := NewEvent(j, EventPaused, ReasonUserRequest)

	assert.Equal(t, int64(9), ev.Version)
	assert.Equal(t, int64(0), ev.Sequence)
	assert.Equal(t, PAUSED, ev.Payload.State)
	assert.Equal(t, ReasonUserRequest, ev.Payload.Reason)
}

func TestErrorCodePermanent(t *testing.T) {
	cases := []struct {
		Code   ErrorCode
		Expect bool
	}{
		{ErrorCodeInvalid, true},
		{ErrorCodeNotFound, true},
		{ErrorCodeForbidden, true},
		{ErrorCodeInternal, false},
		{"", false},
	}

	for _, c := range cases {
		t.Run(string(c.Code), func(t *testing.T) {
			assert.Equal(t, c.Expect, c.Code.Permanent())
		})
	}
}
