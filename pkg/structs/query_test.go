package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *Query
		Expect *Query
	}{
		{
			Name:   "SetsDefaultLimit",
			Given:  &Query{},
			Expect: &Query{Limit: queryLimitDefault},
		},
		{
			Name:   "SetsMaxLimit",
			Given:  &Query{Limit: queryLimitMax + 1},
			Expect: &Query{Limit: queryLimitMax},
		},
		{
			Name:   "SanitizesOffset",
			Given:  &Query{Limit: 1, Offset: -1},
			Expect: &Query{Limit: 1, Offset: 0},
		},
		{
			Name:   "ZeroJobs",
			Given:  &Query{Limit: 1, JobIDs: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroOwners",
			Given:  &Query{Limit: 1, OwnerIDs: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroTypes",
			Given:  &Query{Limit: 1, Types: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroStates",
			Given:  &Query{Limit: 1, States: []State{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "NegativeTimes",
			Given:  &Query{Limit: 1, UpdatedBefore: -4, HeartbeatBefore: -1},
			Expect: &Query{Limit: 1},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			c.Given.Sanitize()
			assert.Equal(t, c.Expect, c.Given)
		})
	}
}

func TestMatches(t *testing.T) {
	job := &Job{
		JobSpec:         JobSpec{Type: "research", OwnerID: "alice"},
		ID:              "j1",
		State:           RUNNING,
		UpdatedAt:       100,
		LastHeartbeatAt: 50,
	}

	cases := []struct {
		Name   string
		Given  *Query
		Expect bool
	}{
		{"Empty", &Query{}, true},
		{"JobID", &Query{JobIDs: []string{"j0", "j1"}}, true},
		{"WrongJobID", &Query{JobIDs: []string{"j0"}}, false},
		{"Owner", &Query{OwnerIDs: []string{"alice"}}, true},
		{"WrongOwner", &Query{OwnerIDs: []string{"bob"}}, false},
		{"Type", &Query{Types: []string{"research"}}, true},
		{"WrongType", &Query{Types: []string{"summarize"}}, false},
		{"State", &Query{States: []State{PAUSED, RUNNING}}, true},
		{"WrongState", &Query{States: []State{PAUSED}}, false},
		{"UpdatedBefore", &Query{UpdatedBefore: 101}, true},
		{"UpdatedBeforeEqual", &Query{UpdatedBefore: 100}, false},
		{"HeartbeatBefore", &Query{HeartbeatBefore: 51}, true},
		{"HeartbeatBeforeEqual", &Query{HeartbeatBefore: 50}, false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, c.Given.Matches(job))
		})
	}
}
