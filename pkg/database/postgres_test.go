package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/keel/pkg/structs"
)

func TestToSqlIn(t *testing.T) {
	cases := []struct {
		Name       string
		Offset     int
		Field      string
		Args       []string
		ExpectSql  string
		ExpectArgs []interface{}
	}{
		{"Empty", 1, "id", nil, "", []interface{}{}},
		{"Single", 1, "id", []string{"a"}, "id IN ($1)", []interface{}{"a"}},
		{"Offset", 3, "state", []string{"a", "b"}, "state IN ($3, $4)", []interface{}{"a", "b"}},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toSqlIn(c.Offset, c.Field, c.Args)

			assert.Equal(t, c.ExpectSql, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}

func TestToSqlQuery(t *testing.T) {
	cases := []struct {
		Name            string
		In              map[string][]string
		UpdatedBefore   int64
		HeartbeatBefore int64
		ExpectSql       string
		ExpectArgs      []interface{}
	}{
		{
			Name:       "NoFilters",
			In:         map[string][]string{"id": nil},
			ExpectSql:  "",
			ExpectArgs: []interface{}{},
		},
		{
			Name: "OrderedFilters",
			In: map[string][]string{
				"state":    {"running", "paused"},
				"owner_id": {"alice"},
			},
			HeartbeatBefore: 5,
			ExpectSql:       "WHERE owner_id IN ($1) AND state IN ($2, $3) AND last_heartbeat_at < $4",
			ExpectArgs:      []interface{}{"alice", "running", "paused", int64(5)},
		},
		{
			Name:          "TimesOnly",
			In:            map[string][]string{},
			UpdatedBefore: 10,
			ExpectSql:     "WHERE updated_at < $1",
			ExpectArgs:    []interface{}{int64(10)},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toSqlQuery(c.In, c.UpdatedBefore, c.HeartbeatBefore)

			assert.Equal(t, c.ExpectSql, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}

func TestToPatchSql(t *testing.T) {
	cases := []struct {
		Name       string
		Patch      *structs.JobPatch
		ExpectSql  string
		ExpectArgs []interface{}
	}{
		{
			Name:       "NilPatch",
			Patch:      nil,
			ExpectSql:  "version=version+1, updated_at=$1",
			ExpectArgs: []interface{}{int64(99)},
		},
		{
			Name: "ProgressNeverDecreases",
			Patch: &structs.JobPatch{
				State:       structs.RUNNING,
				Progress:    structs.IntPtr(40),
				Message:     structs.StringPtr("reading"),
				HeartbeatAt: 10,
			},
			ExpectSql:  "state=$1, progress=GREATEST(progress, $2), message=$3, last_heartbeat_at=$4, version=version+1, updated_at=$5",
			ExpectArgs: []interface{}{structs.RUNNING, 40, "reading", int64(10), int64(99)},
		},
		{
			Name: "ResetProgress",
			Patch: &structs.JobPatch{
				Progress:      structs.IntPtr(20),
				ResetProgress: true,
			},
			ExpectSql:  "progress=$1, version=version+1, updated_at=$2",
			ExpectArgs: []interface{}{20, int64(99)},
		},
		{
			Name: "Terminal",
			Patch: &structs.JobPatch{
				State:  structs.COMPLETED,
				Result: json.RawMessage(`{"ok":true}`),
				Error:  "",
			},
			ExpectSql:  "state=$1, result=$2, version=version+1, updated_at=$3",
			ExpectArgs: []interface{}{structs.COMPLETED, []byte(`{"ok":true}`), int64(99)},
		},
		{
			Name: "StartsAttempt",
			Patch: &structs.JobPatch{
				State:       structs.RUNNING,
				NextAttempt: true,
				IfAttempt:   3,
				HeartbeatAt: 10,
			},
			ExpectSql:  "state=$1, attempt=attempt+1, last_heartbeat_at=$2, version=version+1, updated_at=$3",
			ExpectArgs: []interface{}{structs.RUNNING, int64(10), int64(99)},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toPatchSql(1, c.Patch, 99)

			assert.Equal(t, c.ExpectSql, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}

func TestToJobSqlArgs(t *testing.T) {
	in := &structs.Job{
		JobSpec: structs.JobSpec{
			Type:    "research",
			OwnerID: "alice",
			Params:  json.RawMessage(`{"q":"x"}`),
		},
		ID:              "id",
		State:           structs.CREATED,
		Progress:        0,
		RetryOf:         "old",
		CreatedAt:       100,
		UpdatedAt:       200,
		LastHeartbeatAt: 0,
		Version:         1,
	}

	qstr, result := toJobSqlArgs(2, in)

	assert.Equal(t, "($2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)", qstr)
	assert.Equal(t, []interface{}{
		in.ID,
		in.Type,
		in.OwnerID,
		[]byte(`{"q":"x"}`),
		in.State,
		in.Progress,
		in.Message,
		[]byte(nil),
		in.Error,
		in.RetryOf,
		in.CreatedAt,
		in.UpdatedAt,
		in.LastHeartbeatAt,
		in.Version,
		in.Attempt,
	}, result)
}

func TestToCheckpointSqlArgs(t *testing.T) {
	in := &structs.Checkpoint{
		JobID:    "id",
		Step:     "sources_fetched",
		Progress: 40,
		Data:     &structs.CheckpointData{Type: "research", SchemaVersion: 1, Body: json.RawMessage(`{"n":3}`)},
		SavedAt:  100,
		TTL:      60,
	}

	qstr, result, err := toCheckpointSqlArgs(1, in)

	assert.Nil(t, err)
	assert.Equal(t, "($1, $2, $3, $4, $5, $6)", qstr)
	assert.Equal(t, []interface{}{
		in.JobID,
		in.Step,
		in.Progress,
		[]byte(`{"type":"research","schema_version":1,"body":{"n":3}}`),
		in.SavedAt,
		in.TTL,
	}, result)
}

func TestStatesToStrings(t *testing.T) {
	assert.Nil(t, statesToStrings(nil))
	assert.Equal(t, []string{"paused", "failed"}, statesToStrings([]structs.State{structs.PAUSED, structs.FAILED}))
}
