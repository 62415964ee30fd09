package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// Memory is an in-process Database. Every write holds a single lock so
// compare-and-swap semantics match the postgres implementation.
type Memory struct {
	lock        sync.Mutex
	jobs        map[string]*structs.Job
	checkpoints map[string]*structs.Checkpoint
}

func NewMemory() *Memory {
	return &Memory{
		jobs:        map[string]*structs.Job{},
		checkpoints: map[string]*structs.Checkpoint{},
	}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) InsertJob(ctx context.Context, j *structs.Job) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.jobs[j.ID]; ok {
		return fmt.Errorf("%w job %s already exists", ie.ErrConflict, j.ID)
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	m.jobs[j.ID] = j.Copy()
	return nil
}

func (m *Memory) Job(ctx context.Context, id string) (*structs.Job, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w job %s", ie.ErrNotFound, id)
	}
	return j.Copy(), nil
}

func (m *Memory) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	found := []*structs.Job{}
	for _, j := range m.jobs {
		if q.Matches(j) {
			found = append(found, j.Copy())
		}
	}
	sort.Slice(found, func(a, b int) bool {
		if found[a].CreatedAt == found[b].CreatedAt {
			return found[a].ID > found[b].ID
		}
		return found[a].CreatedAt > found[b].CreatedAt
	})

	if q.Offset >= len(found) {
		return []*structs.Job{}, nil
	}
	found = found[q.Offset:]
	if q.Limit > 0 && len(found) > q.Limit {
		found = found[:q.Limit]
	}
	return found, nil
}

func (m *Memory) CASUpdate(ctx context.Context, id string, expected structs.State, patch *structs.JobPatch) (*structs.Job, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w job %s", ie.ErrNotFound, id)
	}
	if j.State != expected {
		return nil, fmt.Errorf("%w job %s is not %s", ie.ErrConflict, id, expected)
	}
	if !patch.Holds(j) {
		return nil, fmt.Errorf("%w job %s heartbeat at %d attempt %d", ie.ErrConflict, id, j.LastHeartbeatAt, j.Attempt)
	}

	next := j.Copy()
	next.Apply(patch, timeNow())
	m.jobs[id] = next

	return next.Copy(), nil
}

func (m *Memory) DeleteJobs(ctx context.Context, ids []string) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	count := int64(0)
	for _, id := range ids {
		if _, ok := m.jobs[id]; !ok {
			continue
		}
		delete(m.jobs, id)
		delete(m.checkpoints, id)
		count++
	}
	return count, nil
}

func (m *Memory) SaveCheckpoint(ctx context.Context, cp *structs.Checkpoint) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.jobs[cp.JobID]; !ok {
		return fmt.Errorf("%w job %s", ie.ErrNotFound, cp.JobID)
	}
	cpy := *cp
	m.checkpoints[cp.JobID] = &cpy
	return nil
}

func (m *Memory) Checkpoint(ctx context.Context, jobID string) (*structs.Checkpoint, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	cp, ok := m.checkpoints[jobID]
	if !ok {
		return nil, fmt.Errorf("%w for job %s", ie.ErrCheckpointNotFound, jobID)
	}
	if cp.Expired(timeNow()) {
		return nil, fmt.Errorf("%w for job %s at %d", ie.ErrCheckpointExpired, jobID, cp.ExpiresAt())
	}
	cpy := *cp
	return &cpy, nil
}

func (m *Memory) DeleteExpiredCheckpoints(ctx context.Context, now int64) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	count := int64(0)
	for id, cp := range m.checkpoints {
		if cp.Expired(now) {
			delete(m.checkpoints, id)
			count++
		}
	}
	return count, nil
}
