package structs

const (
	queryLimitDefault = 100
	queryLimitMax     = 1000
)

type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	JobIDs   []string `json:"job_ids,omitempty"`
	OwnerIDs []string `json:"owner_ids,omitempty"`
	Types    []string `json:"types,omitempty"`
	States   []State  `json:"states,omitempty"`

	// UpdatedBefore matches jobs whose updated_at is strictly before this (unix seconds)
	UpdatedBefore int64 `json:"updated_before,omitempty"`

	// HeartbeatBefore matches jobs whose last_heartbeat_at is strictly before this (unix seconds)
	HeartbeatBefore int64 `json:"heartbeat_before,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if len(q.JobIDs) == 0 {
		q.JobIDs = nil
	}
	if len(q.OwnerIDs) == 0 {
		q.OwnerIDs = nil
	}
	if len(q.Types) == 0 {
		q.Types = nil
	}
	if len(q.States) == 0 {
		q.States = nil
	}
	if q.UpdatedBefore < 0 {
		q.UpdatedBefore = 0
	}
	if q.HeartbeatBefore < 0 {
		q.HeartbeatBefore = 0
	}
}

// Matches returns if the job passes the query's filters (limit & offset aside).
func (q *Query) Matches(j *Job) bool {
	if q.JobIDs != nil && !contains(q.JobIDs, j.ID) {
		return false
	}
	if q.OwnerIDs != nil && !contains(q.OwnerIDs, j.OwnerID) {
		return false
	}
	if q.Types != nil && !contains(q.Types, j.Type) {
		return false
	}
	if q.States != nil {
		found := false
		for _, s := range q.States {
			if s == j.State {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.UpdatedBefore > 0 && j.UpdatedAt >= q.UpdatedBefore {
		return false
	}
	if q.HeartbeatBefore > 0 && j.LastHeartbeatAt >= q.HeartbeatBefore {
		return false
	}
	return true
}

func contains(in []string, s string) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}
