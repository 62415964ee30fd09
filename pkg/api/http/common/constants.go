package common

import (
	"fmt"
)

const (
	// API_JOBS is used to list or create jobs
	API_JOBS = "/api/v1/jobs"

	// API_JOB is used to get a job's full status
	API_JOB = "/api/v1/jobs/{id}"

	// API_JOB_ACTION is used to pause, resume, cancel or retry a job
	API_JOB_ACTION = "/api/v1/jobs/{id}/{action:pause|resume|cancel|retry}"

	// API_HEALTH reports the server is up
	API_HEALTH = "/healthz"

	// API_METRICS serves prometheus metrics
	API_METRICS = "/metrics"

	// API_REALTIME is where the realtime gateway is mounted, if it's served
	// by the API server.
	API_REALTIME = "/ws"
)

// JobPath returns the path of a job.
func JobPath(id string) string {
	return fmt.Sprintf("%s/%s", API_JOBS, id)
}

// ActionPath returns the path used to apply an action to a job.
func ActionPath(id, action string) string {
	return fmt.Sprintf("%s/%s/%s", API_JOBS, id, action)
}
