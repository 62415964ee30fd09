// Package metrics holds the prometheus collectors keel exports on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keel"

var (
	// Transitions counts persisted state transitions by from & to state.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_transitions_total",
		Help:      "State transitions persisted, by from & to state.",
	}, []string{"from", "to"})

	// TransitionConflicts counts compare-and-swap writes lost to another writer.
	TransitionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_transition_conflicts_total",
		Help:      "Compare-and-swap transitions that lost to a concurrent writer.",
	})

	// JobsCreated counts jobs created by job type.
	JobsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Jobs created, by type.",
	}, []string{"type"})

	// CheckpointsSaved counts checkpoints written.
	CheckpointsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkpoints_saved_total",
		Help:      "Checkpoints written by workers or pause.",
	})

	// EventsPublished counts events published to the bus, by event type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Events published to the bus, by type.",
	}, []string{"type"})

	// PublishFailures counts events that could not be published after retries.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Events dropped after exhausting publish retries.",
	})

	// StaleEvents counts events the bus refused because a newer version of the
	// job had already been published.
	StaleEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_stale_total",
		Help:      "Events superseded by a newer job version before they were published.",
	})

	// SubscriberDrops counts live events dropped because a subscriber was behind.
	SubscriberDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bus_subscriber_drops_total",
		Help:      "Live events dropped on a full subscriber buffer.",
	})

	// GatewayConnections is the number of open realtime connections.
	GatewayConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gateway_connections",
		Help:      "Open realtime client connections.",
	})

	// GatewayFramesSent counts frames pushed to clients by frame type.
	GatewayFramesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_frames_sent_total",
		Help:      "Frames pushed to realtime clients, by frame type.",
	}, []string{"type"})

	// GatewayBacklogGaps counts backlog gaps signalled to clients.
	GatewayBacklogGaps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_backlog_gaps_total",
		Help:      "Backlog gaps signalled to realtime clients.",
	})

	GatewaySlowConsumers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_slow_consumers_total",
		Help:      "Realtime connections dropped for falling behind.",
	})

	// SweeperRecovered counts stalled jobs recovered, by resulting state.
	SweeperRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweeper_recovered_total",
		Help:      "Stalled jobs recovered by the sweeper, by resulting state.",
	}, []string{"state"})

	// SweeperDeleted counts stale jobs deleted.
	SweeperDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweeper_deleted_total",
		Help:      "Stale jobs deleted by the sweeper.",
	})

	// SweepDuration observes how long a sweep pass takes.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Time taken by a single sweep pass.",
		Buckets:   prometheus.DefBuckets,
	})

	// TrackedJobs is the number of active jobs watched by the scheduler.
	TrackedJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_tracked_jobs",
		Help:      "Active jobs the scheduler is tracking heartbeats for.",
	})
)

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
