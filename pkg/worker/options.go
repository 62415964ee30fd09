package worker

import (
	"time"
)

const (
	defHeartbeatInterval = 15 * time.Second
)

type Options struct {
	// HeartbeatInterval is how often a running job tells us it's alive. This
	// should be well under the sweeper's ActiveJobTimeout.
	HeartbeatInterval time.Duration
}

func (o *Options) SetDefaults() {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = defHeartbeatInterval
	}
}
