package bus

import (
	"crypto/tls"
	"time"
)

const (
	// MemoryURL selects the in-process bus; only subscribers in this process
	// see events.
	MemoryURL = "memory://"

	defaultBacklogSize      = 200
	defaultBacklogTTL       = 24 * time.Hour
	defaultSubscriberBuffer = 256
	defaultKeyPrefix        = "keel"
)

// Options are options for the bus.
type Options struct {
	// URL encodes how we'll connect to the bus, eg. redis://localhost:6379/0
	URL string

	// TLSConfig needed to connect to the bus (optional).
	TLSConfig *tls.Config

	// BacklogSize is the number of events retained per job.
	BacklogSize int64

	// BacklogTTL is how long a job's backlog is kept after it's last event.
	BacklogTTL time.Duration

	// SubscriberBuffer is how many events may queue for a subscriber before
	// live events are dropped.
	SubscriberBuffer int

	// KeyPrefix namespaces all redis keys & channels.
	KeyPrefix string
}

func (o *Options) SetDefaults() {
	if o.URL == "" {
		o.URL = MemoryURL
	}
	if o.BacklogSize <= 0 {
		o.BacklogSize = defaultBacklogSize
	}
	if o.BacklogTTL <= 0 {
		o.BacklogTTL = defaultBacklogTTL
	}
	if o.SubscriberBuffer <= 0 {
		o.SubscriberBuffer = defaultSubscriberBuffer
	}
	if o.KeyPrefix == "" {
		o.KeyPrefix = defaultKeyPrefix
	}
}

// New returns a Bus for the given options; redis unless the URL is MemoryURL.
func New(opts *Options) (Bus, error) {
	opts.SetDefaults()
	if opts.URL == MemoryURL {
		return NewMemory(opts), nil
	}
	return NewRedis(opts)
}
