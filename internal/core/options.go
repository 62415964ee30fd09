package core

import (
	"time"

	"github.com/voidshard/keel/pkg/structs"
)

const (
	defCheckpointTTL   = time.Duration(structs.DefaultCheckpointTTL) * time.Second
	defConflictRetries = 5
	defPublishRetries  = 3
)

// Options for the core service.
type Options struct {
	// CheckpointTTL is how long a saved checkpoint may be resumed from.
	CheckpointTTL time.Duration

	// ConflictRetries is how many times a state change is re-attempted after
	// losing a compare-and-swap to a concurrent writer.
	ConflictRetries uint64

	// PublishRetries is how many times publishing an event is re-attempted
	// before it's logged & dropped. The state change it describes stands.
	PublishRetries uint64
}

func (o *Options) SetDefaults() {
	if o.CheckpointTTL <= 0 {
		o.CheckpointTTL = defCheckpointTTL
	}
	if o.ConflictRetries == 0 {
		o.ConflictRetries = defConflictRetries
	}
	if o.PublishRetries == 0 {
		o.PublishRetries = defPublishRetries
	}
}
