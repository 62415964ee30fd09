package gateway

import (
	"time"
)

const (
	defSendBuffer     = 256
	defWriteWait      = 10 * time.Second
	defPongWait       = 60 * time.Second
	defMaxMessageSize = 4096
)

type Options struct {
	// SendBuffer is the number of frames queued per connection. A connection
	// that falls this far behind is dropped; the client reconnects & replays.
	SendBuffer int

	// WriteWait is the time allowed to write a frame.
	WriteWait time.Duration

	// PongWait is how long we wait for a pong before giving up on a connection.
	// Pings are sent at 9/10ths of this.
	PongWait time.Duration

	// MaxMessageSize is the largest frame we'll read from a client.
	MaxMessageSize int64

	// AllowedOrigins for browser clients. Empty allows any origin.
	AllowedOrigins []string
}

func (o *Options) SetDefaults() {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defSendBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defWriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = defPongWait
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defMaxMessageSize
	}
}

func (o *Options) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}
