package agent

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defInitialBackoff = 1 * time.Second
	defMaxBackoff     = 30 * time.Second
	defUpdateBuffer   = 256
	defSendBuffer     = 64
	defWriteWait      = 10 * time.Second
	defPongWait       = 60 * time.Second
	defActionTimeout  = 30 * time.Second
)

type Options struct {
	// GatewayURL is the realtime endpoint, eg. wss://keel.example.com/ws
	GatewayURL string

	// Token is sent as a bearer token when connecting.
	Token string

	// InitialBackoff is the first wait after a failed connect; each failure
	// doubles it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// UpdateBuffer is the size of the Updates channel.
	UpdateBuffer int

	// SendBuffer is the number of frames we'll queue for the gateway before
	// giving up on the connection & reconnecting.
	SendBuffer int

	// WriteWait is the time allowed to write a frame.
	WriteWait time.Duration

	// PongWait is how long we go without hearing from the gateway (the
	// gateway pings regularly) before reconnecting.
	PongWait time.Duration

	// ActionTimeout bounds a single pause / resume / cancel request.
	ActionTimeout time.Duration
}

func (o *Options) SetDefaults() {
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = defInitialBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = defMaxBackoff
	}
	if o.MaxBackoff < o.InitialBackoff {
		o.MaxBackoff = o.InitialBackoff
	}
	if o.UpdateBuffer <= 0 {
		o.UpdateBuffer = defUpdateBuffer
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = defSendBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defWriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = defPongWait
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = defActionTimeout
	}
}

// newBackoff returns 1s, 2s, 4s .. MaxBackoff forever (given the defaults).
func (o *Options) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.InitialBackoff
	b.MaxInterval = o.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
