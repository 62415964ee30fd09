package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/auth"
	"github.com/voidshard/keel/pkg/api"
	"github.com/voidshard/keel/pkg/api/http/server"
	"github.com/voidshard/keel/pkg/gateway"
)

const (
	docApi = `Run the REST API server (optionally serving the realtime gateway too)`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsRedis
	optsAuth

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`

	Realtime       bool     `long:"realtime" env:"REALTIME" description:"Also serve the realtime gateway on /ws"`
	AllowedOrigins []string `long:"allowed-origin" env:"ALLOWED_ORIGINS" env-delim:"," description:"Origins allowed to open realtime connections (default any)"`
}

func (c *optsAPI) Execute(args []string) error {
	// The API server runs no background routines (sweeping, jobs); run
	// `sweeper` and `worker` for those.
	c.setup()

	busOpts, qOpts, err := c.redisOptions()
	if err != nil {
		return err
	}

	svc, err := api.New(c.dbOptions(), busOpts, qOpts, api.OptionsClientDefault())
	if err != nil {
		return err
	}
	defer svc.Close()

	authn, err := c.authenticator()
	if err != nil {
		return err
	}

	var rt http.Handler
	if c.Realtime {
		if authn == nil {
			return errRealtimeNeedsAuth
		}
		g := svc.Gateway(authn, &gateway.Options{AllowedOrigins: c.AllowedOrigins})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go runGateway(ctx, g)
		rt = g
	}

	var v server.Verifier
	if authn != nil {
		v = authn
	}
	return server.NewServer(c.Addr, c.Debug, v, rt).ServeForever(svc)
}

// authenticator returns nil if no secret is configured; requests are then
// not authenticated.
func (c optsAuth) authenticator() (*auth.Authenticator, error) {
	if c.JWTSecret == "" {
		log.Warn("no jwt secret set, API requests will not be authenticated")
		return nil, nil
	}
	return auth.New(c.JWTSecret)
}

func runGateway(ctx context.Context, g *gateway.Gateway) {
	err := g.Run(ctx)
	if err != nil {
		log.WithError(err).Error("[Gateway] stopped routing events")
	}
}
