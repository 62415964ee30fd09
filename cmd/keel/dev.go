package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/auth"
	"github.com/voidshard/keel/internal/utils"
	"github.com/voidshard/keel/pkg/api"
	"github.com/voidshard/keel/pkg/api/http/server"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/database"
	"github.com/voidshard/keel/pkg/gateway"
	"github.com/voidshard/keel/pkg/queue"
)

const (
	docDev = `Run everything in one process with in-memory storage`
)

type optsDev struct {
	optsGeneral
	optsAuth

	Addr  string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
	Owner string `long:"owner" env:"OWNER" description:"Owner to print a token for" default:"dev"`
}

func (c *optsDev) Execute(args []string) error {
	// Nothing survives a restart. Postgres & redis aren't needed.
	c.setup()

	if c.JWTSecret == "" {
		c.JWTSecret = utils.NewRandomID() + utils.NewRandomID()
	}
	authn, err := auth.New(c.JWTSecret)
	if err != nil {
		return err
	}
	tok, err := authn.Token(c.Owner, 24*time.Hour)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"owner_id": c.Owner, "token": tok}).Info("dev token")

	svc, err := api.New(
		&database.Options{URL: database.MemoryURL},
		&bus.Options{URL: bus.MemoryURL},
		&queue.Options{URL: queue.MemoryURL},
		api.OptionsServerDefault(),
	)
	if err != nil {
		return err
	}
	defer svc.Close()

	err = registerHandlers(svc)
	if err != nil {
		return err
	}
	go func() {
		err := svc.RunWorkers()
		if err != nil {
			log.WithError(err).Error("[Worker] stopped")
		}
	}()

	g := svc.Gateway(authn, &gateway.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runGateway(ctx, g)

	return server.NewServer(c.Addr, c.Debug, authn, g).ServeForever(svc)
}
