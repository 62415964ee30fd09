package main

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/pkg/api"
	"github.com/voidshard/keel/pkg/worker"
)

const (
	docWorker = `Run a worker processing jobs with the built in handlers`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsRedis

	HeartbeatInterval time.Duration `long:"heartbeat-interval" env:"HEARTBEAT_INTERVAL" description:"How often running jobs heartbeat" default:"15s"`
}

func (c *optsWorker) Execute(args []string) error {
	c.setup()

	busOpts, qOpts, err := c.redisOptions()
	if err != nil {
		return err
	}

	opts := api.OptionsClientDefault()
	opts.Worker = &worker.Options{HeartbeatInterval: c.HeartbeatInterval}

	svc, err := api.New(c.dbOptions(), busOpts, qOpts, opts)
	if err != nil {
		return err
	}

	err = registerHandlers(svc)
	if err != nil {
		svc.Close()
		return err
	}

	// RunWorkers returns once the service is closed
	ctx, cancel := interrupted()
	defer cancel()
	go func() {
		<-ctx.Done()
		svc.Close()
	}()

	log.Info("[Worker] processing jobs")
	return svc.RunWorkers()
}

func registerHandlers(svc *api.Service) error {
	return svc.Register("research", research)
}
