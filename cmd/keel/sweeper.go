package main

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/sweeper"
	"github.com/voidshard/keel/pkg/api"
)

const (
	docSweeper = `Run the sweeper; recovers stalled jobs & deletes old ones`
)

type optsSweeper struct {
	optsGeneral
	optsDatabase
	optsRedis

	Interval         time.Duration `long:"interval" env:"SWEEP_INTERVAL" description:"Time between sweeps" default:"5m"`
	ActiveJobTimeout time.Duration `long:"active-job-timeout" env:"ACTIVE_JOB_TIMEOUT" description:"Running jobs without a heartbeat for this long are considered stalled" default:"60m"`
	StaleJobMaxAge   time.Duration `long:"stale-job-max-age" env:"STALE_JOB_MAX_AGE" description:"Finished jobs are deleted after this long" default:"24h"`
}

func (c *optsSweeper) Execute(args []string) error {
	// Safe to run more than one; a lock in the bus' redis makes sure only one
	// sweeps at a time.
	c.setup()

	busOpts, qOpts, err := c.redisOptions()
	if err != nil {
		return err
	}

	lock, err := sweeper.NewLocker(busOpts.URL, busOpts.TLSConfig)
	if err != nil {
		return err
	}

	opts := api.OptionsServerDefault()
	opts.SweeperLock = lock
	opts.Sweeper = &sweeper.Options{
		Interval:         c.Interval,
		ActiveJobTimeout: c.ActiveJobTimeout,
		StaleJobMaxAge:   c.StaleJobMaxAge,
	}

	svc, err := api.New(c.dbOptions(), busOpts, qOpts, opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	log.WithField("interval", c.Interval).Info("[Sweeper] running")

	ctx, cancel := interrupted()
	defer cancel()
	<-ctx.Done()

	return nil
}
