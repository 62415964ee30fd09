package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/pkg/api"
	"github.com/voidshard/keel/pkg/api/http/common"
	"github.com/voidshard/keel/pkg/gateway"
)

const (
	docGateway = `Run a realtime gateway, pushing job events to websocket clients`
)

var errRealtimeNeedsAuth = fmt.Errorf("the realtime gateway requires --jwt-secret")

type optsGateway struct {
	optsGeneral
	optsDatabase
	optsRedis
	optsAuth

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8101"`

	AllowedOrigins []string `long:"allowed-origin" env:"ALLOWED_ORIGINS" env-delim:"," description:"Origins allowed to connect (default any)"`
	SendBuffer     int      `long:"send-buffer" env:"SEND_BUFFER" description:"Frames queued per client before it's dropped as too slow" default:"256"`
}

func (c *optsGateway) Execute(args []string) error {
	// Gateways hold no state of their own, run as many as you like behind a
	// load balancer.
	c.setup()

	authn, err := c.authenticator()
	if err != nil {
		return err
	}
	if authn == nil {
		return errRealtimeNeedsAuth
	}

	busOpts, qOpts, err := c.redisOptions()
	if err != nil {
		return err
	}
	svc, err := api.New(c.dbOptions(), busOpts, qOpts, api.OptionsClientDefault())
	if err != nil {
		return err
	}
	defer svc.Close()

	g := svc.Gateway(authn, &gateway.Options{AllowedOrigins: c.AllowedOrigins, SendBuffer: c.SendBuffer})

	router := mux.NewRouter()
	router.Handle(common.API_REALTIME, g)
	router.Handle(common.API_METRICS, metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc(common.API_HEALTH, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return serveUntilInterrupted(c.Addr, router, func(ctx context.Context) { runGateway(ctx, g) })
}

// serveUntilInterrupted serves handler on addr, running bg alongside, until
// we're signalled to stop.
func serveUntilInterrupted(addr string, handler http.Handler, bg func(ctx context.Context)) error {
	ctx, cancel := interrupted()
	defer cancel()

	go bg(ctx)

	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 15 * time.Second}
	errs := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer scancel()
	return srv.Shutdown(sctx)
}
