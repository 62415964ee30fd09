package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/pkg/bus"
	"github.com/voidshard/keel/pkg/structs"
)

// roomKey identifies the set of subscriptions for one owner's job.
type roomKey struct {
	owner string
	job   string
}

// Gateway pushes job events to websocket clients.
//
// Clients subscribe to jobs they own & are sent every event after the
// sequence they last saw, in order, without duplicates. Everything a client
// needs to catch up lives in the bus, so any Gateway instance can serve any
// client.
type Gateway struct {
	bus  bus.Bus
	jobs JobReader
	auth Verifier
	opts *Options

	upgrader websocket.Upgrader

	lock  sync.RWMutex
	rooms map[roomKey]map[*subscription]bool
}

func New(eb bus.Bus, jobs JobReader, auth Verifier, opts *Options) *Gateway {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()

	g := &Gateway{
		bus:   eb,
		jobs:  jobs,
		auth:  auth,
		opts:  opts,
		rooms: map[roomKey]map[*subscription]bool{},
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Run routes events from the bus to subscribed clients until ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	sub, err := g.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return fmt.Errorf("event subscription closed")
			}
			g.route(ctx, ev)
		}
	}
}

// ServeHTTP upgrades an authenticated request to a websocket connection and
// serves it until either side hangs up.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, err := g.auth.Subject(bearerToken(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("[Gateway] upgrade failed")
		return
	}

	c := newConn(g, ws, owner)
	metrics.GatewayConnections.Inc()
	log.WithField("owner_id", owner).Debug("[Gateway] client connected")

	go c.writePump()
	c.readPump()
}

// Subscribers returns the number of subscriptions for the owner's job on
// this instance.
func (g *Gateway) Subscribers(owner, jobID string) int {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return len(g.rooms[roomKey{owner: owner, job: jobID}])
}

func (g *Gateway) route(ctx context.Context, ev *structs.Event) {
	g.lock.RLock()
	room := g.rooms[roomKey{owner: ev.OwnerID, job: ev.JobID}]
	subs := make([]*subscription, 0, len(room))
	for s := range room {
		subs = append(subs, s)
	}
	g.lock.RUnlock()

	for _, s := range subs {
		s.deliver(ctx, ev)
	}
}

func (g *Gateway) join(s *subscription) {
	g.lock.Lock()
	defer g.lock.Unlock()
	room, ok := g.rooms[s.key]
	if !ok {
		room = map[*subscription]bool{}
		g.rooms[s.key] = room
	}
	room[s] = true
}

func (g *Gateway) leave(s *subscription) {
	g.lock.Lock()
	defer g.lock.Unlock()
	room, ok := g.rooms[s.key]
	if !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(g.rooms, s.key)
	}
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // not a browser
	}
	for _, o := range g.opts.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// bearerToken returns the token from the Authorization header, or the token
// query param (browsers can't set headers on websocket requests).
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
