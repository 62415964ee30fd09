package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/internal/utils"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// conn is one client websocket. Frames are written only by writePump; the
// rest of the gateway queues them with push.
type conn struct {
	gw    *Gateway
	ws    *websocket.Conn
	owner string
	send  chan *structs.ServerFrame

	ctx    context.Context
	cancel context.CancelFunc

	lock sync.Mutex
	subs map[string]*subscription
	once sync.Once
}

func newConn(g *Gateway, ws *websocket.Conn, owner string) *conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &conn{
		gw:     g,
		ws:     ws,
		owner:  owner,
		send:   make(chan *structs.ServerFrame, g.opts.SendBuffer),
		ctx:    ctx,
		cancel: cancel,
		subs:   map[string]*subscription{},
	}
}

// push queues a frame for the client. If the client isn't keeping up the
// connection is closed; it'll reconnect and replay from where it got to.
func (c *conn) push(f *structs.ServerFrame) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.send <- f:
		return true
	default:
		metrics.GatewaySlowConsumers.Inc()
		log.WithField("owner_id", c.owner).Warn("[Gateway] client too slow, dropping connection")
		c.close(websocket.CloseTryAgainLater, "too slow")
		return false
	}
}

func (c *conn) close(code int, reason string) {
	c.once.Do(func() {
		c.cancel()

		c.lock.Lock()
		subs := c.subs
		c.subs = map[string]*subscription{}
		c.lock.Unlock()
		for _, s := range subs {
			c.gw.leave(s)
		}

		deadline := time.Now().Add(c.gw.opts.WriteWait)
		c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		c.ws.Close()

		metrics.GatewayConnections.Dec()
		log.WithField("owner_id", c.owner).Debug("[Gateway] client disconnected")
	})
}

func (c *conn) readPump() {
	defer c.close(websocket.CloseNormalClosure, "")

	c.ws.SetReadLimit(c.gw.opts.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.gw.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.gw.opts.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("owner_id", c.owner).Debug("[Gateway] read failed")
			}
			return
		}

		f := &structs.ClientFrame{}
		err = json.Unmarshal(data, f)
		if err != nil {
			c.push(errorFrame("", structs.ErrorCodeInvalid, "invalid frame"))
			continue
		}

		switch f.Op {
		case structs.OpSubscribe:
			c.subscribe(f)
		case structs.OpUnsubscribe:
			c.unsubscribe(f.JobID)
		default:
			c.push(errorFrame(f.JobID, structs.ErrorCodeInvalid, "unknown op"))
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(c.gw.opts.pingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case f := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.gw.opts.WriteWait))
			err := c.ws.WriteJSON(f)
			if err != nil {
				c.close(websocket.CloseGoingAway, "")
				return
			}
			metrics.GatewayFramesSent.WithLabelValues(string(f.Type)).Inc()
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.gw.opts.WriteWait))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				c.close(websocket.CloseGoingAway, "")
				return
			}
		}
	}
}

func (c *conn) subscribe(f *structs.ClientFrame) {
	if !utils.IsValidID(f.JobID) {
		c.push(errorFrame(f.JobID, structs.ErrorCodeInvalid, "invalid job id"))
		return
	}

	j, err := c.gw.jobs.Job(c.ctx, f.JobID)
	if errors.Is(err, ie.ErrNotFound) {
		c.push(errorFrame(f.JobID, structs.ErrorCodeNotFound, ie.ErrNotFound.Error()))
		return
	} else if err != nil {
		log.WithError(err).WithField("job_id", f.JobID).Warn("[Gateway] failed to read job")
		c.push(errorFrame(f.JobID, structs.ErrorCodeInternal, "internal error"))
		return
	}
	if j.OwnerID != c.owner {
		c.push(errorFrame(f.JobID, structs.ErrorCodeForbidden, ie.ErrForbidden.Error()))
		return
	}

	last := f.LastSeenSequence
	if last < 0 {
		last = 0
	}
	s := &subscription{conn: c, key: roomKey{owner: c.owner, job: f.JobID}, last: last}

	c.lock.Lock()
	old, ok := c.subs[f.JobID]
	c.subs[f.JobID] = s
	c.lock.Unlock()
	if ok {
		c.gw.leave(old)
	}

	// hold the subscription while we replay so live events wait behind it
	s.lock.Lock()
	defer s.lock.Unlock()

	c.gw.join(s)
	if c.ctx.Err() != nil {
		// closed while we were setting up
		c.gw.leave(s)
		return
	}

	c.push(&structs.ServerFrame{Type: structs.FrameSubscribed, JobID: f.JobID})
	s.catchUp(c.ctx)
}

func (c *conn) unsubscribe(jobID string) {
	c.lock.Lock()
	s, ok := c.subs[jobID]
	delete(c.subs, jobID)
	c.lock.Unlock()
	if ok {
		c.gw.leave(s)
	}
}

func errorFrame(jobID string, code structs.ErrorCode, msg string) *structs.ServerFrame {
	return &structs.ServerFrame{Type: structs.FrameError, JobID: jobID, Error: msg, Code: code}
}
