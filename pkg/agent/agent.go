package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/utils"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// rejections are errors meaning the server considered & refused an action.
// Anything else (network, 5xx) is retried.
var rejections = []error{
	ie.ErrInvalidTransition,
	ie.ErrNoResumableCheckpoint,
	ie.ErrNotFound,
	ie.ErrForbidden,
	ie.ErrUnauthorized,
	ie.ErrInvalidArg,
}

type action struct {
	kind  structs.Action
	jobID string
}

// Agent keeps an application in sync with the jobs it's watching.
//
// It holds a connection to the realtime gateway, reconnecting with backoff &
// resubscribing from the last sequence seen for each job. Events are delivered
// on Updates exactly once each, in order. Control actions requested while
// disconnected are queued & sent in order once we're back.
//
// Public methods never block on the network.
type Agent struct {
	ctrl Controller
	opts *Options
	url  string

	dialer *websocket.Dialer

	updates chan *Update
	kick    chan struct{}

	lock    sync.Mutex
	jobs    map[string]int64 // job id -> last seen sequence
	retries map[string]*backoff.ExponentialBackOff
	pending []*action
	sess    *session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New returns a running Agent. Call Close when done.
func New(ctrl Controller, opts *Options) (*Agent, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()

	u, err := url.Parse(opts.GatewayURL)
	if err != nil {
		return nil, fmt.Errorf("%w gateway url %s: %w", ie.ErrInvalidArg, opts.GatewayURL, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("%w gateway url scheme %q", ie.ErrInvalidArg, u.Scheme)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Agent{
		ctrl:    ctrl,
		opts:    opts,
		url:     u.String(),
		dialer:  &websocket.Dialer{HandshakeTimeout: opts.WriteWait},
		updates: make(chan *Update, opts.UpdateBuffer),
		kick:    make(chan struct{}, 1),
		jobs:    map[string]int64{},
		retries: map[string]*backoff.ExponentialBackOff{},
		ctx:     ctx,
		cancel:  cancel,
	}

	a.wg.Add(2)
	go a.connectLoop()
	go a.flushLoop()

	return a, nil
}

// Updates returns the channel updates are delivered on. It's closed by Close.
func (a *Agent) Updates() <-chan *Update {
	return a.updates
}

// Watch starts streaming a job's events after lastSeen (0 for everything
// retained). Watching a job again never moves it's position backwards.
func (a *Agent) Watch(jobID string, lastSeen int64) error {
	if !utils.IsValidID(jobID) {
		return fmt.Errorf("%w job id %s", ie.ErrInvalidArg, jobID)
	}
	if lastSeen < 0 {
		lastSeen = 0
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	if prev, ok := a.jobs[jobID]; ok && prev > lastSeen {
		lastSeen = prev
	}
	a.jobs[jobID] = lastSeen
	if a.sess != nil {
		a.sess.push(&structs.ClientFrame{Op: structs.OpSubscribe, JobID: jobID, LastSeenSequence: lastSeen})
	}
	return nil
}

// Unwatch stops streaming a job.
func (a *Agent) Unwatch(jobID string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	_, ok := a.jobs[jobID]
	delete(a.jobs, jobID)
	delete(a.retries, jobID)
	if ok && a.sess != nil {
		a.sess.push(&structs.ClientFrame{Op: structs.OpUnsubscribe, JobID: jobID})
	}
}

// LastSeen returns the highest sequence delivered for a watched job.
func (a *Agent) LastSeen(jobID string) (int64, bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	seq, ok := a.jobs[jobID]
	return seq, ok
}

// Connected returns if we currently hold a gateway connection.
func (a *Agent) Connected() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.sess != nil
}

// Pending returns the number of actions not yet accepted or refused.
func (a *Agent) Pending() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return len(a.pending)
}

// Pause queues a pause of the job. The outcome arrives as an update.
func (a *Agent) Pause(jobID string) {
	a.enqueue(structs.ActionPause, jobID)
}

// Resume queues a resume of the job. The outcome arrives as an update.
func (a *Agent) Resume(jobID string) {
	a.enqueue(structs.ActionResume, jobID)
}

// Cancel queues a cancel of the job. The outcome arrives as an update.
func (a *Agent) Cancel(jobID string) {
	a.enqueue(structs.ActionCancel, jobID)
}

// Close disconnects & stops the agent. Each queued action not yet confirmed
// is reported as failed with ErrClosed before Updates is closed.
// Safe to call more than once.
func (a *Agent) Close() error {
	a.once.Do(func() {
		a.cancel()

		a.lock.Lock()
		if a.sess != nil {
			a.sess.close()
		}
		a.lock.Unlock()

		a.wg.Wait()

		a.lock.Lock()
		unsent := a.pending
		a.pending = nil
		a.lock.Unlock()

		for _, act := range unsent {
			u := &Update{
				Kind:   UpdateActionFailed,
				JobID:  act.jobID,
				Action: act.kind,
				Err:    fmt.Errorf("%w before %s of job %s was confirmed", ie.ErrClosed, act.kind, act.jobID),
			}
			select {
			case a.updates <- u:
			default:
				log.WithFields(log.Fields{"job_id": act.jobID, "action": act.kind}).Warn("[Agent] update buffer full, unsent action not reported")
			}
		}
		close(a.updates)
	})
	return nil
}

func (a *Agent) enqueue(kind structs.Action, jobID string) {
	a.lock.Lock()
	if a.ctx.Err() != nil {
		a.lock.Unlock()
		log.WithFields(log.Fields{"job_id": jobID, "action": kind}).Warn("[Agent] closed, action ignored")
		return
	}
	a.pending = append(a.pending, &action{kind: kind, jobID: jobID})
	a.lock.Unlock()
	a.wake()
}

func (a *Agent) wake() {
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// emit hands an update to the application. We'd rather stall than drop; a
// stalled reader means the gateway eventually drops us & we replay.
func (a *Agent) emit(u *Update) {
	select {
	case <-a.ctx.Done():
	case a.updates <- u:
	}
}

func (a *Agent) connectLoop() {
	defer a.wg.Done()

	bo := a.opts.newBackoff()
	for {
		ws, err := a.dial()
		if err != nil {
			wait := bo.NextBackOff()
			log.WithError(err).WithField("retry_in", wait).Debug("[Agent] failed to connect")
			if !sleep(a.ctx, wait) {
				return
			}
			continue
		}
		bo.Reset()

		a.serve(ws)
		if a.ctx.Err() != nil {
			return
		}
		a.emit(&Update{Kind: UpdateDisconnected})
	}
}

func (a *Agent) dial() (*websocket.Conn, error) {
	header := http.Header{}
	if a.opts.Token != "" {
		header.Set("Authorization", "Bearer "+a.opts.Token)
	}
	ws, resp, err := a.dialer.DialContext(a.ctx, a.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil && resp != nil {
		return nil, fmt.Errorf("%w (status %d)", err, resp.StatusCode)
	}
	return ws, err
}

// serve runs one connection until it drops.
func (a *Agent) serve(ws *websocket.Conn) {
	s := newSession(ws, a.opts.SendBuffer)

	a.lock.Lock()
	if a.ctx.Err() != nil {
		a.lock.Unlock()
		ws.Close()
		return
	}
	a.sess = s
	for id, last := range a.jobs {
		s.push(&structs.ClientFrame{Op: structs.OpSubscribe, JobID: id, LastSeenSequence: last})
	}
	a.lock.Unlock()

	log.WithField("url", a.url).Debug("[Agent] connected")
	go s.writeLoop(a.opts.WriteWait)
	a.emit(&Update{Kind: UpdateConnected})
	a.wake()

	ws.SetReadDeadline(time.Now().Add(a.opts.PongWait))
	ws.SetPingHandler(func(data string) error {
		ws.SetReadDeadline(time.Now().Add(a.opts.PongWait))
		err := ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(a.opts.WriteWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		f := &structs.ServerFrame{}
		err := ws.ReadJSON(f)
		if err != nil {
			log.WithError(err).Debug("[Agent] connection lost")
			break
		}
		ws.SetReadDeadline(time.Now().Add(a.opts.PongWait))
		a.handle(f)
	}

	a.lock.Lock()
	if a.sess == s {
		a.sess = nil
	}
	a.lock.Unlock()
	s.close()
}

func (a *Agent) handle(f *structs.ServerFrame) {
	switch f.Type {
	case structs.FrameEvent:
		if f.Event == nil {
			return
		}
		if a.advance(f.Event.JobID, f.Event.Sequence) {
			a.emit(&Update{Kind: UpdateEvent, JobID: f.Event.JobID, Event: f.Event})
		}
	case structs.FrameBacklogGap:
		log.WithField("job_id", f.JobID).Debug("[Agent] backlog gap, refetching job")
		a.wg.Add(1)
		go a.resync(f.JobID)
	case structs.FrameError:
		a.refused(f)
	case structs.FrameSubscribed:
		a.lock.Lock()
		delete(a.retries, f.JobID)
		a.lock.Unlock()
		log.WithField("job_id", f.JobID).Debug("[Agent] subscribed")
	}
}

// refused handles the gateway turning down a subscription. A permanent
// refusal (not found, not ours) stops the watch; anything else is asked again
// after a backoff.
func (a *Agent) refused(f *structs.ServerFrame) {
	permanent := f.Code.Permanent()

	a.lock.Lock()
	_, ok := a.jobs[f.JobID]
	var wait time.Duration
	if ok && permanent {
		delete(a.jobs, f.JobID)
		delete(a.retries, f.JobID)
	} else if ok {
		bo, found := a.retries[f.JobID]
		if !found {
			bo = a.opts.newBackoff()
			a.retries[f.JobID] = bo
		}
		wait = bo.NextBackOff()
	}
	a.lock.Unlock()

	l := log.WithFields(log.Fields{"job_id": f.JobID, "code": f.Code, "error": f.Error})
	if !ok {
		l.Warn("[Agent] gateway error")
		return
	}

	a.emit(&Update{Kind: UpdateSubscribeFailed, JobID: f.JobID, Err: frameError(f), Retrying: !permanent})
	if permanent {
		return
	}

	l.WithField("retry_in", wait).Warn("[Agent] subscribe failed, will retry")
	a.wg.Add(1)
	go a.resubscribe(f.JobID, wait)
}

// resubscribe asks again for a job's events after wait, if it's still watched.
// A reconnect in the meantime will have asked already; asking twice is harmless.
func (a *Agent) resubscribe(jobID string, wait time.Duration) {
	defer a.wg.Done()
	if !sleep(a.ctx, wait) {
		return
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	last, ok := a.jobs[jobID]
	if ok && a.sess != nil {
		a.sess.push(&structs.ClientFrame{Op: structs.OpSubscribe, JobID: jobID, LastSeenSequence: last})
	}
}

// frameError converts an error frame to an error matching our sentinels.
func frameError(f *structs.ServerFrame) error {
	switch f.Code {
	case structs.ErrorCodeNotFound:
		return fmt.Errorf("%w job %s", ie.ErrNotFound, f.JobID)
	case structs.ErrorCodeForbidden:
		return fmt.Errorf("%w job %s", ie.ErrForbidden, f.JobID)
	case structs.ErrorCodeInvalid:
		return fmt.Errorf("%w: %s", ie.ErrInvalidArg, f.Error)
	default:
		return errors.New(f.Error)
	}
}

// advance records seq as seen, returning false if it's been seen (or the job
// isn't watched).
func (a *Agent) advance(jobID string, seq int64) bool {
	a.lock.Lock()
	defer a.lock.Unlock()

	last, ok := a.jobs[jobID]
	if !ok || seq <= last {
		return false
	}
	a.jobs[jobID] = seq
	return true
}

// resync fetches the full job state. Events the snapshot already reflects are
// not delivered afterwards.
func (a *Agent) resync(jobID string) {
	defer a.wg.Done()

	ctx, cancel := context.WithTimeout(a.ctx, a.opts.ActionTimeout)
	defer cancel()

	st, err := a.ctrl.JobStatus(ctx, "", jobID)
	if err != nil {
		a.emit(&Update{Kind: UpdateSnapshot, JobID: jobID, Err: err})
		return
	}

	a.lock.Lock()
	last, ok := a.jobs[jobID]
	if ok && st.LastSequence > last {
		a.jobs[jobID] = st.LastSequence
	}
	a.lock.Unlock()
	if !ok {
		return
	}

	a.emit(&Update{Kind: UpdateSnapshot, JobID: jobID, Snapshot: st})
}

func (a *Agent) flushLoop() {
	defer a.wg.Done()

	bo := a.opts.newBackoff()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.kick:
		}

		for {
			act := a.next()
			if act == nil {
				break
			}

			j, err := a.perform(act)
			if err != nil && !isRejection(err) {
				wait := bo.NextBackOff()
				log.WithError(err).WithFields(log.Fields{
					"job_id": act.jobID, "action": act.kind, "retry_in": wait,
				}).Warn("[Agent] action failed, will retry")
				if !sleep(a.ctx, wait) {
					return
				}
				continue
			}
			bo.Reset()
			a.pop(act)

			if err != nil {
				a.emit(&Update{Kind: UpdateActionFailed, JobID: act.jobID, Action: act.kind, Err: err})
			} else {
				a.emit(&Update{Kind: UpdateActionDone, JobID: act.jobID, Action: act.kind, Job: j})
			}
		}
	}
}

// next returns the oldest queued action, if we're connected.
func (a *Agent) next() *action {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.sess == nil || len(a.pending) == 0 {
		return nil
	}
	return a.pending[0]
}

func (a *Agent) pop(act *action) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if len(a.pending) > 0 && a.pending[0] == act {
		a.pending = a.pending[1:]
	}
}

func (a *Agent) perform(act *action) (*structs.Job, error) {
	ctx, cancel := context.WithTimeout(a.ctx, a.opts.ActionTimeout)
	defer cancel()

	switch act.kind {
	case structs.ActionPause:
		return a.ctrl.Pause(ctx, "", act.jobID)
	case structs.ActionResume:
		return a.ctrl.Resume(ctx, "", act.jobID)
	case structs.ActionCancel:
		return a.ctrl.Cancel(ctx, "", act.jobID)
	}
	return nil, fmt.Errorf("%w action %s", ie.ErrNotSupported, act.kind)
}

func isRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return errors.Is(err, ie.ErrNotSupported)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
