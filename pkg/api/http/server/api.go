package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	"github.com/voidshard/keel/pkg/api"
	"github.com/voidshard/keel/pkg/api/http/common"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

const (
	wait = 30 * time.Second
)

// Verifier turns a bearer token into the owner ID it was issued for.
type Verifier interface {
	Subject(token string) (string, error)
}

type Server struct {
	addr       string
	debug      bool
	auth       Verifier
	realtime   http.Handler
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

// NewServer returns a server for the REST API.
//
// If auth is nil requests aren't authenticated and owner checks are skipped.
// If realtime is given it's served on common.API_REALTIME (the gateway
// authenticates it's own connections).
func NewServer(addr string, debug bool, auth Verifier, realtime http.Handler) *Server {
	return &Server{
		addr:     addr,
		debug:    debug,
		auth:     auth,
		realtime: realtime,
		exit:     make(chan os.Signal, 1),
	}
}

func (s *Server) ServeForever(svc api.API) error {
	s.httpserver = &http.Server{
		Handler:      s.router(svc),
		Addr:         s.addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.WithField("addr", s.httpserver.Addr).Info("[API] listening")
		err := s.httpserver.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	signal.Notify(s.exit, os.Interrupt)
	select {
	case <-s.exit:
	case err := <-errs:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return s.httpserver.Shutdown(ctx)
}

// Handler returns the server's routes without listening; for embedding in
// another server or tests.
func (s *Server) Handler(svc api.API) http.Handler {
	return s.router(svc)
}

func (s *Server) router(svc api.API) *mux.Router {
	s.svc = svc

	router := mux.NewRouter()
	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.Handle(common.API_METRICS, metrics.Handler()).Methods(http.MethodGet)
	if s.realtime != nil {
		// websocket connections outlive the server's write timeout; the
		// gateway manages it's own deadlines
		router.Handle(common.API_REALTIME, s.realtime)
	}

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/jobs", s.Jobs).Methods(http.MethodGet, http.MethodPost)
	v1.HandleFunc("/jobs/{id}", s.Job).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{id}/{action:pause|resume|cancel|retry}", s.Action).Methods(http.MethodPost)
	if s.auth != nil {
		v1.Use(s.authMiddleware)
	}

	if s.debug {
		log.Debug("[API] adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	return router
}

func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getJobs(w, r)
	case http.MethodPost:
		s.createJob(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	cjr := &structs.CreateJobRequest{}
	err := unmarshalJson(w, r, cjr)
	if err != nil {
		return
	}

	owner := ownerFrom(r)
	if owner != "" {
		if cjr.OwnerID != "" && cjr.OwnerID != owner {
			writeError(w, fmt.Errorf("%w cannot create jobs for %s", ie.ErrForbidden, cjr.OwnerID))
			return
		}
		cjr.OwnerID = owner
	}

	resp, err := s.svc.CreateJob(r.Context(), cjr)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusCreated, resp)
}

func (s *Server) getJobs(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	owner := ownerFrom(r)
	if owner != "" {
		// users only ever see their own jobs
		q.OwnerIDs = []string{owner}
	}

	items, err := s.svc.Jobs(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	log.WithFields(log.Fields{"url": r.URL.String(), "items": len(items)}).Debug("[API] listed jobs")

	writeJson(w, http.StatusOK, items)
}

func (s *Server) Job(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.JobStatus(r.Context(), ownerFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Action(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var fn func(ctx context.Context, owner, id string) (*structs.Job, error)
	switch structs.Action(vars["action"]) {
	case structs.ActionPause:
		fn = s.svc.Pause
	case structs.ActionResume:
		fn = s.svc.Resume
	case structs.ActionCancel:
		fn = s.svc.Cancel
	case structs.ActionRetry:
		fn = s.svc.Retry
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}

	j, err := fn(r.Context(), ownerFrom(r), vars["id"])
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"job_id": vars["id"], "action": vars["action"]}).Debug("[API] action refused")
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, j)
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]bool{"ok": true})
}
