package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/voidshard/keel/internal/mocks/pkg/api_mock"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

const testJobID = "6a1f3c2e-0b7d-4f5e-9c8a-1d2e3f4a5b6c"

type fakeVerifier struct{}

func (fakeVerifier) Subject(token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", fmt.Errorf("%w bad token", ie.ErrUnauthorized)
	}
	return strings.TrimPrefix(token, "token-"), nil
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	s := NewServer(":0", false, fakeVerifier{}, nil)
	h := s.router(api_mock.NewMockAPI(gomock.NewController(t)))

	w := do(t, h, http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := NewServer(":0", false, fakeVerifier{}, nil)
	h := s.router(api_mock.NewMockAPI(gomock.NewController(t)))

	cases := []struct {
		Name  string
		Token string
	}{
		{"None", ""},
		{"Bad", "nope"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, "/api/v1/jobs", c.Token, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCreateJob(t *testing.T) {
	cases := []struct {
		Name        string
		Body        string
		Auth        bool
		ExpectOwner string
		ExpectCode  int
	}{
		{"OwnerFromToken", `{"type":"research","params":{"q":"go"}}`, true, "alice", http.StatusCreated},
		{"OwnerMatchesToken", `{"type":"research","owner_id":"alice"}`, true, "alice", http.StatusCreated},
		{"OwnerMismatch", `{"type":"research","owner_id":"bob"}`, true, "", http.StatusForbidden},
		{"NoAuthOwnerFromBody", `{"type":"research","owner_id":"bob"}`, false, "bob", http.StatusCreated},
		{"UnknownField", `{"type":"research","priority":1}`, true, "", http.StatusBadRequest},
		{"BadJson", `{"type":`, true, "", http.StatusBadRequest},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			svc := api_mock.NewMockAPI(gomock.NewController(t))
			var s *Server
			if c.Auth {
				s = NewServer(":0", true, fakeVerifier{}, nil)
			} else {
				s = NewServer(":0", true, nil, nil)
			}

			if c.ExpectOwner != "" {
				svc.EXPECT().CreateJob(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ interface{}, cjr *structs.CreateJobRequest) (*structs.CreateJobResponse, error) {
						assert.Equal(t, c.ExpectOwner, cjr.OwnerID)
						assert.Equal(t, "research", cjr.Type)
						return &structs.CreateJobResponse{JobID: testJobID}, nil
					},
				)
			}

			w := do(t, s.router(svc), http.MethodPost, "/api/v1/jobs", "token-alice", c.Body)

			assert.Equal(t, c.ExpectCode, w.Code)
			if c.ExpectCode == http.StatusCreated {
				out := &structs.CreateJobResponse{}
				assert.Nil(t, json.Unmarshal(w.Body.Bytes(), out))
				assert.Equal(t, testJobID, out.JobID)
			}
		})
	}
}

func TestListJobsScopedToOwner(t *testing.T) {
	svc := api_mock.NewMockAPI(gomock.NewController(t))
	s := NewServer(":0", false, fakeVerifier{}, nil)

	svc.EXPECT().Jobs(gomock.Any(), gomock.Any()).DoAndReturn(func(_ interface{}, q *structs.Query) ([]*structs.Job, error) {
		assert.Equal(t, []string{"alice"}, q.OwnerIDs)
		assert.Equal(t, []structs.State{structs.RUNNING, structs.PAUSED}, q.States)
		assert.Equal(t, 5, q.Limit)
		return []*structs.Job{{ID: testJobID}}, nil
	})

	w := do(t, s.router(svc), http.MethodGet, "/api/v1/jobs?owner_id=bob&states=running&states=paused&limit=5", "token-alice", "")

	assert.Equal(t, http.StatusOK, w.Code)
	out := []*structs.Job{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, len(out))
}

func TestListJobsBadQuery(t *testing.T) {
	s := NewServer(":0", false, nil, nil)
	h := s.router(api_mock.NewMockAPI(gomock.NewController(t)))

	for _, q := range []string{"limit=x", "offset=y", "states=exploded", "job_ids=nope"} {
		t.Run(q, func(t *testing.T) {
			w := do(t, h, http.MethodGet, "/api/v1/jobs?"+q, "", "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestJobStatus(t *testing.T) {
	svc := api_mock.NewMockAPI(gomock.NewController(t))
	s := NewServer(":0", false, fakeVerifier{}, nil)

	svc.EXPECT().JobStatus(gomock.Any(), "alice", testJobID).Return(&structs.JobStatusResponse{
		Job:          &structs.Job{ID: testJobID, State: structs.PAUSED},
		LastSequence: 12,
		Resumable:    true,
	}, nil)

	w := do(t, s.router(svc), http.MethodGet, "/api/v1/jobs/"+testJobID, "token-alice", "")

	assert.Equal(t, http.StatusOK, w.Code)
	out := &structs.JobStatusResponse{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), out))
	assert.Equal(t, int64(12), out.LastSequence)
	assert.True(t, out.Resumable)
}

func TestActions(t *testing.T) {
	cases := []struct {
		Action     string
		Err        error
		ExpectCode int
	}{
		{"pause", nil, http.StatusOK},
		{"resume", fmt.Errorf("%w: %w", ie.ErrNoResumableCheckpoint, ie.ErrCheckpointExpired), http.StatusConflict},
		{"cancel", fmt.Errorf("%w cannot cancel job in state completed", ie.ErrInvalidTransition), http.StatusConflict},
		{"retry", fmt.Errorf("%w job x is not owned by alice", ie.ErrForbidden), http.StatusForbidden},
		{"pause", fmt.Errorf("%w job x", ie.ErrNotFound), http.StatusNotFound},
		{"cancel", fmt.Errorf("db down"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%s-%d", c.Action, c.ExpectCode), func(t *testing.T) {
			svc := api_mock.NewMockAPI(gomock.NewController(t))
			s := NewServer(":0", false, fakeVerifier{}, nil)

			var ret *structs.Job
			if c.Err == nil {
				ret = &structs.Job{ID: testJobID, State: structs.PAUSED}
			}
			switch c.Action {
			case "pause":
				svc.EXPECT().Pause(gomock.Any(), "alice", testJobID).Return(ret, c.Err)
			case "resume":
				svc.EXPECT().Resume(gomock.Any(), "alice", testJobID).Return(ret, c.Err)
			case "cancel":
				svc.EXPECT().Cancel(gomock.Any(), "alice", testJobID).Return(ret, c.Err)
			case "retry":
				svc.EXPECT().Retry(gomock.Any(), "alice", testJobID).Return(ret, c.Err)
			}

			w := do(t, s.router(svc), http.MethodPost, "/api/v1/jobs/"+testJobID+"/"+c.Action, "token-alice", "")

			assert.Equal(t, c.ExpectCode, w.Code)
		})
	}
}

func TestUnknownAction(t *testing.T) {
	s := NewServer(":0", false, fakeVerifier{}, nil)
	h := s.router(api_mock.NewMockAPI(gomock.NewController(t)))

	w := do(t, h, http.MethodPost, "/api/v1/jobs/"+testJobID+"/explode", "token-alice", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRealtimeMounted(t *testing.T) {
	called := false
	rt := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	s := NewServer(":0", false, fakeVerifier{}, rt)
	h := s.router(api_mock.NewMockAPI(gomock.NewController(t)))

	w := do(t, h, http.MethodGet, "/ws", "", "")

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
