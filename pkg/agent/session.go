package agent

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voidshard/keel/pkg/structs"
)

// session is one connection to the gateway. Frames are written only by
// writeLoop.
type session struct {
	ws   *websocket.Conn
	send chan *structs.ClientFrame
	done chan struct{}
	once sync.Once
}

func newSession(ws *websocket.Conn, buffer int) *session {
	return &session{
		ws:   ws,
		send: make(chan *structs.ClientFrame, buffer),
		done: make(chan struct{}),
	}
}

// push queues a frame. If the queue is full the connection is dropped; we'll
// resubscribe everything on reconnect anyway.
func (s *session) push(f *structs.ClientFrame) {
	select {
	case <-s.done:
	case s.send <- f:
	default:
		s.close()
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.ws.Close()
	})
}

func (s *session) writeLoop(wait time.Duration) {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.send:
			s.ws.SetWriteDeadline(time.Now().Add(wait))
			err := s.ws.WriteJSON(f)
			if err != nil {
				s.close()
				return
			}
		}
	}
}
