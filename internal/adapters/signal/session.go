package signal

import (
	"context"
	"sync"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gorilla/websocket"
)

// WsSession is one admitted websocket. The reader runs on the handler
// goroutine, the writer drains send on its own goroutine.
type WsSession struct {
	id       core.SessionID
	identity domain.Identity
	conn     *websocket.Conn

	send       chan core.Frame
	writerDone chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newWsSession(id core.SessionID, identity domain.Identity, conn *websocket.Conn, queue int) *WsSession {
	return &WsSession{
		id:         id,
		identity:   identity,
		conn:       conn,
		send:       make(chan core.Frame, queue),
		writerDone: make(chan struct{}),
	}
}

func (s *WsSession) ID() core.SessionID            { return s.id }
func (s *WsSession) Identity() domain.Identity     { return s.identity }
func (s *WsSession) Signal() core.SignalConnection { return s }

func (s *WsSession) TrySend(f core.Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrConnClosed
	}
	select {
	case <-s.writerDone:
		return core.ErrConnClosed
	default:
	}
	select {
	case s.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (s *WsSession) Reply(ctx context.Context, f core.Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrConnClosed
	}
	select {
	case s.send <- f:
		return nil
	case <-s.writerDone:
		return core.ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown closes the socket; the read loop then runs the teardown.
func (s *WsSession) Shutdown() {
	_ = s.conn.Close()
}

func (s *WsSession) closeQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
