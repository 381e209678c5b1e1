package core

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkeye/Rendezvous/internal/domain"
)

var (
	ErrRoomFull     = errors.New("room full")
	ErrPeerAbsent   = errors.New("no peer in room")
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is one outbound text message.
type Frame []byte

type SessionID string

func NewSessionID() SessionID { return SessionID(uuid.NewString()) }

// SignalConnection is the send half of a member's transport.
// The registry holds it without owning it; the adapter closes the transport.
type SignalConnection interface {
	// TrySend never blocks. It fails with ErrBackpressure when the queue is
	// full and ErrConnClosed once the session has been torn down.
	TrySend(Frame) error
}

// MemberSession is what the router sees of one admitted connection.
type MemberSession interface {
	ID() SessionID
	Identity() domain.Identity
	Signal() SignalConnection
	// Reply enqueues a frame for this session itself, waiting for room in
	// the queue.
	Reply(ctx context.Context, f Frame) error
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
}
