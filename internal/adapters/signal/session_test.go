package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Rendezvous/internal/core"
)

// The queue operations never touch the socket, so a nil conn is enough.
func newQueueOnlySession(queue int) *WsSession {
	return newWsSession("sid", "alice", nil, queue)
}

func TestWsSession_TrySendBackpressure(t *testing.T) {
	s := newQueueOnlySession(2)

	require.NoError(t, s.TrySend(core.Frame("1")))
	require.NoError(t, s.TrySend(core.Frame("2")))
	assert.ErrorIs(t, s.TrySend(core.Frame("3")), core.ErrBackpressure)

	assert.Equal(t, core.Frame("1"), <-s.send)
	assert.Equal(t, core.Frame("2"), <-s.send)
}

func TestWsSession_ClosedQueueRejectsSends(t *testing.T) {
	s := newQueueOnlySession(2)
	require.NoError(t, s.TrySend(core.Frame("queued")))

	s.closeQueue()
	s.closeQueue()

	assert.ErrorIs(t, s.TrySend(core.Frame("late")), core.ErrConnClosed)
	assert.ErrorIs(t, s.Reply(context.Background(), core.Frame("late")), core.ErrConnClosed)

	// Frames queued before the close are still drained by the writer.
	var got []core.Frame
	for f := range s.send {
		got = append(got, f)
	}
	assert.Equal(t, []core.Frame{core.Frame("queued")}, got)
}

func TestWsSession_WriterGoneRejectsSends(t *testing.T) {
	s := newQueueOnlySession(1)
	require.NoError(t, s.TrySend(core.Frame("fills the queue")))
	close(s.writerDone)

	assert.ErrorIs(t, s.TrySend(core.Frame("x")), core.ErrConnClosed)

	done := make(chan error, 1)
	go func() { done <- s.Reply(context.Background(), core.Frame("x")) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, core.ErrConnClosed)
	case <-time.After(time.Second):
		t.Fatal("Reply blocked after the writer exited")
	}
}

func TestWsSession_ReplyWaitsForRoom(t *testing.T) {
	s := newQueueOnlySession(1)
	require.NoError(t, s.TrySend(core.Frame("first")))

	done := make(chan error, 1)
	go func() { done <- s.Reply(context.Background(), core.Frame("second")) }()

	select {
	case <-done:
		t.Fatal("Reply returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, core.Frame("first"), <-s.send)
	require.NoError(t, <-done)
	assert.Equal(t, core.Frame("second"), <-s.send)
}

func TestWsSession_ReplyHonoursContext(t *testing.T) {
	s := newQueueOnlySession(1)
	require.NoError(t, s.TrySend(core.Frame("first")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Reply(ctx, core.Frame("second")), context.DeadlineExceeded)
}
