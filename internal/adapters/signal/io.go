package signal

import (
	"context"
	"time"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) serve(ctx context.Context, s *WsSession) {
	go ctl.writePump(s)

	stop := context.AfterFunc(ctx, s.Shutdown)
	defer stop()

	ctl.readPump(ctx, s)
	ctl.teardown(s)
}

// teardown leaves every room before closing the queue, so nothing can be
// relayed to this session once the writer has finished.
func (ctl *SignalWSController) teardown(s *WsSession) {
	ctl.Orch.Leave(s.id)
	s.closeQueue()
	<-s.writerDone
	_ = s.conn.Close()
	log.Info().Str("module", "signal").Str("sid", string(s.id)).Msg("session closed")
}

func (ctl *SignalWSController) writePump(s *WsSession) {
	defer close(s.writerDone)

	for data := range s.send {
		if err := s.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("writePump set deadline")
			_ = s.conn.Close()
			return
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Info().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("writePump write error")
			_ = s.conn.Close()
			return
		}
	}

	// Queue closed by teardown.
	_ = s.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (ctl *SignalWSController) readPump(ctx context.Context, s *WsSession) {
	if ctl.opts.ReadLimit > 0 {
		s.conn.SetReadLimit(ctl.opts.ReadLimit)
	}

	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("readPump read error")
			} else {
				log.Info().Str("module", "signal").Str("sid", string(s.id)).Msg("readPump closing")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		sig, err := domain.DecodeSignal(data)
		if err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("dropping frame")
			continue
		}
		ctl.Orch.Dispatch(ctx, s, sig, data)
	}
}
