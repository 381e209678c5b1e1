package orch

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator routes decoded signals to the room registry. It keeps no
// state of its own.
type Orchestrator struct {
	Rooms *app.Registry
}

func New(rooms *app.Registry) *Orchestrator {
	return &Orchestrator{Rooms: rooms}
}

// Dispatch handles one signal from sess. raw is the frame exactly as the
// client sent it and is what gets relayed.
func (o *Orchestrator) Dispatch(ctx context.Context, sess core.MemberSession, sig domain.Signal, raw core.Frame) {
	switch m := sig.(type) {
	case domain.JoinRoom:
		o.Join(ctx, sess, m.Room)
	case domain.Offer:
		o.Relay(ctx, sess, m.Room, raw)
	case domain.Answer:
		o.Relay(ctx, sess, m.Room, raw)
	case domain.IceCandidate:
		o.Relay(ctx, sess, m.Room, raw)
	default:
		log.Warn().Str("module", "orch").Str("sid", string(sess.ID())).Msgf("unhandled signal %T", sig)
	}
}

// Leave drops the session from every room. Called on teardown.
func (o *Orchestrator) Leave(sid core.SessionID) {
	o.Rooms.Leave(sid)
}

func (o *Orchestrator) replyError(ctx context.Context, sess core.MemberSession, msg string) {
	data, err := json.Marshal(domain.NewErrorMessage(msg))
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("error marshal")
		return
	}
	if err := sess.Reply(ctx, data); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sess.ID())).Msg("error reply not queued")
	}
}
