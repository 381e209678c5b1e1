package orch

import (
	"context"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// Relay forwards raw to the other member of the room. Delivery is best
// effort: a full queue or a peer that has just left drops the frame and the
// sender is not told.
func (o *Orchestrator) Relay(ctx context.Context, sess core.MemberSession, name domain.RoomName, raw core.Frame) {
	otherID, _, ok := o.Rooms.FindOtherMember(name, sess.ID())
	if !ok {
		o.replyError(ctx, sess, domain.MsgNoPeer)
		return
	}
	out, ok := o.Rooms.OutboundOf(name, otherID)
	if !ok {
		log.Debug().Str("module", "orch").Str("room", string(name)).Str("to", string(otherID)).Msg("peer gone, relay dropped")
		return
	}
	if err := out.TrySend(raw); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("room", string(name)).Str("to", string(otherID)).Msg("relay dropped")
		return
	}
	log.Debug().Str("module", "orch").Str("room", string(name)).Str("from", string(sess.ID())).Str("to", string(otherID)).Msg("relayed")
}
