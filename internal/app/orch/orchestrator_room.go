package orch

import (
	"context"
	"errors"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join puts sess into the room. A session that is already in another room
// stays there too.
func (o *Orchestrator) Join(ctx context.Context, sess core.MemberSession, name domain.RoomName) {
	err := o.Rooms.Join(name, sess.ID(), sess.Identity(), sess.Signal())
	switch {
	case err == nil:
		log.Info().Str("module", "orch").Str("sid", string(sess.ID())).Str("room", string(name)).Msg("joined")
	case errors.Is(err, core.ErrRoomFull):
		o.replyError(ctx, sess, domain.MsgRoomFull)
	default:
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sess.ID())).Str("room", string(name)).Msg("join")
	}
}
