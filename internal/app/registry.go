package app

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

type member struct {
	identity domain.Identity
	out      core.SignalConnection
}

// Registry is the room table. A single mutex guards every room, so filling a
// room and notifying its members happen as one step.
type Registry struct {
	mu    sync.Mutex
	rooms map[domain.RoomName]map[core.SessionID]member
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomName]map[core.SessionID]member),
	}
}

// Join adds sid to the room, creating the room on first use. When the join
// fills the room both members receive a peers notification.
func (r *Registry) Join(
	name domain.RoomName,
	sid core.SessionID,
	identity domain.Identity,
	out core.SignalConnection,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[name]
	if !ok {
		members = make(map[core.SessionID]member, domain.RoomCapacity)
		r.rooms[name] = members
	}
	if len(members) >= domain.RoomCapacity {
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(name)).Msg("room full")
		return core.ErrRoomFull
	}

	var peers []domain.Identity
	for _, m := range members {
		peers = append(peers, m.identity)
	}
	members[sid] = member{identity: identity, out: out}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(name)).Str("user", string(identity)).Int("count", len(members)).Msg("member joined")

	if len(members) == domain.RoomCapacity {
		peers = append(peers, identity)
		r.notifyPeers(name, members, peers)
	}
	return nil
}

// notifyPeers must be called with r.mu held.
func (r *Registry) notifyPeers(name domain.RoomName, members map[core.SessionID]member, peers []domain.Identity) {
	data, err := json.Marshal(domain.NewPeersMessage(peers))
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("peers marshal")
		return
	}
	for sid, m := range members {
		if err := m.out.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(name)).Msg("peers notification dropped")
		}
	}
}

// FindOtherMember returns the member of the room that is not sid.
func (r *Registry) FindOtherMember(name domain.RoomName, sid core.SessionID) (core.SessionID, domain.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.rooms[name] {
		if id != sid {
			return id, m.identity, true
		}
	}
	return "", "", false
}

func (r *Registry) OutboundOf(name domain.RoomName, sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rooms[name][sid]
	if !ok {
		return nil, false
	}
	return m.out, true
}

// Leave removes sid from every room and drops rooms left empty.
func (r *Registry) Leave(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, members := range r.rooms {
		if _, ok := members[sid]; !ok {
			continue
		}
		delete(members, sid)
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(name)).Msg("member left")
		if len(members) == 0 {
			delete(r.rooms, name)
			log.Info().Str("module", "app.registry").Str("room", string(name)).Msg("room removed")
		}
	}
}

func (r *Registry) MemberCount(name domain.RoomName) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[name])
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for name, members := range r.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
