package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/domain"
	"github.com/Jaguar1-alt/MV-meet/internal/signaling"
)

// handleJoin admits a connection into a room. On success the joiner
// gets the current membership as all-users and everyone else gets
// user-joined. A TTL-expired room rejects the join with room-expired
// sent to the joiner only; the connection stays usable for another room.
func (ctl *Controller) handleJoin(ps *peerState, data []byte) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.state != stateConnected {
		log.Warn().Str("module", "signal").Str("member", string(ps.id)).Msg("join while already joined")
		return
	}

	var p signaling.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	id := p.ID
	if id == "" {
		id = ps.token
	}
	if id == "" {
		id = domain.NewMemberID()
	}

	member, err := domain.NewMember(id, p.Name, p.Room)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("invalid member name")
		member = &domain.Member{ID: id, Name: "Guest", Room: p.Room}
	}

	others, err := ctl.Rooms.Join(p.Room, member.ID, member.Name)
	if errors.Is(err, domain.ErrRoomExpired) {
		log.Info().Str("module", "signal").Str("room", string(p.Room)).Msg("join rejected, room expired")
		ctl.sendJSON(ps.conn, signaling.RoomExpired{
			Type:    signaling.EventRoomExpired,
			Message: "this room has expired, please create a new one",
		})
		return
	}

	ps.id = member.ID
	ps.name = member.Name
	ps.room = p.Room
	ps.state = stateJoined

	ctl.mu.Lock()
	ctl.peers[member.ID] = ps
	ctl.mu.Unlock()

	log.Info().Str("module", "signal").Str("member", string(member.ID)).Str("room", string(p.Room)).Str("name", member.Name).Msg("joined")

	ctl.sendJSON(ps.conn, signaling.AllUsers{
		Type:  signaling.EventAllUsers,
		Users: others,
	})

	joined := signaling.UserJoined{
		Type: signaling.EventUserJoined,
		ID:   member.ID,
		Name: member.Name,
	}
	for _, other := range others {
		if conn, ok := ctl.lookup(other.ID); ok {
			ctl.sendJSON(conn, joined)
		}
	}
}

// disconnect is the implicit full departure: the remainder of the room
// hears user-left before membership is removed, so nobody keeps
// addressing a dead connection.
func (ctl *Controller) disconnect(ps *peerState) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.state != stateJoined {
		ps.state = stateLeft
		return
	}
	ps.state = stateLeft

	left := signaling.UserLeft{Type: signaling.EventUserLeft, ID: ps.id}
	for _, other := range ctl.Rooms.ListOtherMembers(ps.room, ps.id) {
		if conn, ok := ctl.lookup(other.ID); ok {
			ctl.sendJSON(conn, left)
		}
	}

	ctl.Rooms.RemoveMember(ps.id)
	ctl.mu.Lock()
	delete(ctl.peers, ps.id)
	ctl.mu.Unlock()
	log.Info().Str("module", "signal").Str("member", string(ps.id)).Str("room", string(ps.room)).Msg("left")
}
