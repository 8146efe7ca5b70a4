package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/signaling"
)

// handleChat is an orthogonal pass-through: the message goes to every
// member of the room, the sender included. It does not participate in
// the join state machine.
func (ctl *Controller) handleChat(ps *peerState, data []byte) {
	var p signaling.ChatMessage
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}

	out := signaling.ChatMessage{
		Type:       signaling.EventReceiveChat,
		Message:    p.Message,
		SenderName: p.SenderName,
	}
	for _, m := range ctl.Rooms.ListMembers(p.Room) {
		if conn, ok := ctl.lookup(m.ID); ok {
			ctl.sendJSON(conn, out)
		}
	}
}
