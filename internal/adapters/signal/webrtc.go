package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/domain"
	"github.com/Jaguar1-alt/MV-meet/internal/signaling"
)

// joinedIdentity snapshots the sender's identity, or reports that the
// connection has not joined a room yet.
func (ps *peerState) joinedIdentity() (domain.MemberID, string, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.state != stateJoined {
		return "", "", false
	}
	return ps.id, ps.name, true
}

// handleOffer stamps the sender's identity and display name onto the
// payload, then routes it to the target connection only. The name ride
// lets the receiver label the incoming call before any media flows.
func (ctl *Controller) handleOffer(ps *peerState, data []byte) {
	id, name, ok := ps.joinedIdentity()
	if !ok {
		log.Warn().Str("module", "signal").Msg("offer before join, dropped")
		return
	}

	var p signaling.Offer
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		return
	}
	p.Caller = id
	p.CallerName = name

	conn, ok := ctl.lookup(p.Target)
	if !ok {
		log.Debug().Str("module", "signal").Str("target", string(p.Target)).Msg("offer target unknown, dropped")
		return
	}
	ctl.sendJSON(conn, p)
}

// handleAnswer forwards the payload verbatim; the hub never reads SDP.
func (ctl *Controller) handleAnswer(ps *peerState, data []byte) {
	if _, _, ok := ps.joinedIdentity(); !ok {
		log.Warn().Str("module", "signal").Msg("answer before join, dropped")
		return
	}
	var p struct {
		Target domain.MemberID `json:"target"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		return
	}
	ctl.forward(p.Target, data)
}

// handleCandidate forwards the payload verbatim.
func (ctl *Controller) handleCandidate(ps *peerState, data []byte) {
	if _, _, ok := ps.joinedIdentity(); !ok {
		log.Warn().Str("module", "signal").Msg("candidate before join, dropped")
		return
	}
	var p struct {
		Target domain.MemberID `json:"target"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	ctl.forward(p.Target, data)
}

// forward relays raw bytes to a joined member. An unknown target is a
// silent no-op: the corresponding user-left already told senders to
// stop addressing that peer.
func (ctl *Controller) forward(target domain.MemberID, data []byte) {
	conn, ok := ctl.lookup(target)
	if !ok {
		log.Debug().Str("module", "signal").Str("target", string(target)).Msg("relay target unknown, dropped")
		return
	}
	_ = conn.TrySend(data)
}
