// Package app drives the client side of signaling: one peer session
// per remote participant, created and torn down in lockstep with relay
// events, with media track replacement that never renegotiates.
package app

import (
	"context"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/domain"
	"github.com/Jaguar1-alt/MV-meet/internal/signaling"
)

// RelaySender is the slice of the relay client the manager needs.
type RelaySender interface {
	SendOffer(target domain.MemberID, sdp string) error
	SendAnswer(target domain.MemberID, sdp string) error
	SendCandidate(target domain.MemberID, ci webrtc.ICECandidateInit) error
}

// LinkFactory creates the negotiation primitive for one remote peer.
type LinkFactory func(peer domain.MemberID) (core.MediaConnection, error)

// Manager reacts to relay events and owns the ConnectionRegistry.
// Negotiation faults degrade only the affected session; the rest of
// the mesh keeps operating.
type Manager struct {
	relay    RelaySender
	newLink  LinkFactory
	media    *LocalMediaState
	sessions *ConnectionRegistry

	onRemoteTrack func(peer domain.MemberID, name string, track *webrtc.TrackRemote)
	onPeerGone    func(peer domain.MemberID)
	onChat        func(senderName, message string)
}

func NewManager(relay RelaySender, newLink LinkFactory, media *LocalMediaState) *Manager {
	return &Manager{
		relay:    relay,
		newLink:  newLink,
		media:    media,
		sessions: NewConnectionRegistry(),
	}
}

func (m *Manager) Sessions() *ConnectionRegistry { return m.sessions }

// OnRemoteTrack registers the UI callback for inbound media.
func (m *Manager) OnRemoteTrack(fn func(peer domain.MemberID, name string, track *webrtc.TrackRemote)) {
	m.onRemoteTrack = fn
}

// OnPeerGone fires after a departed peer's session is fully torn down.
func (m *Manager) OnPeerGone(fn func(peer domain.MemberID)) {
	m.onPeerGone = fn
}

func (m *Manager) OnChat(fn func(senderName, message string)) {
	m.onChat = fn
}

// Run consumes the relay event stream until it closes or ctx ends,
// then tears down every remaining session.
func (m *Manager) Run(ctx context.Context, events <-chan signaling.Event) {
	defer m.teardownAll()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Handle(ev)
		}
	}
}

// Handle dispatches one relay event.
func (m *Manager) Handle(ev signaling.Event) {
	switch e := ev.(type) {
	case signaling.AllUsers:
		m.handleAllUsers(e)
	case signaling.UserJoined:
		log.Info().Str("module", "app.manager").Str("peer", string(e.ID)).Str("name", e.Name).Msg("peer joined, awaiting their offer")
	case signaling.Offer:
		m.handleOffer(e)
	case signaling.Answer:
		m.handleAnswer(e)
	case signaling.Candidate:
		m.handleCandidate(e)
	case signaling.UserLeft:
		m.handleUserLeft(e.ID)
	case signaling.RoomExpired:
		log.Error().Str("module", "app.manager").Str("reason", e.Message).Msg("join rejected")
	case signaling.ChatMessage:
		if m.onChat != nil {
			m.onChat(e.SenderName, e.Message)
		}
	}
}

// handleAllUsers is the caller side of the protocol: the joiner offers
// to every already-present member, each negotiation independent.
func (m *Manager) handleAllUsers(e signaling.AllUsers) {
	for _, u := range e.Users {
		s, err := m.createSession(u.ID, u.Name)
		if err != nil {
			log.Error().Err(err).Str("module", "app.manager").Str("peer", string(u.ID)).Msg("session create failed")
			continue
		}
		offer, err := s.link.CreateAndSetOffer()
		if err != nil {
			log.Error().Err(err).Str("module", "app.manager").Str("peer", string(u.ID)).Msg("offer create failed")
			continue
		}
		if err := m.relay.SendOffer(u.ID, offer.SDP); err != nil {
			log.Error().Err(err).Str("module", "app.manager").Str("peer", string(u.ID)).Msg("offer send failed")
			continue
		}
		s.markOfferSent()
	}
}

// handleOffer is the callee side: build the session, apply the remote
// offer, answer back. An offer from a peer that already has a session
// replaces it; the registry closes the old one first.
func (m *Manager) handleOffer(e signaling.Offer) {
	s, err := m.createSession(e.Caller, e.CallerName)
	if err != nil {
		log.Error().Err(err).Str("module", "app.manager").Str("peer", string(e.Caller)).Msg("session create failed")
		return
	}
	answer, err := s.link.ApplyOfferAndCreateAnswer(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  e.SDP,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.manager").Str("peer", string(e.Caller)).Msg("apply offer failed, session degraded")
		return
	}
	s.markRemoteReady()
	if err := m.relay.SendAnswer(e.Caller, answer.SDP); err != nil {
		log.Error().Err(err).Str("module", "app.manager").Str("peer", string(e.Caller)).Msg("answer send failed")
	}
}

func (m *Manager) handleAnswer(e signaling.Answer) {
	s, ok := m.sessions.Get(e.Answerer)
	if !ok {
		log.Debug().Str("module", "app.manager").Str("peer", string(e.Answerer)).Msg("answer for unknown session, dropped")
		return
	}
	if !s.canApplyAnswer() {
		log.Warn().Str("module", "app.manager").Str("peer", string(e.Answerer)).Msg("answer out of order, dropped")
		return
	}
	if err := s.link.ApplyAnswer(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  e.SDP,
	}); err != nil {
		log.Error().Err(err).Str("module", "app.manager").Str("peer", string(e.Answerer)).Msg("apply answer failed, session degraded")
		return
	}
	s.markRemoteReady()
}

// handleCandidate applies a trickled candidate. Candidates for unknown
// sessions, or arriving before the remote description, are stale and
// dropped, never queued.
func (m *Manager) handleCandidate(e signaling.Candidate) {
	s, ok := m.sessions.Get(e.Sender)
	if !ok {
		log.Debug().Str("module", "app.manager").Str("peer", string(e.Sender)).Msg("candidate for unknown session, dropped")
		return
	}
	if !s.canApplyCandidate() {
		log.Debug().Str("module", "app.manager").Str("peer", string(e.Sender)).Msg("candidate before remote description, dropped")
		return
	}
	if err := s.link.AddICECandidate(e.Candidate); err != nil {
		log.Error().Err(err).Str("module", "app.manager").Str("peer", string(e.Sender)).Msg("add candidate failed")
	}
}

// handleUserLeft closes the link before the session leaves the
// registry and before the UI hears about it, so no further event can
// dispatch against a torn-down session.
func (m *Manager) handleUserLeft(id domain.MemberID) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return
	}
	s.link.Close()
	m.sessions.Remove(id)
	log.Info().Str("module", "app.manager").Str("peer", string(id)).Msg("peer left, session closed")
	if m.onPeerGone != nil {
		m.onPeerGone(id)
	}
}

// createSession wires a fresh link for one peer: local tracks attached,
// inbound-track and candidate callbacks bound, registered atomically.
func (m *Manager) createSession(id domain.MemberID, name string) (*PeerSession, error) {
	link, err := m.newLink(id)
	if err != nil {
		return nil, err
	}
	for _, t := range m.media.Tracks() {
		if _, err := link.AddLocalTrack(t); err != nil {
			link.Close()
			return nil, err
		}
	}
	s := newPeerSession(id, name, link)
	link.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		s.setRemoteTrack(track)
		if m.onRemoteTrack != nil {
			m.onRemoteTrack(id, name, track)
		}
	})
	link.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		if err := m.relay.SendCandidate(id, ci); err != nil {
			log.Warn().Err(err).Str("module", "app.manager").Str("peer", string(id)).Msg("candidate send failed")
		}
	})
	m.sessions.Put(s)
	return s, nil
}

// StartScreenShare swaps the outgoing video of every open session to
// the display track. Session count is untouched and no offer is sent.
func (m *Manager) StartScreenShare() error {
	track, err := m.media.StartScreenShare()
	if err != nil {
		return err
	}
	m.replaceVideoEverywhere(track)
	return nil
}

// StopScreenShare restores the camera track captured before sharing.
func (m *Manager) StopScreenShare() error {
	track, err := m.media.StopScreenShare()
	if err != nil {
		return err
	}
	m.replaceVideoEverywhere(track)
	return nil
}

// SwitchCamera moves every open session to a different camera, unless
// a screen share currently overrides the outgoing video.
func (m *Manager) SwitchCamera(c core.Constraints) error {
	track, err := m.media.SwitchCamera(c)
	if err != nil {
		return err
	}
	if track != nil {
		m.replaceVideoEverywhere(track)
	}
	return nil
}

func (m *Manager) replaceVideoEverywhere(track webrtc.TrackLocal) {
	for _, s := range m.sessions.Snapshot() {
		if err := s.link.ReplaceVideoTrack(track); err != nil {
			log.Error().Err(err).Str("module", "app.manager").Str("peer", string(s.ID)).Msg("video replace failed")
		}
	}
}

func (m *Manager) teardownAll() {
	for _, s := range m.sessions.Snapshot() {
		s.link.Close()
		m.sessions.Remove(s.ID)
	}
}
