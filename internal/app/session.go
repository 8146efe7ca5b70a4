package app

import (
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

// PeerSession is the negotiation state for one remote participant.
// The ordering guards keep relay events honest: an answer only applies
// after our offer went out, and candidates only after a remote
// description is in place.
type PeerSession struct {
	ID   domain.MemberID
	Name string

	link core.MediaConnection

	mu          sync.Mutex
	offerSent   bool
	remoteReady bool
	remoteTrack *webrtc.TrackRemote
}

func newPeerSession(id domain.MemberID, name string, link core.MediaConnection) *PeerSession {
	return &PeerSession{ID: id, Name: name, link: link}
}

func (s *PeerSession) Link() core.MediaConnection { return s.link }

func (s *PeerSession) markOfferSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offerSent = true
}

func (s *PeerSession) markRemoteReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteReady = true
}

// canApplyAnswer is true while this session is awaiting the answer to
// an offer it already sent.
func (s *PeerSession) canApplyAnswer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offerSent && !s.remoteReady
}

// canApplyCandidate is true once a remote description is installed.
func (s *PeerSession) canApplyCandidate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteReady
}

func (s *PeerSession) setRemoteTrack(t *webrtc.TrackRemote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteTrack = t
}

// RemoteTrack is the latest known remote media track, nil until the
// first one arrives.
func (s *PeerSession) RemoteTrack() *webrtc.TrackRemote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteTrack
}
