package rtc

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

var ErrNoVideoSender = errors.New("no outgoing video sender")

// PeerLink wraps one pion PeerConnection for one remote peer and
// implements core.MediaConnection.
type PeerLink struct {
	pc   *webrtc.PeerConnection
	peer domain.MemberID

	onICE   func(webrtc.ICECandidateInit)
	onTrack func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)

	mu     sync.Mutex
	closed bool
}

// Configuration builds a pion configuration from STUN URLs.
func Configuration(stunServers []string) webrtc.Configuration {
	if len(stunServers) == 0 {
		stunServers = []string{"stun:stun.l.google.com:19302"}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: stunServers}},
	}
}

func NewPeerLink(cfg webrtc.Configuration, peer domain.MemberID) (*PeerLink, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	l := &PeerLink{pc: pc, peer: peer}

	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("peer", string(peer)).Str("ice_state", s.String()).Msg("ICE state")
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("peer", string(peer)).Str("peer_state", s.String()).Msg("peer state")
	})
	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		l.mu.Lock()
		fn := l.onICE
		l.mu.Unlock()
		if fn != nil {
			fn(cand.ToJSON())
		}
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "rtc").
			Str("peer", string(peer)).
			Str("kind", track.Kind().String()).
			Str("stream_id", track.StreamID()).
			Msg("remote track")
		l.mu.Lock()
		fn := l.onTrack
		l.mu.Unlock()
		if fn != nil {
			fn(track, receiver)
		}
	})

	return l, nil
}

func (l *PeerLink) CreateAndSetOffer() (*webrtc.SessionDescription, error) {
	offer, err := l.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	if err := l.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	return l.pc.LocalDescription(), nil
}

func (l *PeerLink) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := l.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := l.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err := l.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return l.pc.LocalDescription(), nil
}

func (l *PeerLink) ApplyAnswer(answer webrtc.SessionDescription) error {
	return l.pc.SetRemoteDescription(answer)
}

func (l *PeerLink) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return l.pc.AddICECandidate(ci)
}

func (l *PeerLink) AddLocalTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error) {
	return l.pc.AddTrack(track)
}

// ReplaceVideoTrack swaps the outgoing video in place. The remote side
// sees an in-band track change, no renegotiation round-trip.
func (l *PeerLink) ReplaceVideoTrack(track webrtc.TrackLocal) error {
	for _, s := range l.pc.GetSenders() {
		if s.Track() != nil && s.Track().Kind() == webrtc.RTPCodecTypeVideo {
			return s.ReplaceTrack(track)
		}
	}
	return ErrNoVideoSender
}

func (l *PeerLink) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onICE = fn
}

func (l *PeerLink) OnTrack(fn func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTrack = fn
}

func (l *PeerLink) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()
	if err := l.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "rtc").Str("peer", string(l.peer)).Msg("close error")
	} else {
		log.Info().Str("module", "rtc").Str("peer", string(l.peer)).Msg("closed")
	}
}

func (l *PeerLink) IsClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

var _ core.MediaConnection = (*PeerLink)(nil)
