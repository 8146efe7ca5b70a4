package core

import (
	"github.com/pion/webrtc/v4"
)

// MediaConnection is the negotiation primitive one peer session drives.
// Implementations wrap a single PeerConnection.
type MediaConnection interface {
	// CreateAndSetOffer generates a local offer and installs it as the
	// local description.
	CreateAndSetOffer() (*webrtc.SessionDescription, error)
	// ApplyOfferAndCreateAnswer installs a remote offer and returns the
	// generated, locally-set answer.
	ApplyOfferAndCreateAnswer(webrtc.SessionDescription) (*webrtc.SessionDescription, error)
	// ApplyAnswer installs a remote answer.
	ApplyAnswer(webrtc.SessionDescription) error
	// AddICECandidate applies a trickled remote candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	// AddLocalTrack attaches an outgoing track.
	AddLocalTrack(webrtc.TrackLocal) (*webrtc.RTPSender, error)
	// ReplaceVideoTrack swaps the outgoing video track in place, without
	// a renegotiation round-trip.
	ReplaceVideoTrack(webrtc.TrackLocal) error
	// OnICECandidate sets a callback for newly gathered local candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnTrack sets a callback invoked when a remote track arrives.
	OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver))
	// Close stops all underlying media resources.
	Close()
	IsClosed() bool
}
