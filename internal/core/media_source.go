package core

import (
	"errors"

	"github.com/pion/webrtc/v4"
)

var (
	ErrPermissionDenied  = errors.New("media permission denied")
	ErrDeviceUnavailable = errors.New("media device unavailable")
	ErrUserCancelled     = errors.New("capture cancelled by user")
)

// Constraints describe one rung of the acquisition fallback ladder.
// Zero width/height means "whatever the device gives".
type Constraints struct {
	Width  int
	Height int
	Facing string
	Audio  bool
}

// VideoSourceInfo describes one switchable camera.
type VideoSourceInfo struct {
	DeviceID string
	Label    string
}

// LocalStream is a captured pair of outgoing tracks. Audio may be nil
// for display capture.
type LocalStream struct {
	Audio webrtc.TrackLocal
	Video webrtc.TrackLocal
}

// MediaSource is the local capture capability. The actual device or
// display primitives live outside this core; implementations only have
// to hand back sendable tracks.
type MediaSource interface {
	Acquire(Constraints) (*LocalStream, error)
	EnumerateVideoSources() ([]VideoSourceInfo, error)
	CaptureDisplay() (*LocalStream, error)
}
