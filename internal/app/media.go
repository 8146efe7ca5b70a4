package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
)

var ErrNotSharing = errors.New("screen share not active")

// DefaultConstraintLadder mirrors the progressive fallback used at
// capture time: 720p first, then a plain front-facing request, then
// anything the device will give.
func DefaultConstraintLadder() []core.Constraints {
	return []core.Constraints{
		{Width: 1280, Height: 720, Facing: "user", Audio: true},
		{Facing: "user", Audio: true},
		{Audio: true},
	}
}

// LocalMediaState owns the local capture state: the audio track, the
// camera video track, and, while sharing, the screen track that
// logically replaces it. Exactly one outgoing video is active at a
// time, camera or screen, never both.
type LocalMediaState struct {
	source core.MediaSource

	mu      sync.Mutex
	audio   webrtc.TrackLocal
	camera  webrtc.TrackLocal
	screen  webrtc.TrackLocal
	audioOn bool
	videoOn bool
}

func NewLocalMediaState(source core.MediaSource) *LocalMediaState {
	return &LocalMediaState{source: source, audioOn: true, videoOn: true}
}

// Acquire walks the constraint ladder until one rung succeeds. Only
// when every rung fails is the error surfaced as fatal to the caller.
func (m *LocalMediaState) Acquire(ladder []core.Constraints) error {
	if len(ladder) == 0 {
		ladder = DefaultConstraintLadder()
	}
	var lastErr error
	for _, c := range ladder {
		stream, err := m.source.Acquire(c)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.media").Int("width", c.Width).Msg("acquire failed, trying next fallback")
			lastErr = err
			continue
		}
		m.mu.Lock()
		m.audio = stream.Audio
		m.camera = stream.Video
		m.mu.Unlock()
		return nil
	}
	return fmt.Errorf("all media fallbacks failed: %w", lastErr)
}

// Tracks returns the outgoing tracks to attach to a new session:
// audio plus the currently active video.
func (m *LocalMediaState) Tracks() []webrtc.TrackLocal {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []webrtc.TrackLocal
	if m.audio != nil {
		out = append(out, m.audio)
	}
	if v := m.activeVideoLocked(); v != nil {
		out = append(out, v)
	}
	return out
}

func (m *LocalMediaState) activeVideoLocked() webrtc.TrackLocal {
	if m.screen != nil {
		return m.screen
	}
	return m.camera
}

// ActiveVideo is the single outgoing video track: screen while
// sharing, camera otherwise.
func (m *LocalMediaState) ActiveVideo() webrtc.TrackLocal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeVideoLocked()
}

func (m *LocalMediaState) Sharing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.screen != nil
}

// StartScreenShare captures the display and makes its video track the
// active outgoing video. Idempotent while already sharing.
func (m *LocalMediaState) StartScreenShare() (webrtc.TrackLocal, error) {
	m.mu.Lock()
	if m.screen != nil {
		t := m.screen
		m.mu.Unlock()
		return t, nil
	}
	m.mu.Unlock()

	stream, err := m.source.CaptureDisplay()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.screen = stream.Video
	m.mu.Unlock()
	return stream.Video, nil
}

// StopScreenShare drops the screen track and hands back the previously
// captured camera track, the same instance, so no fresh permission
// prompt is triggered.
func (m *LocalMediaState) StopScreenShare() (webrtc.TrackLocal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.screen == nil {
		return nil, ErrNotSharing
	}
	m.screen = nil
	return m.camera, nil
}

// SwitchCamera acquires a different camera and makes it the stored
// camera track. The returned track is what open sessions should switch
// to, unless a screen share currently overrides the camera.
func (m *LocalMediaState) SwitchCamera(c core.Constraints) (webrtc.TrackLocal, error) {
	stream, err := m.source.Acquire(c)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.camera = stream.Video
	overridden := m.screen != nil
	m.mu.Unlock()
	if overridden {
		return nil, nil
	}
	return stream.Video, nil
}

func (m *LocalMediaState) SetAudioEnabled(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audioOn = on
}

func (m *LocalMediaState) SetVideoEnabled(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videoOn = on
}

func (m *LocalMediaState) AudioEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audioOn
}

func (m *LocalMediaState) VideoEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.videoOn
}

// EnumerateVideoSources passes through to the capture capability.
func (m *LocalMediaState) EnumerateVideoSources() ([]core.VideoSourceInfo, error) {
	return m.source.EnumerateVideoSources()
}
