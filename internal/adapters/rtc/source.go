package rtc

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
)

// StaticSource is the headless client's stand-in for device capture:
// it hands out sample-fed local tracks (opus audio, VP8 video) that the
// caller can feed from files, test patterns, or an external encoder.
// Device enumeration reports a single synthetic camera.
type StaticSource struct {
	StreamID string
}

func NewStaticSource() *StaticSource {
	return &StaticSource{StreamID: uuid.NewString()}
}

func (s *StaticSource) Acquire(c core.Constraints) (*core.LocalStream, error) {
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		fmt.Sprintf("video-%dx%d", c.Width, c.Height),
		s.StreamID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDeviceUnavailable, err)
	}
	out := &core.LocalStream{Video: video}
	if c.Audio {
		audio, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
			"audio",
			s.StreamID,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrDeviceUnavailable, err)
		}
		out.Audio = audio
	}
	return out, nil
}

func (s *StaticSource) EnumerateVideoSources() ([]core.VideoSourceInfo, error) {
	return []core.VideoSourceInfo{{DeviceID: "synthetic-0", Label: "Synthetic camera"}}, nil
}

func (s *StaticSource) CaptureDisplay() (*core.LocalStream, error) {
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"screen",
		s.StreamID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDeviceUnavailable, err)
	}
	return &core.LocalStream{Video: video}, nil
}

var _ core.MediaSource = (*StaticSource)(nil)
