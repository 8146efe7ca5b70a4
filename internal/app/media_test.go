package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pion/webrtc/v4"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
)

// fakeSource scripts the capture capability: the first failAcquires
// Acquire calls fail with acquireErr.
type fakeSource struct {
	failAcquires int
	acquireErr   error
	displayErr   error

	acquires int
	captures int
}

func (s *fakeSource) Acquire(c core.Constraints) (*core.LocalStream, error) {
	s.acquires++
	if s.acquires <= s.failAcquires {
		return nil, s.acquireErr
	}
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		fmt.Sprintf("cam-%d", s.acquires), "fake-stream")
	if err != nil {
		return nil, err
	}
	out := &core.LocalStream{Video: video}
	if c.Audio {
		audio, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "mic", "fake-stream")
		if err != nil {
			return nil, err
		}
		out.Audio = audio
	}
	return out, nil
}

func (s *fakeSource) EnumerateVideoSources() ([]core.VideoSourceInfo, error) {
	return []core.VideoSourceInfo{{DeviceID: "cam0", Label: "Front"}}, nil
}

func (s *fakeSource) CaptureDisplay() (*core.LocalStream, error) {
	s.captures++
	if s.displayErr != nil {
		return nil, s.displayErr
	}
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		fmt.Sprintf("screen-%d", s.captures), "fake-stream")
	if err != nil {
		return nil, err
	}
	return &core.LocalStream{Video: video}, nil
}

func TestAcquireFallsBackThroughLadder(t *testing.T) {
	src := &fakeSource{failAcquires: 2, acquireErr: core.ErrDeviceUnavailable}
	m := NewLocalMediaState(src)

	if err := m.Acquire(DefaultConstraintLadder()); err != nil {
		t.Fatalf("third rung should have succeeded: %v", err)
	}
	if src.acquires != 3 {
		t.Fatalf("expected 3 acquisition attempts, got %d", src.acquires)
	}
	if m.ActiveVideo() == nil {
		t.Fatal("no active video after successful acquire")
	}
}

func TestAcquireFatalOnlyWhenEveryRungFails(t *testing.T) {
	src := &fakeSource{failAcquires: 99, acquireErr: core.ErrPermissionDenied}
	m := NewLocalMediaState(src)

	err := m.Acquire(DefaultConstraintLadder())
	if err == nil {
		t.Fatal("expected error when every fallback fails")
	}
	if !errors.Is(err, core.ErrPermissionDenied) {
		t.Fatalf("error should wrap the capability failure, got %v", err)
	}
}

func TestScreenShareReplacesNotAdds(t *testing.T) {
	m := NewLocalMediaState(&fakeSource{})
	if err := m.Acquire(nil); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	camera := m.ActiveVideo()

	screen, err := m.StartScreenShare()
	if err != nil {
		t.Fatalf("StartScreenShare: %v", err)
	}
	if m.ActiveVideo() != screen {
		t.Fatal("screen must be the single active video while sharing")
	}
	// Exactly one outgoing video at a time.
	videos := 0
	for _, tr := range m.Tracks() {
		if tr.Kind() == webrtc.RTPCodecTypeVideo {
			videos++
		}
	}
	if videos != 1 {
		t.Fatalf("expected exactly one video track, got %d", videos)
	}

	// Starting again while sharing is a no-op on the same track.
	again, err := m.StartScreenShare()
	if err != nil || again != screen {
		t.Fatalf("second start should return the live screen track, got %v, %v", again, err)
	}

	restored, err := m.StopScreenShare()
	if err != nil {
		t.Fatalf("StopScreenShare: %v", err)
	}
	if restored != camera {
		t.Fatal("stop must hand back the same camera track instance, not a fresh capture")
	}
	if m.ActiveVideo() != camera {
		t.Fatal("camera should be active again after stopping the share")
	}
}

func TestStopScreenShareWithoutStart(t *testing.T) {
	m := NewLocalMediaState(&fakeSource{})
	if _, err := m.StopScreenShare(); !errors.Is(err, ErrNotSharing) {
		t.Fatalf("expected ErrNotSharing, got %v", err)
	}
}

func TestCaptureCancelPropagates(t *testing.T) {
	src := &fakeSource{displayErr: core.ErrUserCancelled}
	m := NewLocalMediaState(src)
	if _, err := m.StartScreenShare(); !errors.Is(err, core.ErrUserCancelled) {
		t.Fatalf("expected ErrUserCancelled, got %v", err)
	}
	if m.Sharing() {
		t.Fatal("cancelled capture must not enter the sharing state")
	}
}

func TestSwitchCameraWhileSharingKeepsScreenActive(t *testing.T) {
	m := NewLocalMediaState(&fakeSource{})
	if err := m.Acquire(nil); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := m.StartScreenShare(); err != nil {
		t.Fatalf("share: %v", err)
	}
	screen := m.ActiveVideo()

	track, err := m.SwitchCamera(core.Constraints{Facing: "environment"})
	if err != nil {
		t.Fatalf("SwitchCamera: %v", err)
	}
	if track != nil {
		t.Fatal("switch during share must not ask sessions to change video")
	}
	if m.ActiveVideo() != screen {
		t.Fatal("screen stays the active video across a camera switch")
	}

	// Once the share stops, the new camera is what comes back.
	restored, err := m.StopScreenShare()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if restored == nil || restored == screen {
		t.Fatal("stop should restore the (new) camera track")
	}
}
