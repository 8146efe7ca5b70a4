package signaling

import (
	"testing"
)

func TestDecodeDispatchesByType(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"offer","target":"b","sdp":"v=0","caller":"a","callerName":"Alice"}`))
	if err != nil {
		t.Fatalf("decode offer: %v", err)
	}
	offer, ok := ev.(Offer)
	if !ok {
		t.Fatalf("expected Offer, got %T", ev)
	}
	if offer.Caller != "a" || offer.CallerName != "Alice" || offer.SDP != "v=0" {
		t.Fatalf("offer fields lost in decode: %+v", offer)
	}

	ev, err = Decode([]byte(`{"type":"ice-candidate","target":"b","sender":"a","candidate":{"candidate":"candidate:1 1 udp 2 10.0.0.1 5000 typ host","sdpMid":"0"}}`))
	if err != nil {
		t.Fatalf("decode candidate: %v", err)
	}
	cand, ok := ev.(Candidate)
	if !ok {
		t.Fatalf("expected Candidate, got %T", ev)
	}
	if cand.Candidate.SDPMid == nil || *cand.Candidate.SDPMid != "0" {
		t.Fatalf("candidate init not preserved: %+v", cand.Candidate)
	}
}

func TestDecodeRejectsGarbageAndUnknownTypes(t *testing.T) {
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Fatal("truncated frame should fail to decode")
	}
	if _, err := Decode([]byte(`{"type":"mystery"}`)); err == nil {
		t.Fatal("unknown type should fail to decode")
	}
	// Client-to-server requests never come back down the pipe, so the
	// decoder treats them as unknown too.
	if _, err := Decode([]byte(`{"type":"join-room","room":"r1"}`)); err == nil {
		t.Fatal("join-room is not a receivable event")
	}
}
