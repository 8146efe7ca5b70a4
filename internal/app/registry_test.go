package app

import (
	"testing"
)

func TestRegistryPutReplacesAndClosesOldSession(t *testing.T) {
	r := NewConnectionRegistry()

	oldLink := &fakeLink{peer: "p"}
	r.Put(newPeerSession("p", "P", oldLink))
	newLink := &fakeLink{peer: "p"}
	r.Put(newPeerSession("p", "P", newLink))

	if r.Len() != 1 {
		t.Fatalf("at most one session per id, got %d", r.Len())
	}
	if !oldLink.IsClosed() {
		t.Fatal("replaced session's link must be closed")
	}
	if newLink.IsClosed() {
		t.Fatal("new session's link must stay open")
	}
	s, ok := r.Get("p")
	if !ok || s.Link() != newLink {
		t.Fatal("registry should hold the replacement session")
	}
}

func TestRegistryRemoveReturnsSessionWithoutClosing(t *testing.T) {
	r := NewConnectionRegistry()
	link := &fakeLink{peer: "p"}
	r.Put(newPeerSession("p", "P", link))

	s, ok := r.Remove("p")
	if !ok || s == nil {
		t.Fatal("Remove should hand back the live session")
	}
	if link.IsClosed() {
		t.Fatal("Remove must not close; teardown ordering belongs to the caller")
	}
	if _, ok := r.Remove("p"); ok {
		t.Fatal("second remove should miss")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}
