package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

// ConnectionRegistry maps remote peer ids to their sessions. At most
// one session exists per id; Put closes any predecessor before the new
// one becomes visible, so there is no window with two live sessions
// for the same peer.
type ConnectionRegistry struct {
	mu       sync.Mutex
	sessions map[domain.MemberID]*PeerSession
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{sessions: make(map[domain.MemberID]*PeerSession)}
}

func (r *ConnectionRegistry) Put(s *PeerSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[s.ID]; ok {
		old.link.Close()
		log.Info().Str("module", "app.registry").Str("peer", string(s.ID)).Msg("replaced existing session")
	}
	r.sessions[s.ID] = s
}

func (r *ConnectionRegistry) Get(id domain.MemberID) (*PeerSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops the session from the registry without closing it; the
// caller owns teardown ordering.
func (r *ConnectionRegistry) Remove(id domain.MemberID) (*PeerSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

func (r *ConnectionRegistry) Snapshot() []*PeerSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*PeerSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *ConnectionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
