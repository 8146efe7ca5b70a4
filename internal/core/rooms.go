package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

// DefaultRoomTTL is how long a room key stays joinable after its first
// occupant arrives. The window restarts once the room is fully vacated.
const DefaultRoomTTL = 24 * time.Hour

// MemberInfo is a read-only view for membership lists (no transport fields).
type MemberInfo struct {
	ID   domain.MemberID `json:"id"`
	Name string          `json:"name"`
}

type RoomInfo struct {
	Key         domain.RoomKey `json:"room"`
	MemberCount int            `json:"member_count"`
}

// roomState is one occupancy of a room key. Members are kept in join
// order so membership lists handed to new joiners are deterministic.
type roomState struct {
	createdAt time.Time
	members   []MemberInfo
	index     map[domain.MemberID]int
}

func (r *roomState) has(id domain.MemberID) bool {
	_, ok := r.index[id]
	return ok
}

// RoomRegistry is the single source of truth for room membership.
// All mutations are applied under one lock so a join and a concurrent
// leave on the same room can never interleave into a stale membership
// list. It never touches transport resources.
type RoomRegistry struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	rooms    map[domain.RoomKey]*roomState
	byMember map[domain.MemberID]domain.RoomKey
}

func NewRoomRegistry(ttl time.Duration) *RoomRegistry {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &RoomRegistry{
		ttl:      ttl,
		now:      time.Now,
		rooms:    make(map[domain.RoomKey]*roomState),
		byMember: make(map[domain.MemberID]domain.RoomKey),
	}
}

// SetClock replaces the registry clock, for tests.
func (rr *RoomRegistry) SetClock(now func() time.Time) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.now = now
}

// EnsureRoomFresh seeds the creation time for an unseen key and reports
// whether the key is still joinable. An expired key is evicted here and
// the caller must not admit the member; the next call re-seeds a fresh
// occupancy window.
func (rr *RoomRegistry) EnsureRoomFresh(key domain.RoomKey) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.ensureFreshLocked(key)
}

func (rr *RoomRegistry) ensureFreshLocked(key domain.RoomKey) error {
	now := rr.now()
	room, ok := rr.rooms[key]
	if !ok {
		rr.rooms[key] = &roomState{
			createdAt: now,
			index:     make(map[domain.MemberID]int),
		}
		return nil
	}
	if now.Sub(room.createdAt) > rr.ttl {
		for _, m := range room.members {
			delete(rr.byMember, m.ID)
		}
		delete(rr.rooms, key)
		log.Info().Str("module", "core.rooms").Str("room", string(key)).Msg("room expired, evicted")
		return domain.ErrRoomExpired
	}
	return nil
}

// AddMember inserts a member into the room. Idempotent for the same id.
// It does not resurrect an evicted key with a stale timestamp: a missing
// room entry is re-seeded with the current time, exactly as a fresh
// EnsureRoomFresh call would.
func (rr *RoomRegistry) AddMember(key domain.RoomKey, id domain.MemberID, name string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.addMemberLocked(key, id, name)
}

func (rr *RoomRegistry) addMemberLocked(key domain.RoomKey, id domain.MemberID, name string) {
	room, ok := rr.rooms[key]
	if !ok {
		room = &roomState{
			createdAt: rr.now(),
			index:     make(map[domain.MemberID]int),
		}
		rr.rooms[key] = room
	}
	if room.has(id) {
		return
	}
	room.index[id] = len(room.members)
	room.members = append(room.members, MemberInfo{ID: id, Name: name})
	rr.byMember[id] = key
	log.Info().Str("module", "core.rooms").Str("room", string(key)).Str("member", string(id)).Msg("member added")
}

// Join is the composite the hub uses: freshness check, insert, and the
// membership snapshot for the joiner, all under one critical section.
func (rr *RoomRegistry) Join(key domain.RoomKey, id domain.MemberID, name string) ([]MemberInfo, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if err := rr.ensureFreshLocked(key); err != nil {
		return nil, err
	}
	others := rr.listOthersLocked(key, id)
	rr.addMemberLocked(key, id, name)
	return others, nil
}

// RemoveMember removes the member from whichever room it belongs to and
// reports that room. When the last member leaves, the room entry goes
// with it; expiration bookkeeping is per-occupancy, so the next join on
// the same key starts a new TTL window.
func (rr *RoomRegistry) RemoveMember(id domain.MemberID) (domain.RoomKey, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	key, ok := rr.byMember[id]
	if !ok {
		return "", false
	}
	delete(rr.byMember, id)
	room := rr.rooms[key]
	if room == nil {
		return key, true
	}
	if pos, ok := room.index[id]; ok {
		delete(room.index, id)
		room.members = append(room.members[:pos], room.members[pos+1:]...)
		for i := pos; i < len(room.members); i++ {
			room.index[room.members[i].ID] = i
		}
	}
	if len(room.members) == 0 {
		delete(rr.rooms, key)
		log.Info().Str("module", "core.rooms").Str("room", string(key)).Msg("room vacated, entry reclaimed")
	}
	return key, true
}

// ListOtherMembers returns the members of the room except excluding,
// in join order. Used to seed new joiners with existing peers.
func (rr *RoomRegistry) ListOtherMembers(key domain.RoomKey, excluding domain.MemberID) []MemberInfo {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.listOthersLocked(key, excluding)
}

func (rr *RoomRegistry) listOthersLocked(key domain.RoomKey, excluding domain.MemberID) []MemberInfo {
	room, ok := rr.rooms[key]
	if !ok {
		return nil
	}
	out := make([]MemberInfo, 0, len(room.members))
	for _, m := range room.members {
		if m.ID == excluding {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ListMembers returns every member of the room in join order.
func (rr *RoomRegistry) ListMembers(key domain.RoomKey) []MemberInfo {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	room, ok := rr.rooms[key]
	if !ok {
		return nil
	}
	out := make([]MemberInfo, len(room.members))
	copy(out, room.members)
	return out
}

// RoomOf reports which room a member currently belongs to.
func (rr *RoomRegistry) RoomOf(id domain.MemberID) (domain.RoomKey, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	key, ok := rr.byMember[id]
	return key, ok
}

// MemberName looks up the display name registered at join time.
func (rr *RoomRegistry) MemberName(id domain.MemberID) (string, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	key, ok := rr.byMember[id]
	if !ok {
		return "", false
	}
	room, ok := rr.rooms[key]
	if !ok {
		return "", false
	}
	pos, ok := room.index[id]
	if !ok {
		return "", false
	}
	return room.members[pos].Name, true
}

// ListRooms snapshots all live rooms for the lobby API.
func (rr *RoomRegistry) ListRooms() []RoomInfo {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	out := make([]RoomInfo, 0, len(rr.rooms))
	for key, room := range rr.rooms {
		out = append(out, RoomInfo{Key: key, MemberCount: len(room.members)})
	}
	return out
}
