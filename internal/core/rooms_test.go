package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

func newTestRegistry(t *testing.T) (*RoomRegistry, *time.Time) {
	t.Helper()
	rr := NewRoomRegistry(DefaultRoomTTL)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	rr.SetClock(func() time.Time { return now })
	return rr, &now
}

func TestJoinOrderSeedsNthJoiner(t *testing.T) {
	rr, _ := newTestRegistry(t)
	room := domain.RoomKey("r1")

	const n = 5
	for i := 0; i < n; i++ {
		id := domain.MemberID(fmt.Sprintf("m%d", i))
		others, err := rr.Join(room, id, fmt.Sprintf("name%d", i))
		if err != nil {
			t.Fatalf("Join %d failed: %v", i, err)
		}
		if len(others) != i {
			t.Fatalf("joiner %d: expected %d others, got %d", i, i, len(others))
		}
		for j, o := range others {
			want := domain.MemberID(fmt.Sprintf("m%d", j))
			if o.ID != want {
				t.Errorf("joiner %d: position %d: expected %s, got %s", i, j, want, o.ID)
			}
		}
	}
}

func TestExpiredJoinEvictsAndNeverMutatesMembership(t *testing.T) {
	rr, now := newTestRegistry(t)
	room := domain.RoomKey("stale")

	if _, err := rr.Join(room, "a", "A"); err != nil {
		t.Fatalf("first join: %v", err)
	}

	*now = now.Add(24*time.Hour + time.Minute)
	_, err := rr.Join(room, "b", "B")
	if !errors.Is(err, domain.ErrRoomExpired) {
		t.Fatalf("expected ErrRoomExpired, got %v", err)
	}
	if _, ok := rr.RoomOf("b"); ok {
		t.Error("rejected joiner must not be a member")
	}
	// The stale occupancy is gone with the eviction.
	if _, ok := rr.RoomOf("a"); ok {
		t.Error("evicted room should not retain members")
	}

	// The very next join re-seeds a fresh window.
	if _, err := rr.Join(room, "b", "B"); err != nil {
		t.Fatalf("post-eviction join should succeed: %v", err)
	}
}

func TestVacancyResetsExpirationWindow(t *testing.T) {
	rr, now := newTestRegistry(t)
	room := domain.RoomKey("r1")
	t0 := *now

	// A creates the room at t=0.
	if _, err := rr.Join(room, "a", "A"); err != nil {
		t.Fatalf("A join: %v", err)
	}
	// B joins at t=1h and sees exactly A.
	*now = t0.Add(time.Hour)
	others, err := rr.Join(room, "b", "B")
	if err != nil {
		t.Fatalf("B join: %v", err)
	}
	if len(others) != 1 || others[0].ID != "a" {
		t.Fatalf("B should see [a], got %v", others)
	}
	// B leaves at t=2h, then A leaves: room fully vacant.
	*now = t0.Add(2 * time.Hour)
	rr.RemoveMember("b")
	rr.RemoveMember("a")

	// Joining the reused key at t=25h succeeds: the room became empty
	// at t=2h and a fresh TTL window starts with this occupancy.
	*now = t0.Add(25 * time.Hour)
	if _, err := rr.Join(room, "a2", "A"); err != nil {
		t.Fatalf("join after vacancy must start a fresh window: %v", err)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	rr, _ := newTestRegistry(t)
	room := domain.RoomKey("r1")
	rr.AddMember(room, "a", "A")
	rr.AddMember(room, "a", "A")
	if got := len(rr.ListMembers(room)); got != 1 {
		t.Fatalf("expected 1 member after duplicate add, got %d", got)
	}
}

func TestRemoveMemberReclaimsEmptyRoom(t *testing.T) {
	rr, _ := newTestRegistry(t)
	room := domain.RoomKey("r1")
	rr.AddMember(room, "a", "A")

	key, ok := rr.RemoveMember("a")
	if !ok || key != room {
		t.Fatalf("RemoveMember: got (%q, %v)", key, ok)
	}
	if rooms := rr.ListRooms(); len(rooms) != 0 {
		t.Fatalf("vacant room entry must be reclaimed, still have %v", rooms)
	}
	if _, ok := rr.RemoveMember("a"); ok {
		t.Error("second remove should report unknown member")
	}
}

func TestListOtherMembersExcludesSelfKeepsOrder(t *testing.T) {
	rr, _ := newTestRegistry(t)
	room := domain.RoomKey("r1")
	rr.AddMember(room, "a", "A")
	rr.AddMember(room, "b", "B")
	rr.AddMember(room, "c", "C")
	rr.RemoveMember("b")

	others := rr.ListOtherMembers(room, "a")
	if len(others) != 1 || others[0].ID != "c" {
		t.Fatalf("expected [c], got %v", others)
	}
}

func TestMemberNameLookup(t *testing.T) {
	rr, _ := newTestRegistry(t)
	rr.AddMember("r1", "a", "Alice")
	name, ok := rr.MemberName("a")
	if !ok || name != "Alice" {
		t.Fatalf("MemberName: got (%q, %v)", name, ok)
	}
	if _, ok := rr.MemberName("ghost"); ok {
		t.Error("unknown member should have no name")
	}
}
