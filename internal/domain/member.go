// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxNameLen = 36

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

// MemberID identifies a participant for the lifetime of one connection.
// It is not persisted across reconnects.
type MemberID string

// NewMemberID mints a fresh per-connection identifier.
func NewMemberID() MemberID {
	return MemberID(uuid.NewString())
}

// Member is a participant of exactly one room.
type Member struct {
	ID   MemberID `json:"id"`
	Name string   `json:"name"`
	Room RoomKey  `json:"-"`
}

// NewMember is a tiny helper to avoid ad-hoc struct literals in adapters.
// The name is user-supplied; it is bounded but never checked for uniqueness.
func NewMember(id MemberID, name string, room RoomKey) (*Member, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Member{ID: id, Name: name, Room: room}, nil
}
