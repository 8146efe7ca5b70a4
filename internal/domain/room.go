package domain

import "errors"

// ErrRoomExpired means a join was attempted after the room key's TTL
// ran out. The room is evicted; the next join re-creates it fresh.
var ErrRoomExpired = errors.New("room expired")

// RoomKey is the opaque identifier participants share to meet in the
// same room. Keys are not minted by the server; any string works.
type RoomKey string

type Room struct {
	Key RoomKey
}
