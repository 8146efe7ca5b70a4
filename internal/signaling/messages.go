// Package signaling defines the JSON wire protocol spoken between the
// relay server and its clients. Every message is a flat object carrying
// a "type" discriminator next to its payload fields.
package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

type EventType string

const (
	EventJoinRoom    EventType = "join-room"
	EventAllUsers    EventType = "all-users"
	EventUserJoined  EventType = "user-joined"
	EventUserLeft    EventType = "user-left"
	EventRoomExpired EventType = "room-expired"
	EventOffer       EventType = "offer"
	EventAnswer      EventType = "answer"
	EventCandidate   EventType = "ice-candidate"
	EventSendChat    EventType = "send-chat-message"
	EventReceiveChat EventType = "receive-chat-message"
)

// Envelope is the minimal prefix read before dispatching a message.
type Envelope struct {
	Type EventType `json:"type"`
}

// Event is any message a client can receive from the relay.
type Event interface {
	Kind() EventType
}

// JoinRoom is the client's request to join (or create) a room.
type JoinRoom struct {
	Type EventType       `json:"type"`
	Room domain.RoomKey  `json:"room"`
	ID   domain.MemberID `json:"id"`
	Name string          `json:"name"`
}

// AllUsers is the reply to a join: full membership minus the joiner,
// in join order.
type AllUsers struct {
	Type  EventType         `json:"type"`
	Users []core.MemberInfo `json:"users"`
}

func (AllUsers) Kind() EventType { return EventAllUsers }

// UserJoined announces a new peer to the rest of the room.
type UserJoined struct {
	Type EventType       `json:"type"`
	ID   domain.MemberID `json:"id"`
	Name string          `json:"name"`
}

func (UserJoined) Kind() EventType { return EventUserJoined }

// UserLeft announces a departure to the rest of the room.
type UserLeft struct {
	Type EventType       `json:"type"`
	ID   domain.MemberID `json:"id"`
}

func (UserLeft) Kind() EventType { return EventUserLeft }

// RoomExpired rejects a join whose room outlived its TTL. Sent to the
// joining connection only; the connection stays usable.
type RoomExpired struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

func (RoomExpired) Kind() EventType { return EventRoomExpired }

// Offer initiates negotiation with one peer. CallerName is attached by
// the hub so the receiver can label the incoming call before any other
// identifying data exists.
type Offer struct {
	Type       EventType       `json:"type"`
	Target     domain.MemberID `json:"target"`
	SDP        string          `json:"sdp"`
	Caller     domain.MemberID `json:"caller"`
	CallerName string          `json:"callerName,omitempty"`
}

func (Offer) Kind() EventType { return EventOffer }

// Answer completes negotiation.
type Answer struct {
	Type     EventType       `json:"type"`
	Target   domain.MemberID `json:"target"`
	SDP      string          `json:"sdp"`
	Answerer domain.MemberID `json:"answerer"`
}

func (Answer) Kind() EventType { return EventAnswer }

// Candidate carries one trickled ICE candidate.
type Candidate struct {
	Type      EventType               `json:"type"`
	Target    domain.MemberID         `json:"target"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	Sender    domain.MemberID         `json:"sender"`
}

func (Candidate) Kind() EventType { return EventCandidate }

// ChatMessage is the orthogonal text channel, broadcast to the whole
// room including the sender.
type ChatMessage struct {
	Type       EventType      `json:"type"`
	Room       domain.RoomKey `json:"room,omitempty"`
	Message    string         `json:"message"`
	SenderName string         `json:"senderName"`
}

func (ChatMessage) Kind() EventType { return EventReceiveChat }

// Decode parses one server→client frame into its typed event.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bad envelope: %w", err)
	}
	switch env.Type {
	case EventAllUsers:
		var m AllUsers
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventUserJoined:
		var m UserJoined
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventUserLeft:
		var m UserLeft
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventRoomExpired:
		var m RoomExpired
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventOffer:
		var m Offer
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventAnswer:
		var m Answer
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventCandidate:
		var m Candidate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventReceiveChat:
		var m ChatMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown event type %q", env.Type)
}
