// Package relay is the client-side transport to the signaling server:
// a thin wrapper over one WebSocket exposing a typed event stream and
// typed send operations. Delivery is in-order per connection and
// at-most-once; nothing is retried or acknowledged here.
package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/domain"
	"github.com/Jaguar1-alt/MV-meet/internal/signaling"
)

type Client struct {
	conn *websocket.Conn
	self domain.MemberID

	writeMu sync.Mutex
	events  chan signaling.Event

	closeOnce sync.Once
}

// Dial connects to the signaling server and starts the read loop.
// The client mints its own per-connection member id.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to signaling server: %w", err)
	}
	c := &Client{
		conn:   conn,
		self:   domain.NewMemberID(),
		events: make(chan signaling.Event, 32),
	}
	go c.readLoop()
	return c, nil
}

// Self is this connection's member id, as sent in join-room.
func (c *Client) Self() domain.MemberID { return c.self }

// Events is the stream of decoded server messages. It closes when the
// transport drops.
func (c *Client) Events() <-chan signaling.Event { return c.events }

func (c *Client) readLoop() {
	defer c.closeEvents()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Str("module", "relay").Msg("read loop ended")
			return
		}
		ev, err := signaling.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("module", "relay").Msg("undecodable event, dropped")
			continue
		}
		c.events <- ev
	}
}

func (c *Client) closeEvents() {
	c.closeOnce.Do(func() { close(c.events) })
}

func (c *Client) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) JoinRoom(room domain.RoomKey, name string) error {
	return c.send(signaling.JoinRoom{
		Type: signaling.EventJoinRoom,
		Room: room,
		ID:   c.self,
		Name: name,
	})
}

func (c *Client) SendOffer(target domain.MemberID, sdp string) error {
	return c.send(signaling.Offer{
		Type:   signaling.EventOffer,
		Target: target,
		SDP:    sdp,
		Caller: c.self,
	})
}

func (c *Client) SendAnswer(target domain.MemberID, sdp string) error {
	return c.send(signaling.Answer{
		Type:     signaling.EventAnswer,
		Target:   target,
		SDP:      sdp,
		Answerer: c.self,
	})
}

func (c *Client) SendCandidate(target domain.MemberID, ci webrtc.ICECandidateInit) error {
	return c.send(signaling.Candidate{
		Type:      signaling.EventCandidate,
		Target:    target,
		Candidate: ci,
		Sender:    c.self,
	})
}

func (c *Client) SendChat(room domain.RoomKey, message, senderName string) error {
	return c.send(signaling.ChatMessage{
		Type:       signaling.EventSendChat,
		Room:       room,
		Message:    message,
		SenderName: senderName,
	})
}

// Close tears down the transport. Pending sends fail afterwards.
func (c *Client) Close() {
	_ = c.conn.Close()
}
