// Package signal is the WebSocket signaling hub. It tracks which
// connection is in which room and relays offer/answer/candidate
// messages between peers. SDP and ICE payloads are never interpreted
// here; the hub is a pure routing layer keyed by connection identity.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/config"
	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// connState is the per-connection lifecycle: joining moves a connection
// to stateJoined, a rejected join leaves it usable in stateConnected,
// disconnect is terminal.
type connState int

const (
	stateConnected connState = iota
	stateJoined
	stateLeft
)

// peerState is everything the hub knows about one connection.
type peerState struct {
	conn  core.SignalConnection
	token domain.MemberID

	mu    sync.Mutex
	state connState
	id    domain.MemberID
	name  string
	room  domain.RoomKey
}

// Controller owns the room registry and the member→connection table.
type Controller struct {
	Rooms *core.RoomRegistry
	cfg   *config.Config

	mu    sync.RWMutex
	peers map[domain.MemberID]*peerState
}

func NewController(rooms *core.RoomRegistry, cfg *config.Config) *Controller {
	return &Controller{
		Rooms: rooms,
		cfg:   cfg,
		peers: make(map[domain.MemberID]*peerState),
	}
}

// WsSignalConn wraps one websocket with a buffered outbound queue.
// TrySend never blocks; a full queue drops the frame with an error.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection's pumps.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	token := domain.MemberID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("token", string(token)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.cfg != nil && ctl.cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.cfg.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ps := ctl.attach(conn, token)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		ctl.writePump(ctx, conn)
	}()
	go ctl.readPump(ctx, ps, conn)
}

// attach registers a fresh connection in stateConnected. It is not
// addressable as a relay target until it joins a room.
func (ctl *Controller) attach(conn core.SignalConnection, token domain.MemberID) *peerState {
	return &peerState{conn: conn, token: token, state: stateConnected}
}

// lookup resolves a joined member to its connection.
func (ctl *Controller) lookup(id domain.MemberID) (core.SignalConnection, bool) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	ps, ok := ctl.peers[id]
	if !ok {
		return nil, false
	}
	return ps.conn, true
}
