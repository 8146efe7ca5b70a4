package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/signaling"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, ps *peerState, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("member", string(ps.id)).Msg("readPump closing")
		ctl.disconnect(ps)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("member", string(ps.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("member", string(ps.id)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(ps, data)
		}
	}
}

// handleSignal dispatches one inbound frame. A fault handling one
// connection's event must never reach another connection, so every
// handler only logs on bad input.
func (ctl *Controller) handleSignal(ps *peerState, data []byte) {
	var env signaling.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case signaling.EventJoinRoom:
		ctl.handleJoin(ps, data)
	case signaling.EventOffer:
		ctl.handleOffer(ps, data)
	case signaling.EventAnswer:
		ctl.handleAnswer(ps, data)
	case signaling.EventCandidate:
		ctl.handleCandidate(ps, data)
	case signaling.EventSendChat:
		ctl.handleChat(ps, data)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
