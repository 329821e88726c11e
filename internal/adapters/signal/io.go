package signal

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(cid domain.ConnID, client string, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(cid)).Msg("readPump closing")
		ctl.Loop.Submit("disconnect", func() { ctl.Orch.Disconnect(cid) })
		c.Close()
		ctl.limiter.Sweep()
	}()

	pongWait := ctl.cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(cid, client, data)
	}
}

// throttled lists the events that count against the per-client rate
// limit. Negotiation and membership events are never dropped here.
var throttled = map[string]bool{
	"send-message":     true,
	"typing":           true,
	"stop-typing":      true,
	"debug-room-state": true,
	"ping":             true,
	"whoami":           true,
}

func (ctl *SignalWSController) handleSignal(cid domain.ConnID, client string, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Msg("bad json")
		return
	}
	if throttled[env.Type] && !ctl.limiter.Allow(client) {
		log.Warn().Str("module", "signal").Str("conn", string(cid)).Str("client", client).Str("type", env.Type).Msg("rate limited")
		return
	}

	switch env.Type {
	case "join", "join-room":
		ctl.handleJoin(cid, data)
	case "leave":
		ctl.handleLeave(cid)
	case "signal-offer", "send-signal":
		ctl.handleSignalOffer(cid, data)
	case "signal-answer", "return-signal":
		ctl.handleSignalAnswer(cid, data)
	case "start-screen-share":
		ctl.submit(cid, env.Type, func() error { return ctl.Orch.StartScreenShare(cid) })
	case "stop-screen-share":
		ctl.submit(cid, env.Type, func() error { return ctl.Orch.StopScreenShare(cid) })
	case "screen-share-signal", "screen-share-signal-response":
		ctl.handleScreenShareSignal(cid, env.Type, data)
	case "send-message":
		ctl.handleSendMessage(cid, data)
	case "typing", "stop-typing":
		ctl.handleTyping(cid, env.Type, data)
	case "debug-room-state":
		ctl.handleDebugRoomState(cid, data)
	case "ping":
		ctl.handlePing(cid)
	case "whoami":
		ctl.handleWhoAmI(cid)
	default:
		log.Warn().Str("module", "signal").Str("conn", string(cid)).Str("type", env.Type).Msg("unknown signal")
	}
}

// submit runs fn on the loop and logs whatever it refused.
func (ctl *SignalWSController) submit(cid domain.ConnID, typ string, fn func() error) {
	ok := ctl.Loop.Submit(typ, func() {
		err := fn()
		switch {
		case err == nil:
		case errors.Is(err, app.ErrShareConflict):
			log.Info().Err(err).Str("module", "signal").Str("conn", string(cid)).Str("type", typ).Msg("event refused")
		default:
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Str("type", typ).Msg("event dropped")
		}
	})
	if !ok {
		log.Debug().Str("module", "signal").Str("conn", string(cid)).Str("type", typ).Msg("loop stopped, event lost")
	}
}

func decode(cid domain.ConnID, typ string, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Str("type", typ).Msg("bad payload")
		return false
	}
	return true
}
