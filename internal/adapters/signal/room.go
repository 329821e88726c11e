package signal

import (
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(cid domain.ConnID, data []byte) {
	var p struct {
		RoomID   string `json:"roomId"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	if !decode(cid, "join", data, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("room", p.RoomID).Msg("join")
	ctl.submit(cid, "join", func() error {
		return ctl.Orch.Join(cid, p.RoomID, p.Username, p.Avatar)
	})
}

// handleLeave leaves the current room; the socket stays open.
func (ctl *SignalWSController) handleLeave(cid domain.ConnID) {
	log.Info().Str("module", "signal").Str("conn", string(cid)).Msg("leave")
	ctl.submit(cid, "leave", func() error { return ctl.Orch.Leave(cid) })
}

func (ctl *SignalWSController) handleSendMessage(cid domain.ConnID, data []byte) {
	var p struct {
		RoomID  string `json:"roomId"`
		Message string `json:"message"`
	}
	if !decode(cid, "send-message", data, &p) {
		return
	}
	ctl.submit(cid, "send-message", func() error {
		return ctl.Orch.SendMessage(cid, p.RoomID, p.Message)
	})
}

func (ctl *SignalWSController) handleTyping(cid domain.ConnID, typ string, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if !decode(cid, typ, data, &p) {
		return
	}
	if typ == "typing" {
		ctl.submit(cid, typ, func() error { return ctl.Orch.Typing(cid, p.RoomID) })
		return
	}
	ctl.submit(cid, typ, func() error { return ctl.Orch.StopTyping(cid, p.RoomID) })
}

func (ctl *SignalWSController) handleDebugRoomState(cid domain.ConnID, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if !decode(cid, "debug-room-state", data, &p) {
		return
	}
	ctl.submit(cid, "debug-room-state", func() error {
		return ctl.Orch.DebugRoomState(cid, p.RoomID)
	})
}
