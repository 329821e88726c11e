package orch

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	defaultShareSignalType   = "offer"
	defaultShareResponseType = "answer"
)

func (o *Orchestrator) StartScreenShare(cid domain.ConnID) error {
	md, err := o.member(cid)
	if err != nil {
		return err
	}
	cur, sharing := o.Screens.CurrentSharer(md.RoomID)
	if err := o.Screens.StartShare(md.RoomID, cid); err != nil {
		var conflict *app.ShareConflictError
		if errors.As(err, &conflict) {
			log.Info().Str("module", "orch").Str("room", string(md.RoomID)).Str("conn", string(cid)).Str("sharer", string(conflict.Sharer)).Msg("share conflict")
			o.send(cid, shareErrorMsg{Type: TypeShareError, Error: app.ErrShareConflict.Error(), SharerID: conflict.Sharer})
		}
		return err
	}

	confirm := shareConfirmMsg{Type: TypeShareStartedConfirm, Success: true, SharerID: cid}
	if sharing && cur == cid {
		o.send(cid, confirm)
		return nil
	}
	o.broadcast(md.RoomID, nil, shareStartedMsg{Type: TypeShareStarted, SharerID: cid, SharerUsername: md.DisplayName})
	o.send(cid, confirm)
	return nil
}

func (o *Orchestrator) StopScreenShare(cid domain.ConnID) error {
	md, err := o.member(cid)
	if err != nil {
		return err
	}
	if err := o.Screens.StopShare(md.RoomID, cid); err != nil {
		o.send(cid, shareErrorMsg{Type: TypeShareError, Error: err.Error()})
		return err
	}
	o.broadcast(md.RoomID, nil, shareStoppedMsg{
		Type:              TypeShareStopped,
		StoppedBy:         cid,
		StoppedByUsername: md.DisplayName,
	})
	return nil
}

// ScreenShareSignal relays sharer -> viewer negotiation. Every message is
// checked against the arbiter, so signals racing a stop are rejected.
func (o *Orchestrator) ScreenShareSignal(from, to domain.ConnID, signal json.RawMessage, signalType string) error {
	if signalType == "" {
		signalType = defaultShareSignalType
	}
	f, ok := encode(shareSignalMsg{Type: TypeShareSignal, From: from, Signal: signal, SignalType: signalType})
	if !ok {
		return ErrBadMessage
	}
	return o.rejectOnError(from, to, o.Router.RelayScreenShareSignal(from, to, f))
}

// ScreenShareSignalResponse relays viewer -> sharer answers and candidates.
func (o *Orchestrator) ScreenShareSignalResponse(from, to domain.ConnID, signal json.RawMessage, signalType string) error {
	if signalType == "" {
		signalType = defaultShareResponseType
	}
	f, ok := encode(shareSignalMsg{Type: TypeShareSignalResponse, From: from, Signal: signal, SignalType: signalType})
	if !ok {
		return ErrBadMessage
	}
	return o.rejectOnError(from, to, o.Router.RelayScreenShareResponse(from, to, f))
}

func (o *Orchestrator) rejectOnError(from, to domain.ConnID, err error) error {
	var rejected *app.RejectedError
	if !errors.As(err, &rejected) {
		return err
	}
	log.Warn().Str("module", "orch").Str("conn", string(from)).Str("target", string(to)).Str("reason", string(rejected.Reason)).Msg("screen-share signal rejected")
	o.send(from, shareRejectedMsg{Type: TypeShareRejected, To: to, Reason: string(rejected.Reason)})
	return err
}
