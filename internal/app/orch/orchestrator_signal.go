package orch

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// SignalOffer forwards a negotiation payload to target along with who
// sent it. A vanished target is not an error.
func (o *Orchestrator) SignalOffer(from, target domain.ConnID, signal json.RawMessage) error {
	md, err := o.member(from)
	if err != nil {
		return err
	}
	if target == "" || len(signal) == 0 {
		return ErrBadMessage
	}
	o.relay(from, target, receiveSignalMsg{
		Type:           TypeReceiveSignal,
		Signal:         signal,
		CallerID:       from,
		CallerUsername: md.DisplayName,
		CallerAvatar:   md.Avatar,
	})
	return nil
}

// SignalAnswer returns a negotiation payload to the original caller.
func (o *Orchestrator) SignalAnswer(from, target domain.ConnID, signal json.RawMessage) error {
	if _, err := o.member(from); err != nil {
		return err
	}
	if target == "" || len(signal) == 0 {
		return ErrBadMessage
	}
	o.relay(from, target, returnedSignalMsg{Type: TypeReturnedSignal, Signal: signal, ID: from})
	return nil
}

func (o *Orchestrator) relay(from, target domain.ConnID, v any) {
	f, ok := encode(v)
	if !ok {
		return
	}
	if err := o.Router.RelayDirect(target, f); errors.Is(err, app.ErrTargetNotConnected) {
		log.Debug().Str("module", "orch").Str("conn", string(from)).Str("target", string(target)).Msg("signal target gone")
	}
}
