package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var ErrBadSignal = errors.New("malformed signal payload")

const (
	kindCandidate = "candidate"
	kindOther     = "other"
)

// classifySignal looks inside an opaque negotiation payload. Session
// descriptions report their SDP type, trickled candidates report
// "candidate" and anything else (renegotiation hints and the like) is
// "other". With validate set, session descriptions must parse as SDP.
func classifySignal(raw json.RawMessage, validate bool) (string, error) {
	var probe struct {
		Type      string          `json:"type"`
		SDP       string          `json:"sdp"`
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadSignal, err)
	}

	switch t := webrtc.NewSDPType(probe.Type); t {
	case webrtc.SDPTypeOffer, webrtc.SDPTypeAnswer, webrtc.SDPTypePranswer:
		if validate {
			desc := webrtc.SessionDescription{Type: t, SDP: probe.SDP}
			if _, err := desc.Unmarshal(); err != nil {
				return "", fmt.Errorf("%w: %s sdp: %w", ErrBadSignal, t, err)
			}
		}
		return t.String(), nil
	case webrtc.SDPTypeRollback:
		return t.String(), nil
	}

	if probe.Type == kindCandidate || len(probe.Candidate) > 0 {
		return kindCandidate, nil
	}
	return kindOther, nil
}

func (ctl *SignalWSController) checkSignal(cid domain.ConnID, typ string, raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		log.Warn().Str("module", "signal").Str("conn", string(cid)).Str("type", typ).Msg("missing signal")
		return "", false
	}
	kind, err := classifySignal(raw, ctl.cfg.ValidateSDP)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Str("type", typ).Msg("signal rejected")
		return "", false
	}
	return kind, true
}

func (ctl *SignalWSController) handleSignalOffer(cid domain.ConnID, data []byte) {
	var p struct {
		UserToSignal domain.ConnID   `json:"userToSignal"`
		Signal       json.RawMessage `json:"signal"`
	}
	if !decode(cid, "signal-offer", data, &p) {
		return
	}
	kind, ok := ctl.checkSignal(cid, "signal-offer", p.Signal)
	if !ok {
		return
	}
	log.Debug().Str("module", "signal").Str("conn", string(cid)).Str("target", string(p.UserToSignal)).Str("kind", kind).Msg("offer")
	ctl.submit(cid, "signal-offer", func() error {
		return ctl.Orch.SignalOffer(cid, p.UserToSignal, p.Signal)
	})
}

func (ctl *SignalWSController) handleSignalAnswer(cid domain.ConnID, data []byte) {
	var p struct {
		CallerID domain.ConnID   `json:"callerId"`
		Signal   json.RawMessage `json:"signal"`
	}
	if !decode(cid, "signal-answer", data, &p) {
		return
	}
	kind, ok := ctl.checkSignal(cid, "signal-answer", p.Signal)
	if !ok {
		return
	}
	log.Debug().Str("module", "signal").Str("conn", string(cid)).Str("target", string(p.CallerID)).Str("kind", kind).Msg("answer")
	ctl.submit(cid, "signal-answer", func() error {
		return ctl.Orch.SignalAnswer(cid, p.CallerID, p.Signal)
	})
}

// handleScreenShareSignal serves both directions of the share handshake.
// A missing signalType is filled from the payload itself.
func (ctl *SignalWSController) handleScreenShareSignal(cid domain.ConnID, typ string, data []byte) {
	var p struct {
		To         domain.ConnID   `json:"to"`
		Signal     json.RawMessage `json:"signal"`
		SignalType string          `json:"signalType"`
	}
	if !decode(cid, typ, data, &p) {
		return
	}
	kind, ok := ctl.checkSignal(cid, typ, p.Signal)
	if !ok {
		return
	}
	if p.SignalType == "" && kind != kindOther {
		p.SignalType = kind
	}

	if typ == "screen-share-signal" {
		ctl.submit(cid, typ, func() error {
			return ctl.Orch.ScreenShareSignal(cid, p.To, p.Signal, p.SignalType)
		})
		return
	}
	ctl.submit(cid, typ, func() error {
		return ctl.Orch.ScreenShareSignalResponse(cid, p.To, p.Signal, p.SignalType)
	})
}
