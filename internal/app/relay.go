package app

import (
	"errors"
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrTargetNotConnected = errors.New("target not connected")

type RejectReason string

const (
	UnknownSender    RejectReason = "unknown_sender"
	NotCurrentSharer RejectReason = "not_current_sharer"
	UnknownTarget    RejectReason = "unknown_target"
	RoomMismatch     RejectReason = "room_mismatch"
)

// RejectedError is returned when a screen-share relay fails validation.
// Nothing is forwarded in that case.
type RejectedError struct {
	Reason RejectReason
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("screen-share signal rejected: %s", e.Reason)
}

// Router delivers frames to live connections. It knows transports by
// connection id and leaves session state to the registry and room table.
type Router struct {
	sinks   map[domain.ConnID]core.SignalConnection
	reg     *Registry
	rooms   *RoomTable
	screens *ScreenShares
}

func NewRouter(reg *Registry, rooms *RoomTable, screens *ScreenShares) *Router {
	return &Router{
		sinks:   make(map[domain.ConnID]core.SignalConnection),
		reg:     reg,
		rooms:   rooms,
		screens: screens,
	}
}

func (r *Router) Attach(cid domain.ConnID, sink core.SignalConnection) {
	r.sinks[cid] = sink
}

func (r *Router) Detach(cid domain.ConnID) {
	delete(r.sinks, cid)
}

// Sink returns the transport bound to cid, if any.
func (r *Router) Sink(cid domain.ConnID) (core.SignalConnection, bool) {
	s, ok := r.sinks[cid]
	return s, ok
}

// RelayDirect is fire-and-forget: a full or closing sink loses the frame
// and the caller is not told.
func (r *Router) RelayDirect(target domain.ConnID, f core.Frame) error {
	sink, ok := r.sinks[target]
	if !ok {
		return ErrTargetNotConnected
	}
	if err := sink.TrySend(f); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Str("conn", string(target)).Msg("direct frame dropped")
	}
	return nil
}

// RelayScreenShareSignal forwards a sharer's negotiation frame to a viewer
// in the same room. Checks run in a fixed order and the first failure wins.
func (r *Router) RelayScreenShareSignal(from, to domain.ConnID, f core.Frame) error {
	fromMD, err := r.reg.Lookup(from)
	if err != nil {
		return &RejectedError{Reason: UnknownSender}
	}
	if sharer, ok := r.screens.CurrentSharer(fromMD.RoomID); !ok || sharer != from {
		return &RejectedError{Reason: NotCurrentSharer}
	}
	return r.relaySameRoom(fromMD, to, f)
}

// RelayScreenShareResponse forwards a viewer's reply to the sharer. Viewers
// are never the sharer, so only membership and room are checked.
func (r *Router) RelayScreenShareResponse(from, to domain.ConnID, f core.Frame) error {
	fromMD, err := r.reg.Lookup(from)
	if err != nil {
		return &RejectedError{Reason: UnknownSender}
	}
	return r.relaySameRoom(fromMD, to, f)
}

func (r *Router) relaySameRoom(fromMD domain.SessionMetadata, to domain.ConnID, f core.Frame) error {
	toMD, err := r.reg.Lookup(to)
	if err != nil {
		return &RejectedError{Reason: UnknownTarget}
	}
	if toMD.RoomID != fromMD.RoomID {
		return &RejectedError{Reason: RoomMismatch}
	}
	if err := r.RelayDirect(to, f); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Str("conn", string(to)).Msg("screen-share target vanished")
	}
	return nil
}

// BroadcastToRoom sends f to every member of room except excluding, when set.
func (r *Router) BroadcastToRoom(room domain.RoomID, excluding *domain.ConnID, f core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, cid := range r.rooms.Members(room) {
		if excluding != nil && cid == *excluding {
			continue
		}
		sink, ok := r.sinks[cid]
		if !ok {
			continue
		}
		if err := sink.TrySend(f); err != nil {
			if errors.Is(err, core.ErrBackpressure) {
				res.Dropped = append(res.Dropped, cid)
			}
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.router").Str("room", string(room)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
