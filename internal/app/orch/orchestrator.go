package orch

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Protocol violations. Handlers return them so the transport can log;
// the offending event is otherwise dropped.
var (
	ErrNotJoined     = errors.New("connection has not joined a room")
	ErrAlreadyJoined = errors.New("connection already joined another room")
	ErrRoomMismatch  = errors.New("event names a room the sender is not in")
	ErrBadMessage    = errors.New("malformed event")
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Orchestrator is the session lifecycle controller. All methods must be
// called from one goroutine at a time, normally the Loop.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomTable
	Screens  *app.ScreenShares
	Router   *app.Router
	Policy   app.Policy

	// Now stamps chat messages. Defaults to time.Now.
	Now       func() time.Time
	lastStamp time.Time
}

func NewOrchestrator(policy app.Policy) *Orchestrator {
	reg := app.NewRegistry()
	rooms := app.NewRoomTable()
	screens := app.NewScreenShares()
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Screens:  screens,
		Router:   app.NewRouter(reg, rooms, screens),
		Policy:   policy,
		Now:      time.Now,
	}
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode outbound")
		return nil, false
	}
	return b, true
}

func (o *Orchestrator) send(cid domain.ConnID, v any) {
	f, ok := encode(v)
	if !ok {
		return
	}
	if err := o.Router.RelayDirect(cid, f); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(cid)).Msg("direct send skipped")
	}
}

func (o *Orchestrator) sendError(cid domain.ConnID, code string, err error) {
	o.send(cid, errorMsg{Type: TypeError, Code: code, Error: err.Error()})
}

// broadcast sends v to the room, skipping excluding when non-nil, and hands
// overflowing members to the policy.
func (o *Orchestrator) broadcast(room domain.RoomID, excluding *domain.ConnID, v any) {
	f, ok := encode(v)
	if !ok {
		return
	}
	res := o.Router.BroadcastToRoom(room, excluding, f)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		action := o.Policy.OnBackPressure(room, slow)
		switch action {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(room)).Str("conn", string(slow)).Msg("kicking slow member")
			if sink, ok := o.Router.Sink(slow); ok {
				// The transport reports the disconnect once its pumps stop.
				sink.Close()
			}
		case app.MarkSlow, app.DropFrame, app.NoAction:
			log.Debug().Str("module", "orch").Str("room", string(room)).Str("conn", string(slow)).Stringer("action", action).Msg("frame dropped")
		}
	}
}

func (o *Orchestrator) member(cid domain.ConnID) (domain.SessionMetadata, error) {
	md, err := o.Registry.Lookup(cid)
	if err != nil {
		return domain.SessionMetadata{}, ErrNotJoined
	}
	return md, nil
}

// timestamp never goes backwards even if the wall clock does.
func (o *Orchestrator) timestamp() string {
	now := o.Now().UTC()
	if now.Before(o.lastStamp) {
		now = o.lastStamp
	}
	o.lastStamp = now
	return now.Format(timestampLayout)
}

// checkInvariants logs loudly when the registry, room table and arbiter
// disagree about a room. There is no repair path.
func (o *Orchestrator) checkInvariants(room domain.RoomID) bool {
	ok := true
	members := o.Rooms.Members(room)
	for _, cid := range members {
		md, err := o.Registry.Lookup(cid)
		if err != nil || md.RoomID != room {
			log.Error().Str("module", "orch").Str("room", string(room)).Str("conn", string(cid)).Msg("invariant: member without matching registry entry")
			ok = false
		}
	}
	for _, cid := range o.Registry.InRoom(room) {
		if !o.Rooms.Contains(room, cid) {
			log.Error().Str("module", "orch").Str("room", string(room)).Str("conn", string(cid)).Msg("invariant: registered session missing from room")
			ok = false
		}
	}
	if sharer, sharing := o.Screens.CurrentSharer(room); sharing && !o.Rooms.Contains(room, sharer) {
		log.Error().Str("module", "orch").Str("room", string(room)).Str("conn", string(sharer)).Msg("invariant: sharer is not a member")
		ok = false
	}
	return ok
}
