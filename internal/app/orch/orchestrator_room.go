package orch

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect binds a freshly opened transport. The connection stays unjoined
// until it sends join.
func (o *Orchestrator) Connect(cid domain.ConnID, sink core.SignalConnection) {
	o.Router.Attach(cid, sink)
	o.send(cid, welcomeMsg{Type: TypeWelcome, ID: cid})
	log.Info().Str("module", "orch").Str("conn", string(cid)).Msg("connected")
}

func (o *Orchestrator) Join(cid domain.ConnID, roomID, displayName, avatar string) error {
	md, err := domain.NewSessionMetadata(roomID, displayName, avatar)
	if err != nil {
		o.sendError(cid, "bad_payload", err)
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}

	if cur, err := o.Registry.Lookup(cid); err == nil {
		if cur.RoomID != md.RoomID {
			o.sendError(cid, "already_joined", ErrAlreadyJoined)
			return ErrAlreadyJoined
		}
		// Same room again: membership is untouched, the caller is re-synced.
		o.send(cid, allUsersMsg{Type: TypeAllUsers, Users: o.Rooms.SnapshotOthers(cur.RoomID, cid, o.Registry)})
		o.notifyActiveShare(cid, cur.RoomID)
		return nil
	}

	others := o.Rooms.SnapshotOthers(md.RoomID, cid, o.Registry)
	o.send(cid, allUsersMsg{Type: TypeAllUsers, Users: others})

	if err := o.Registry.Register(cid, md); err != nil {
		return err
	}
	o.Rooms.Join(md.RoomID, cid)

	o.broadcast(md.RoomID, &cid, userJoinedMsg{
		Type:     TypeUserJoined,
		UserID:   cid,
		Username: md.DisplayName,
		Avatar:   md.Avatar,
	})
	o.notifyActiveShare(cid, md.RoomID)
	o.checkInvariants(md.RoomID)

	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("room", string(md.RoomID)).Str("name", md.DisplayName).Int("others", len(others)).Msg("joined")
	return nil
}

// notifyActiveShare tells a (late) joiner about a share already in progress.
func (o *Orchestrator) notifyActiveShare(cid domain.ConnID, room domain.RoomID) {
	sharer, ok := o.Screens.CurrentSharer(room)
	if !ok || sharer == cid {
		return
	}
	md, err := o.Registry.Lookup(sharer)
	if err != nil {
		log.Error().Str("module", "orch").Str("room", string(room)).Str("conn", string(sharer)).Msg("sharer without metadata")
		return
	}
	o.send(cid, shareStartedMsg{Type: TypeShareStarted, SharerID: sharer, SharerUsername: md.DisplayName})
}

// Leave takes the connection out of its room but keeps the transport.
func (o *Orchestrator) Leave(cid domain.ConnID) error {
	md, ok := o.cleanup(cid, StopReasonLeave)
	if !ok {
		return ErrNotJoined
	}
	o.send(cid, leftMsg{Type: TypeLeft, RoomID: md.RoomID})
	return nil
}

// Disconnect is the transport-level end of a connection. Unknown or
// unjoined connections are a no-op apart from dropping the sink.
func (o *Orchestrator) Disconnect(cid domain.ConnID) {
	if md, ok := o.cleanup(cid, StopReasonDisconnect); ok {
		log.Info().Str("module", "orch").Str("conn", string(cid)).Str("room", string(md.RoomID)).Msg("disconnected")
	}
	o.Router.Detach(cid)
}

// cleanup stops the connection's share before touching membership, since
// the stop notice goes to whoever is still in the room.
func (o *Orchestrator) cleanup(cid domain.ConnID, reason string) (domain.SessionMetadata, bool) {
	md, err := o.Registry.Lookup(cid)
	if err != nil {
		return domain.SessionMetadata{}, false
	}

	if o.Screens.ForceStop(md.RoomID, cid) {
		o.broadcast(md.RoomID, &cid, shareStoppedMsg{
			Type:              TypeShareStopped,
			StoppedBy:         cid,
			StoppedByUsername: md.DisplayName,
			Reason:            reason,
		})
	}

	o.Rooms.Leave(md.RoomID, cid)
	if _, err := o.Registry.Remove(cid); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(cid)).Msg("registry remove after lookup")
	}

	o.broadcast(md.RoomID, &cid, userLeftMsg{Type: TypeUserLeft, UserID: cid})
	o.checkInvariants(md.RoomID)
	return md, true
}

func (o *Orchestrator) WhoAmI(cid domain.ConnID) {
	resp := whoAmIMsg{Type: TypeWhoAmI, ID: cid}
	if md, err := o.Registry.Lookup(cid); err == nil {
		resp.RoomID = md.RoomID
		resp.Username = md.DisplayName
	}
	o.send(cid, resp)
}

func (o *Orchestrator) Ping(cid domain.ConnID) {
	o.send(cid, typeOnlyMsg{Type: TypePong})
}

// RoomState is a read-only snapshot. ok is false for rooms with no members.
func (o *Orchestrator) RoomState(room domain.RoomID) (core.RoomState, bool) {
	members := o.Rooms.Members(room)
	if len(members) == 0 {
		return core.RoomState{RoomID: room, Users: []core.MemberDTO{}}, false
	}
	st := core.RoomState{
		RoomID: room,
		Users:  o.Rooms.SnapshotOthers(room, "", o.Registry),
	}
	if sharer, ok := o.Screens.CurrentSharer(room); ok {
		dto := core.MemberDTO{ID: sharer}
		if md, err := o.Registry.Lookup(sharer); err == nil {
			dto.DisplayName = md.DisplayName
			dto.Avatar = md.Avatar
		}
		st.Sharer = &dto
	}
	return st, true
}

// DebugRoomState answers the requester with a room snapshot. Any room may
// be inspected; nothing is mutated.
func (o *Orchestrator) DebugRoomState(cid domain.ConnID, roomID string) error {
	room, err := domain.ParseRoomID(roomID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	st, _ := o.RoomState(room)
	log.Debug().Str("module", "orch").Str("conn", string(cid)).Str("room", string(room)).Int("users", len(st.Users)).Msg("debug room state")
	o.send(cid, debugRoomStateMsg{Type: TypeDebugRoomState, RoomState: st})
	return nil
}

func (o *Orchestrator) ListRooms() []core.RoomInfo {
	rooms := o.Rooms.Rooms()
	out := make([]core.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		_, sharing := o.Screens.CurrentSharer(room)
		out = append(out, core.RoomInfo{
			RoomID:      room,
			MemberCount: len(o.Rooms.Members(room)),
			Sharing:     sharing,
		})
	}
	return out
}
