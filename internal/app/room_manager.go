package app

import (
	"slices"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// MetadataSource resolves a connection to its session metadata.
type MetadataSource interface {
	Lookup(cid domain.ConnID) (domain.SessionMetadata, error)
}

// RoomTable keeps the ordered member list of every non-empty room.
// A room entry is created on first join and pruned on last leave.
type RoomTable struct {
	rooms map[domain.RoomID][]domain.ConnID
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.RoomID][]domain.ConnID)}
}

// Join appends cid to the room. It reports false when cid was already there.
func (t *RoomTable) Join(room domain.RoomID, cid domain.ConnID) bool {
	members := t.rooms[room]
	if slices.Contains(members, cid) {
		return false
	}
	if members == nil {
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room opened")
	}
	t.rooms[room] = append(members, cid)
	return true
}

// Leave removes cid and prunes the room when it becomes empty.
func (t *RoomTable) Leave(room domain.RoomID, cid domain.ConnID) bool {
	members, ok := t.rooms[room]
	if !ok {
		return false
	}
	i := slices.Index(members, cid)
	if i < 0 {
		return false
	}
	members = slices.Delete(members, i, i+1)
	if len(members) == 0 {
		delete(t.rooms, room)
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room pruned")
		return true
	}
	t.rooms[room] = members
	return true
}

// Members returns a copy of the room's members in join order.
func (t *RoomTable) Members(room domain.RoomID) []domain.ConnID {
	return slices.Clone(t.rooms[room])
}

func (t *RoomTable) Contains(room domain.RoomID, cid domain.ConnID) bool {
	return slices.Contains(t.rooms[room], cid)
}

// SnapshotOthers describes every member except the requester, in join order.
// Members without metadata are skipped; that only happens if the
// registry and this table have drifted apart.
func (t *RoomTable) SnapshotOthers(room domain.RoomID, excluding domain.ConnID, src MetadataSource) []core.MemberDTO {
	members := t.rooms[room]
	out := make([]core.MemberDTO, 0, len(members))
	for _, cid := range members {
		if cid == excluding {
			continue
		}
		md, err := src.Lookup(cid)
		if err != nil {
			log.Error().Str("module", "app.rooms").Str("room", string(room)).Str("conn", string(cid)).Msg("member without metadata")
			continue
		}
		out = append(out, core.MemberDTO{ID: cid, DisplayName: md.DisplayName, Avatar: md.Avatar})
	}
	return out
}

// Rooms lists open rooms sorted by id.
func (t *RoomTable) Rooms() []domain.RoomID {
	out := make([]domain.RoomID, 0, len(t.rooms))
	for room := range t.rooms {
		out = append(out, room)
	}
	slices.Sort(out)
	return out
}
