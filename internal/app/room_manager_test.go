package app

import (
	"testing"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomTable_JoinIsIdempotentAndOrdered(t *testing.T) {
	rt := NewRoomTable()
	assert.True(t, rt.Join("r1", "a"))
	assert.True(t, rt.Join("r1", "b"))
	assert.False(t, rt.Join("r1", "a"))

	assert.Equal(t, []domain.ConnID{"a", "b"}, rt.Members("r1"))
}

func TestRoomTable_LeavePrunesEmptyRoom(t *testing.T) {
	rt := NewRoomTable()
	rt.Join("r1", "a")
	rt.Join("r2", "b")

	assert.False(t, rt.Leave("r1", "zz"))
	assert.False(t, rt.Leave("missing", "a"))
	assert.True(t, rt.Leave("r1", "a"))

	assert.Empty(t, rt.Members("r1"))
	assert.Equal(t, []domain.RoomID{"r2"}, rt.Rooms())
}

func TestRoomTable_MembersIsACopy(t *testing.T) {
	rt := NewRoomTable()
	rt.Join("r1", "a")
	m := rt.Members("r1")
	m[0] = "mutated"
	assert.True(t, rt.Contains("r1", "a"))
}

func TestRoomTable_SnapshotOthers(t *testing.T) {
	reg := NewRegistry()
	rt := NewRoomTable()
	for _, p := range []struct {
		id   domain.ConnID
		name string
	}{{"a", "alice"}, {"b", "bob"}, {"c", "carol"}} {
		require.NoError(t, reg.Register(p.id, domain.SessionMetadata{RoomID: "r1", DisplayName: p.name}))
		rt.Join("r1", p.id)
	}

	got := rt.SnapshotOthers("r1", "b", reg)
	assert.Equal(t, []core.MemberDTO{
		{ID: "a", DisplayName: "alice"},
		{ID: "c", DisplayName: "carol"},
	}, got)

	assert.Empty(t, rt.SnapshotOthers("empty", "a", reg))
}

func TestRoomTable_RoomsSorted(t *testing.T) {
	rt := NewRoomTable()
	rt.Join("zeta", "a")
	rt.Join("alpha", "b")
	assert.Equal(t, []domain.RoomID{"alpha", "zeta"}, rt.Rooms())
}
