package app

import (
	"testing"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterLookupRemove(t *testing.T) {
	r := NewRegistry()
	md := domain.SessionMetadata{RoomID: "r1", DisplayName: "alice"}

	require.NoError(t, r.Register("a", md))
	assert.ErrorIs(t, r.Register("a", md), ErrDuplicateConnection)

	got, err := r.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, md, got)
	assert.Equal(t, 1, r.Len())

	removed, err := r.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, md, removed)

	_, err = r.Remove("a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Lookup("a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, r.Len())
}

func TestRegistry_InRoom(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", domain.SessionMetadata{RoomID: "r1"}))
	require.NoError(t, r.Register("b", domain.SessionMetadata{RoomID: "r2"}))
	require.NoError(t, r.Register("c", domain.SessionMetadata{RoomID: "r1"}))

	assert.ElementsMatch(t, []domain.ConnID{"a", "c"}, r.InRoom("r1"))
	assert.Empty(t, r.InRoom("nope"))
}
