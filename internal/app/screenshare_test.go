package app

import (
	"errors"
	"testing"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenShares_StartStop(t *testing.T) {
	s := NewScreenShares()
	_, ok := s.CurrentSharer("r1")
	assert.False(t, ok)

	require.NoError(t, s.StartShare("r1", "a"))
	require.NoError(t, s.StartShare("r1", "a"), "re-entrant start is a success")

	cur, ok := s.CurrentSharer("r1")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("a"), cur)

	require.NoError(t, s.StopShare("r1", "a"))
	_, ok = s.CurrentSharer("r1")
	assert.False(t, ok)
}

func TestScreenShares_Conflict(t *testing.T) {
	s := NewScreenShares()
	require.NoError(t, s.StartShare("r1", "a"))

	err := s.StartShare("r1", "b")
	require.ErrorIs(t, err, ErrShareConflict)
	var conflict *ShareConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, domain.ConnID("a"), conflict.Sharer)

	cur, _ := s.CurrentSharer("r1")
	assert.Equal(t, domain.ConnID("a"), cur)

	require.NoError(t, s.StartShare("r2", "b"), "rooms are independent")
}

func TestScreenShares_StopByNonSharer(t *testing.T) {
	s := NewScreenShares()
	assert.ErrorIs(t, s.StopShare("r1", "a"), ErrNotSharer)

	require.NoError(t, s.StartShare("r1", "a"))
	assert.ErrorIs(t, s.StopShare("r1", "b"), ErrNotSharer)
	cur, ok := s.CurrentSharer("r1")
	assert.True(t, ok)
	assert.Equal(t, domain.ConnID("a"), cur)
}

func TestScreenShares_ForceStop(t *testing.T) {
	s := NewScreenShares()
	assert.False(t, s.ForceStop("r1", "a"))

	require.NoError(t, s.StartShare("r1", "a"))
	assert.False(t, s.ForceStop("r1", "b"))
	assert.True(t, s.ForceStop("r1", "a"))
	_, ok := s.CurrentSharer("r1")
	assert.False(t, ok)
}
