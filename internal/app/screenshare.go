package app

import (
	"errors"
	"fmt"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrShareConflict = errors.New("another user is already sharing their screen")
	ErrNotSharer     = errors.New("not the current sharer")
)

// ShareConflictError names the connection that currently holds the share.
type ShareConflictError struct {
	Sharer domain.ConnID
}

func (e *ShareConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrShareConflict, e.Sharer)
}

func (e *ShareConflictError) Is(target error) bool { return target == ErrShareConflict }

// ScreenShares arbitrates the single screen sharer of each room.
// A room with no entry is idle.
type ScreenShares struct {
	sharers map[domain.RoomID]domain.ConnID
}

func NewScreenShares() *ScreenShares {
	return &ScreenShares{sharers: make(map[domain.RoomID]domain.ConnID)}
}

// StartShare is idempotent for the current sharer.
func (s *ScreenShares) StartShare(room domain.RoomID, cid domain.ConnID) error {
	if cur, ok := s.sharers[room]; ok {
		if cur == cid {
			return nil
		}
		return &ShareConflictError{Sharer: cur}
	}
	s.sharers[room] = cid
	log.Info().Str("module", "app.screenshare").Str("room", string(room)).Str("conn", string(cid)).Msg("share started")
	return nil
}

func (s *ScreenShares) StopShare(room domain.RoomID, cid domain.ConnID) error {
	if cur, ok := s.sharers[room]; !ok || cur != cid {
		return ErrNotSharer
	}
	delete(s.sharers, room)
	log.Info().Str("module", "app.screenshare").Str("room", string(room)).Str("conn", string(cid)).Msg("share stopped")
	return nil
}

func (s *ScreenShares) CurrentSharer(room domain.RoomID) (domain.ConnID, bool) {
	cid, ok := s.sharers[room]
	return cid, ok
}

// ForceStop clears the share only if cid holds it. Mismatch is not an error.
func (s *ScreenShares) ForceStop(room domain.RoomID, cid domain.ConnID) bool {
	if cur, ok := s.sharers[room]; ok && cur == cid {
		delete(s.sharers, room)
		log.Info().Str("module", "app.screenshare").Str("room", string(room)).Str("conn", string(cid)).Msg("share force-stopped")
		return true
	}
	return false
}
