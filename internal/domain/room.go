package domain

import "strings"

// RoomID is caller-chosen. A room exists only while it has members.
type RoomID string

// ParseRoomID trims raw and checks its length.
func ParseRoomID(raw string) (RoomID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrRoomIDEmpty
	}
	if len(s) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(s), nil
}
