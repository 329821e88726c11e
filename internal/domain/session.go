// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxRoomIDLen      = 64
	MaxDisplayNameLen = 36
	MaxAvatarLen      = 2048

	DefaultDisplayName = "guest"
)

var (
	ErrRoomIDEmpty        = errors.New("room id empty")
	ErrRoomIDTooLong      = errors.New("room id too long")
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrAvatarTooLong      = errors.New("avatar too long")
)

// ConnID identifies one live transport session. It is never reused.
type ConnID string

// NewConnID returns a fresh random connection id.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// SessionMetadata is what a joined connection told us about itself.
type SessionMetadata struct {
	RoomID      RoomID `json:"roomId"`
	DisplayName string `json:"username"`
	Avatar      string `json:"avatar,omitempty"`
}

// NewSessionMetadata validates and normalizes join input.
func NewSessionMetadata(roomID, displayName, avatar string) (SessionMetadata, error) {
	room, err := ParseRoomID(roomID)
	if err != nil {
		return SessionMetadata{}, err
	}
	name := strings.TrimSpace(displayName)
	if len(name) > MaxDisplayNameLen {
		return SessionMetadata{}, ErrDisplayNameTooLong
	}
	if name == "" {
		name = DefaultDisplayName
	}
	if len(avatar) > MaxAvatarLen {
		return SessionMetadata{}, ErrAvatarTooLong
	}
	return SessionMetadata{RoomID: room, DisplayName: name, Avatar: avatar}, nil
}
