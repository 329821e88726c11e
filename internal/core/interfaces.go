package core

import "github.com/dkeye/Huddle/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID          domain.ConnID `json:"id"`
	DisplayName string        `json:"username"`
	Avatar      string        `json:"avatar,omitempty"`
}

// RoomState is the diagnostic snapshot of one room.
type RoomState struct {
	RoomID domain.RoomID `json:"roomId"`
	Users  []MemberDTO   `json:"users"`
	Sharer *MemberDTO    `json:"screenSharer"`
}

type RoomInfo struct {
	RoomID      domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
	Sharing     bool          `json:"sharing"`
}
