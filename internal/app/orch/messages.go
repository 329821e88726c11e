package orch

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

// Outbound message types.
const (
	TypeWelcome             = "welcome"
	TypeError               = "error"
	TypePong                = "pong"
	TypeWhoAmI              = "whoami"
	TypeAllUsers            = "all-users"
	TypeUserJoined          = "user-joined"
	TypeUserLeft            = "user-left"
	TypeLeft                = "left"
	TypeReceiveSignal       = "receive-signal"
	TypeReturnedSignal      = "returned-signal"
	TypeShareStarted        = "screen-share-started"
	TypeShareStartedConfirm = "screen-share-started-confirm"
	TypeShareStopped        = "screen-share-stopped"
	TypeShareError          = "screen-share-error"
	TypeShareSignal         = "screen-share-signal"
	TypeShareSignalResponse = "screen-share-signal-response"
	TypeShareRejected       = "screen-share-rejected"
	TypeReceiveMessage      = "receive-message"
	TypeTyping              = "typing"
	TypeStopTyping          = "stop-typing"
	TypeDebugRoomState      = "debug-room-state"
)

const (
	StopReasonDisconnect = "disconnect"
	StopReasonLeave      = "leave"
)

type welcomeMsg struct {
	Type string        `json:"type"`
	ID   domain.ConnID `json:"id"`
}

type errorMsg struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type typeOnlyMsg struct {
	Type string `json:"type"`
}

type whoAmIMsg struct {
	Type     string        `json:"type"`
	ID       domain.ConnID `json:"id"`
	RoomID   domain.RoomID `json:"roomId,omitempty"`
	Username string        `json:"username,omitempty"`
}

type allUsersMsg struct {
	Type  string           `json:"type"`
	Users []core.MemberDTO `json:"users"`
}

type userJoinedMsg struct {
	Type     string        `json:"type"`
	UserID   domain.ConnID `json:"userId"`
	Username string        `json:"username"`
	Avatar   string        `json:"avatar,omitempty"`
}

type userLeftMsg struct {
	Type   string        `json:"type"`
	UserID domain.ConnID `json:"userId"`
}

type leftMsg struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type receiveSignalMsg struct {
	Type           string          `json:"type"`
	Signal         json.RawMessage `json:"signal"`
	CallerID       domain.ConnID   `json:"callerId"`
	CallerUsername string          `json:"callerUsername"`
	CallerAvatar   string          `json:"callerAvatar,omitempty"`
}

type returnedSignalMsg struct {
	Type   string          `json:"type"`
	Signal json.RawMessage `json:"signal"`
	ID     domain.ConnID   `json:"id"`
}

type shareStartedMsg struct {
	Type           string        `json:"type"`
	SharerID       domain.ConnID `json:"sharerId"`
	SharerUsername string        `json:"sharerUsername"`
}

type shareConfirmMsg struct {
	Type     string        `json:"type"`
	Success  bool          `json:"success"`
	SharerID domain.ConnID `json:"sharerId"`
}

type shareStoppedMsg struct {
	Type              string        `json:"type"`
	StoppedBy         domain.ConnID `json:"stoppedBy"`
	StoppedByUsername string        `json:"stoppedByUsername"`
	Reason            string        `json:"reason,omitempty"`
}

type shareErrorMsg struct {
	Type     string        `json:"type"`
	Error    string        `json:"error"`
	SharerID domain.ConnID `json:"sharerId,omitempty"`
}

type shareSignalMsg struct {
	Type       string          `json:"type"`
	From       domain.ConnID   `json:"from"`
	Signal     json.RawMessage `json:"signal"`
	SignalType string          `json:"signalType"`
}

type shareRejectedMsg struct {
	Type   string        `json:"type"`
	To     domain.ConnID `json:"to"`
	Reason string        `json:"reason"`
}

type receiveMessageMsg struct {
	Type      string        `json:"type"`
	UserID    domain.ConnID `json:"userId"`
	Username  string        `json:"username"`
	Avatar    string        `json:"avatar,omitempty"`
	Message   string        `json:"message"`
	Timestamp string        `json:"timestamp"`
}

type typingMsg struct {
	Type     string        `json:"type"`
	UserID   domain.ConnID `json:"userId"`
	Username string        `json:"username,omitempty"`
}

type debugRoomStateMsg struct {
	Type string `json:"type"`
	core.RoomState
}
