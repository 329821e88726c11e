package orch

import (
	"strings"

	"github.com/dkeye/Huddle/internal/domain"
)

const MaxMessageLen = 2000

// sameRoom resolves the sender and checks the room it named, if any.
func (o *Orchestrator) sameRoom(cid domain.ConnID, roomID string) (domain.SessionMetadata, error) {
	md, err := o.member(cid)
	if err != nil {
		return md, err
	}
	if r := strings.TrimSpace(roomID); r != "" && domain.RoomID(r) != md.RoomID {
		return md, ErrRoomMismatch
	}
	return md, nil
}

// SendMessage broadcasts chat to the whole room, sender included. The
// server timestamp is the ordering clients display.
func (o *Orchestrator) SendMessage(cid domain.ConnID, roomID, text string) error {
	md, err := o.sameRoom(cid, roomID)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" || len(text) > MaxMessageLen {
		return ErrBadMessage
	}
	o.broadcast(md.RoomID, nil, receiveMessageMsg{
		Type:      TypeReceiveMessage,
		UserID:    cid,
		Username:  md.DisplayName,
		Avatar:    md.Avatar,
		Message:   text,
		Timestamp: o.timestamp(),
	})
	return nil
}

func (o *Orchestrator) Typing(cid domain.ConnID, roomID string) error {
	md, err := o.sameRoom(cid, roomID)
	if err != nil {
		return err
	}
	o.broadcast(md.RoomID, &cid, typingMsg{Type: TypeTyping, UserID: cid, Username: md.DisplayName})
	return nil
}

func (o *Orchestrator) StopTyping(cid domain.ConnID, roomID string) error {
	md, err := o.sameRoom(cid, roomID)
	if err != nil {
		return err
	}
	o.broadcast(md.RoomID, &cid, typingMsg{Type: TypeStopTyping, UserID: cid})
	return nil
}
