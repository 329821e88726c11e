package app

import (
	"fmt"
	"strings"

	"github.com/dkeye/Huddle/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

func (a BackpressureAction) String() string {
	switch a {
	case MarkSlow:
		return "mark_slow"
	case KickMember:
		return "kick"
	case DropFrame:
		return "drop"
	default:
		return "none"
	}
}

// ParseBackpressureAction maps a config string to an action.
func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoAction, nil
	case "mark_slow":
		return MarkSlow, nil
	case "kick":
		return KickMember, nil
	case "drop":
		return DropFrame, nil
	}
	return NoAction, fmt.Errorf("unknown backpressure action %q", s)
}

// Policy decides what happens to a member whose send buffer overflowed.
type Policy interface {
	OnBackPressure(room domain.RoomID, member domain.ConnID) BackpressureAction
}

// SimplePolicy applies the same action to every slow member.
type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.RoomID, domain.ConnID) BackpressureAction {
	return p.Action
}
