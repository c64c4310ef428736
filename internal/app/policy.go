package app

import (
	"fmt"

	"github.com/dkeye/Pictionary/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose delivery failed.
type Policy interface {
	OnBackPressure(room *core.Room, d core.Delivery) BackpressureAction
}

// LogPolicy keeps slow members; the failure is only logged by the room.
type LogPolicy struct{}

func (LogPolicy) OnBackPressure(*core.Room, core.Delivery) BackpressureAction {
	return NoAction
}

// KickPolicy closes the connection of any member that could not be reached.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(*core.Room, core.Delivery) BackpressureAction {
	return KickMember
}

// PolicyByName maps a config value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "log":
		return LogPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
