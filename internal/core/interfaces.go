package core

import (
	"context"
	"errors"

	"github.com/dkeye/Pictionary/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

var (
	ErrRoomClosed = errors.New("room closed")
	ErrConnClosed = errors.New("connection closed")
)

// Frame is an encoded outbound message.
type Frame []byte

// SessionID identifies one client connection.
type SessionID string

// SignalConnection abstracts the messaging transport of one client.
// Owned by the adapter; the adapter must Close() it.
// Send must return once ctx is done.
type SignalConnection interface {
	Send(ctx context.Context, f Frame) error
	Close()
}

// Delivery is the outcome of sending one frame to one session.
type Delivery struct {
	Session *PlayerSession
	Err     error
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	Delivered int
	Failed    []Delivery
}

// RoomInfo is a read-only view of a room for APIs. The active word is
// never part of it.
type RoomInfo struct {
	ID      domain.RoomID             `json:"id"`
	Players []domain.PlayerName       `json:"players"`
	Scores  map[domain.PlayerName]int `json:"scores"`
	Phase   domain.Phase              `json:"phase"`
	// Drawer is empty while idle and after the drawer left mid-round; the
	// round itself stays active until someone guesses the word.
	Drawer domain.PlayerName `json:"drawer,omitempty"`
}
