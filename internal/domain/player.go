// Package domain contains entity without logic, just meta-data
package domain

import "errors"

var (
	ErrNameEmpty   = errors.New("player name empty")
	ErrRoomIDEmpty = errors.New("room id empty")
)

// PlayerName identifies a player inside one room. It is not unique
// process-wide. The name is kept exactly as the client sent it.
type PlayerName string

func NewPlayerName(raw string) (PlayerName, error) {
	if raw == "" {
		return "", ErrNameEmpty
	}
	return PlayerName(raw), nil
}
