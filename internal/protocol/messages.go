// Package protocol holds the JSON messages exchanged with game clients.
// Every message carries a "type" discriminator.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Pictionary/internal/domain"
)

// Inbound kinds.
const (
	KindDraw       = "draw"
	KindGuess      = "guess"
	KindStartRound = "start_round"
	KindPing       = "ping"
)

// Outbound kinds.
const (
	KindPlayerJoined = "player_joined"
	KindPlayerLeft   = "player_left"
	KindCorrectGuess = "correct_guess"
	KindYourTurn     = "your_turn"
	KindRoundStart   = "round_start"
	KindPong         = "pong"
)

var (
	ErrMissingType  = errors.New("missing message type")
	ErrMissingField = errors.New("missing required field")
)

// Scores maps player names to points. encoding/json writes map keys sorted.
type Scores map[domain.PlayerName]int

// Inbound is a decoded client message. Only the fields relevant to Type
// are populated.
type Inbound struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Guess *string         `json:"guess,omitempty"`
}

// Decode parses a raw client frame and checks the fields its kind requires.
// Unknown kinds decode without error so the caller can ignore them.
func Decode(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode message: %w", err)
	}
	if in.Type == "" {
		return Inbound{}, ErrMissingType
	}
	switch in.Type {
	case KindDraw:
		if len(in.Data) == 0 {
			return Inbound{}, fmt.Errorf("%s: %w: data", in.Type, ErrMissingField)
		}
	case KindGuess:
		if in.Guess == nil {
			return Inbound{}, fmt.Errorf("%s: %w: guess", in.Type, ErrMissingField)
		}
	}
	return in, nil
}

type PlayerJoined struct {
	Type    string              `json:"type"`
	Player  domain.PlayerName   `json:"player"`
	Players []domain.PlayerName `json:"players"`
	Scores  Scores              `json:"scores"`
}

type PlayerLeft struct {
	Type    string              `json:"type"`
	Player  domain.PlayerName   `json:"player"`
	Players []domain.PlayerName `json:"players"`
	Scores  Scores              `json:"scores"`
}

// Draw is relayed to everyone but the sender. Data is passed through untouched.
type Draw struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type CorrectGuess struct {
	Type   string            `json:"type"`
	Player domain.PlayerName `json:"player"`
	Word   string            `json:"word"`
	Scores Scores            `json:"scores"`
}

// YourTurn is sent privately to the drawer.
type YourTurn struct {
	Type string `json:"type"`
	Word string `json:"word"`
}

type RoundStart struct {
	Type   string            `json:"type"`
	Drawer domain.PlayerName `json:"drawer"`
}

type Pong struct {
	Type string `json:"type"`
}

// Encode marshals an outbound message.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return b, nil
}
