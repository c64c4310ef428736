package app

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pictionary/internal/core"
	"github.com/dkeye/Pictionary/internal/domain"
	"github.com/dkeye/Pictionary/internal/protocol"
)

// Orchestrator routes connection events to rooms.
type Orchestrator struct {
	Registry *Registry
	Policy   Policy
}

// Membership is the seat one connection holds in one room.
type Membership struct {
	Room    *core.Room
	Session *core.PlayerSession
	left    atomic.Bool
}

// Join places conn into the room, creating the room if needed. A room that
// got retired between lookup and join is skipped and looked up again.
func (o *Orchestrator) Join(roomID domain.RoomID, name domain.PlayerName, sid core.SessionID, conn core.SignalConnection) (*Membership, error) {
	for {
		room := o.Registry.GetOrCreate(roomID)
		s, res, err := room.Join(sid, name, conn)
		if errors.Is(err, core.ErrRoomClosed) {
			log.Debug().Str("module", "app.orch").Str("room", string(roomID)).Msg("room retired during join, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("join room %s: %w", roomID, err)
		}
		log.Info().
			Str("module", "app.orch").
			Str("room", string(roomID)).
			Str("player", string(name)).
			Str("sid", string(sid)).
			Msg("player joined")
		o.handleResult(room, res)
		return &Membership{Room: room, Session: s}, nil
	}
}

// OnMessage decodes one raw client frame and applies it to the member's
// room. Bad frames are logged and dropped.
func (o *Orchestrator) OnMessage(m *Membership, raw []byte) {
	logger := log.With().
		Str("module", "app.orch").
		Str("room", string(m.Room.ID())).
		Str("player", string(m.Session.Name())).
		Logger()

	in, err := protocol.Decode(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("bad message")
		return
	}

	var res core.PublishResult
	switch in.Type {
	case protocol.KindDraw:
		res = m.Room.RelayDraw(m.Session, in.Data)
	case protocol.KindGuess:
		logger.Debug().Str("guess", *in.Guess).Msg("guess")
		_, res = m.Room.SubmitGuess(m.Session, *in.Guess)
	case protocol.KindStartRound:
		_, res = m.Room.StartRound(m.Session)
	case protocol.KindPing:
		res = m.Room.SendTo(m.Session, protocol.Pong{Type: protocol.KindPong})
	default:
		logger.Debug().Str("type", in.Type).Msg("unknown message type")
		return
	}
	o.handleResult(m.Room, res)
}

// OnDisconnect removes the member. Only the first call has any effect.
func (o *Orchestrator) OnDisconnect(m *Membership) {
	if !m.left.CompareAndSwap(false, true) {
		return
	}
	empty, res := m.Room.Leave(m.Session)
	log.Info().
		Str("module", "app.orch").
		Str("room", string(m.Room.ID())).
		Str("player", string(m.Session.Name())).
		Str("sid", string(m.Session.SID())).
		Msg("player left")
	o.handleResult(m.Room, res)
	if empty {
		o.Registry.DestroyIfEmpty(m.Room.ID())
	}
}

func (o *Orchestrator) handleResult(room *core.Room, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, d := range res.Failed {
		switch o.Policy.OnBackPressure(room, d) {
		case KickMember:
			log.Warn().
				Str("module", "app.orch").
				Str("room", string(room.ID())).
				Str("player", string(d.Session.Name())).
				Str("sid", string(d.Session.SID())).
				Msg("kicking unreachable member")
			d.Session.Conn().Close()
		case NoAction:
		}
	}
}
