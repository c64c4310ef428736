package core

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pictionary/internal/domain"
	"github.com/dkeye/Pictionary/internal/protocol"
)

const (
	DefaultSendTimeout = 2 * time.Second
	DefaultMaxFanout   = 16
)

type RoomOptions struct {
	// Words is the list a round word is drawn from. Empty means domain.DefaultWords.
	Words []string
	// Pick chooses words and drawers. Nil means uniform random.
	Pick        PickFunc
	SendTimeout time.Duration
	MaxFanout   int
}

func (o RoomOptions) withDefaults() RoomOptions {
	if len(o.Words) == 0 {
		o.Words = domain.DefaultWords
	}
	if o.Pick == nil {
		o.Pick = randomPick
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = DefaultSendTimeout
	}
	if o.MaxFanout <= 0 {
		o.MaxFanout = DefaultMaxFanout
	}
	return o
}

// Room is a threadsafe in-memory game room. Every exported method is one
// critical section; fan-out happens inside it so each recipient sees
// events in the order the room applied them.
// It never closes adapter-owned resources except a connection displaced
// by a duplicate join.
type Room struct {
	id   domain.RoomID
	opts RoomOptions
	log  zerolog.Logger

	mu       sync.Mutex
	order    []domain.PlayerName
	sessions map[domain.PlayerName]*PlayerSession
	round    Round
	closed   bool
}

func NewRoom(id domain.RoomID, opts RoomOptions) *Room {
	return &Room{
		id:       id,
		opts:     opts.withDefaults(),
		log:      log.With().Str("module", "core.room").Str("room", string(id)).Logger(),
		sessions: make(map[domain.PlayerName]*PlayerSession),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Join adds a session for name. A session already holding the name is
// replaced in place, its score reset and its connection closed.
func (r *Room) Join(sid SessionID, name domain.PlayerName, conn SignalConnection) (*PlayerSession, PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, PublishResult{}, ErrRoomClosed
	}

	s := NewPlayerSession(sid, name, conn)
	displaced, exists := r.sessions[name]
	if !exists {
		r.order = append(r.order, name)
	}
	r.sessions[name] = s
	if exists {
		r.log.Info().
			Str("player", string(name)).
			Str("sid", string(sid)).
			Str("displaced_sid", string(displaced.sid)).
			Msg("duplicate name, replacing session")
		displaced.conn.Close()
	} else {
		r.log.Info().Str("player", string(name)).Str("sid", string(sid)).Msg("member added")
	}

	res := r.broadcastLocked(protocol.PlayerJoined{
		Type:    protocol.KindPlayerJoined,
		Player:  name,
		Players: r.playersLocked(),
		Scores:  r.scoresLocked(),
	})
	return s, res, nil
}

// Leave removes s and reports whether the room is now empty. Leaving with
// a session that was already replaced or removed changes nothing.
func (r *Room) Leave(s *PlayerSession) (bool, PublishResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isCurrentLocked(s) {
		return len(r.sessions) == 0, PublishResult{}
	}

	delete(r.sessions, s.name)
	r.order = slices.DeleteFunc(r.order, func(n domain.PlayerName) bool { return n == s.name })
	r.log.Info().Str("player", string(s.name)).Str("sid", string(s.sid)).Msg("member removed")

	res := r.broadcastLocked(protocol.PlayerLeft{
		Type:    protocol.KindPlayerLeft,
		Player:  s.name,
		Players: r.playersLocked(),
		Scores:  r.scoresLocked(),
	})
	return len(r.sessions) == 0, res
}

// RelayDraw forwards payload unchanged to every member except the sender.
func (r *Room) RelayDraw(from *PlayerSession, payload json.RawMessage) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isCurrentLocked(from) {
		return PublishResult{}
	}
	frame, err := protocol.Encode(protocol.Draw{Type: protocol.KindDraw, Data: payload})
	if err != nil {
		r.log.Error().Err(err).Msg("encode draw")
		return PublishResult{}
	}
	batch := make([]outbound, 0, len(r.order))
	for _, name := range r.order {
		s := r.sessions[name]
		if s == from {
			continue
		}
		batch = append(batch, outbound{session: s, frame: frame})
	}
	return r.deliver(batch)
}

// StartRound begins a round if at least two members are present and no
// round is running; otherwise it is a no-op and reports false.
func (r *Room) StartRound(by *PlayerSession) (bool, PublishResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isCurrentLocked(by) {
		return false, PublishResult{}
	}
	if len(r.order) < 2 {
		r.log.Debug().Int("players", len(r.order)).Msg("start_round ignored, not enough players")
		return false, PublishResult{}
	}
	if r.round.Phase() == domain.PhaseActive {
		r.log.Debug().Msg("start_round ignored, round already active")
		return false, PublishResult{}
	}

	word := r.opts.Words[r.opts.Pick(len(r.opts.Words))]
	drawer := r.order[r.opts.Pick(len(r.order))]
	r.round.Start(word, drawer)
	r.log.Info().Str("drawer", string(drawer)).Str("by", string(by.name)).Msg("round started")

	yourTurn, err := protocol.Encode(protocol.YourTurn{Type: protocol.KindYourTurn, Word: word})
	if err != nil {
		r.log.Error().Err(err).Msg("encode your_turn")
		return true, PublishResult{}
	}
	roundStart, err := protocol.Encode(protocol.RoundStart{Type: protocol.KindRoundStart, Drawer: drawer})
	if err != nil {
		r.log.Error().Err(err).Msg("encode round_start")
		return true, PublishResult{}
	}

	batch := make([]outbound, 0, len(r.order))
	for _, name := range r.order {
		frame := roundStart
		if name == drawer {
			frame = yourTurn
		}
		batch = append(batch, outbound{session: r.sessions[name], frame: frame})
	}
	return true, r.deliver(batch)
}

// SubmitGuess scores a correct guess and ends the round. Wrong guesses and
// guesses outside an active round are dropped without any output.
func (r *Room) SubmitGuess(from *PlayerSession, text string) (bool, PublishResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isCurrentLocked(from) {
		return false, PublishResult{}
	}
	word, ok := r.round.Guess(text)
	if !ok {
		return false, PublishResult{}
	}
	from.score++
	r.log.Info().Str("player", string(from.name)).Int("score", from.score).Msg("correct guess")

	return true, r.broadcastLocked(protocol.CorrectGuess{
		Type:   protocol.KindCorrectGuess,
		Player: from.name,
		Word:   word,
		Scores: r.scoresLocked(),
	})
}

// Broadcast delivers v to every member.
func (r *Room) Broadcast(v any) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcastLocked(v)
}

// SendTo delivers v to one member only.
func (r *Room) SendTo(s *PlayerSession, v any) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isCurrentLocked(s) {
		return PublishResult{}
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		r.log.Error().Err(err).Msg("encode direct message")
		return PublishResult{}
	}
	return r.deliver([]outbound{{session: s, frame: frame}})
}

// Snapshot returns players, scores and round state. The word stays hidden.
func (r *Room) Snapshot() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := RoomInfo{
		ID:      r.id,
		Players: r.playersLocked(),
		Scores:  r.scoresLocked(),
		Phase:   r.round.Phase(),
	}
	if _, ok := r.sessions[r.round.Drawer()]; ok {
		info.Drawer = r.round.Drawer()
	}
	return info
}

// RetireIfEmpty marks an empty room closed so later joins fail with
// ErrRoomClosed. It reports whether the room was retired.
func (r *Room) RetireIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) != 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) isCurrentLocked(s *PlayerSession) bool {
	return s != nil && r.sessions[s.name] == s
}

func (r *Room) broadcastLocked(v any) PublishResult {
	frame, err := protocol.Encode(v)
	if err != nil {
		r.log.Error().Err(err).Msg("encode broadcast")
		return PublishResult{}
	}
	batch := make([]outbound, 0, len(r.order))
	for _, name := range r.order {
		batch = append(batch, outbound{session: r.sessions[name], frame: frame})
	}
	return r.deliver(batch)
}

func (r *Room) playersLocked() []domain.PlayerName {
	return append(make([]domain.PlayerName, 0, len(r.order)), r.order...)
}

func (r *Room) scoresLocked() protocol.Scores {
	scores := make(protocol.Scores, len(r.sessions))
	for name, s := range r.sessions {
		scores[name] = s.score
	}
	return scores
}
