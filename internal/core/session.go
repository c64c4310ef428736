package core

import "github.com/dkeye/Pictionary/internal/domain"

// PlayerSession binds a player name to its transport endpoint.
// This is what a room stores and fans out to. score is guarded by the
// owning room's lock.
type PlayerSession struct {
	sid   SessionID
	name  domain.PlayerName
	conn  SignalConnection
	score int
}

func NewPlayerSession(sid SessionID, name domain.PlayerName, conn SignalConnection) *PlayerSession {
	return &PlayerSession{sid: sid, name: name, conn: conn}
}

func (s *PlayerSession) SID() SessionID          { return s.sid }
func (s *PlayerSession) Name() domain.PlayerName { return s.name }
func (s *PlayerSession) Conn() SignalConnection  { return s.conn }
