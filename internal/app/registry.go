package app

import (
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pictionary/internal/core"
	"github.com/dkeye/Pictionary/internal/domain"
)

// Registry maps room ids to live rooms. Rooms are created on first join
// and dropped as soon as they are empty. Lock order is registry, then room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.Room
	opts  core.RoomOptions
}

func NewRegistry(opts core.RoomOptions) *Registry {
	return &Registry{
		rooms: make(map[domain.RoomID]*core.Room),
		opts:  opts,
	}
}

func (r *Registry) GetOrCreate(id domain.RoomID) *core.Room {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok = r.rooms[id]; ok {
		return room
	}
	room = core.NewRoom(id, r.opts)
	r.rooms[id] = room
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return room
}

func (r *Registry) Get(id domain.RoomID) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// DestroyIfEmpty removes the room only if it has no members at the moment
// of the check. The room is retired under its own lock, so a join that
// loses the race sees core.ErrRoomClosed instead of joining a dead room.
func (r *Registry) DestroyIfEmpty(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	if !room.RetireIfEmpty() {
		return false
	}
	delete(r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room destroyed")
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// List returns a snapshot of every room sorted by id.
func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Snapshot())
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}
