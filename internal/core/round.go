package core

import (
	"strings"

	"github.com/dkeye/Pictionary/internal/domain"
)

// Round is the round state machine of one room. It is not safe for
// concurrent use; Room guards it.
type Round struct {
	phase  domain.Phase
	word   string
	drawer domain.PlayerName
}

func (r *Round) Phase() domain.Phase { return r.phase }

// Drawer returns the current drawer, or "" when idle. The drawer is kept
// after they leave the room.
func (r *Round) Drawer() domain.PlayerName {
	if r.phase != domain.PhaseActive {
		return ""
	}
	return r.drawer
}

// Word returns the active word, or "" when idle.
func (r *Round) Word() string {
	if r.phase != domain.PhaseActive {
		return ""
	}
	return r.word
}

// Start moves Idle -> Active. It reports false and changes nothing if a
// round is already running.
func (r *Round) Start(word string, drawer domain.PlayerName) bool {
	if r.phase == domain.PhaseActive {
		return false
	}
	r.phase = domain.PhaseActive
	r.word = word
	r.drawer = drawer
	return true
}

// Guess compares text with the active word ignoring case. A match ends the
// round and returns the revealed word.
func (r *Round) Guess(text string) (string, bool) {
	if r.phase != domain.PhaseActive {
		return "", false
	}
	if !strings.EqualFold(text, r.word) {
		return "", false
	}
	word := r.word
	r.reset()
	return word, true
}

func (r *Round) reset() {
	r.phase = domain.PhaseIdle
	r.word = ""
	r.drawer = ""
}
