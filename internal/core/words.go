package core

import "math/rand/v2"

// PickFunc returns a uniformly random index in [0, n).
type PickFunc func(n int) int

func randomPick(n int) int { return rand.IntN(n) }
