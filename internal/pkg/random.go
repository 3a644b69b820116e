package pkg

import "math/rand/v2"

// Rand is the subset of a random source the game needs.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

// DefaultRand uses the auto-seeded, goroutine-safe top-level source.
func DefaultRand() Rand {
	return globalRand{}
}

func (globalRand) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // cosmetic and game randomness only
}

// Pick returns a random element of items, or the zero value when items is empty.
func Pick[T any](rnd Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}

	return items[rnd.IntN(len(items))]
}
