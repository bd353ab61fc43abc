package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(name string, seed int64) (*rand.Rand, error)

	// PermutationStream creates the RNG stream for one permutation index.
	// Streams depend only on (seed, index), never on worker assignment, so a
	// run replays identically at any worker count.
	PermutationStream(seed int64, index int) (*rand.Rand, error)
}
