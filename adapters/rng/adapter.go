package rng

import (
	"hash/fnv"
	"math/rand"
)

// Deterministic implements ports.RNGPort with splitmix-style stream
// derivation: each (seed, index) pair maps to an independent stream, so
// permutation i draws the same numbers no matter which worker runs it.
type Deterministic struct{}

// NewDeterministic creates the default RNG adapter
func NewDeterministic() *Deterministic {
	return &Deterministic{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (d *Deterministic) SeededStream(name string, seed int64) (*rand.Rand, error) {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(mix(seed, int64(h.Sum64())))), nil
}

// PermutationStream creates the RNG stream for one permutation index
func (d *Deterministic) PermutationStream(seed int64, index int) (*rand.Rand, error) {
	return rand.New(rand.NewSource(mix(seed, int64(index)))), nil
}

// mix folds two values through a splitmix64 finalizer so that adjacent
// indices do not produce correlated streams.
func mix(seed, stream int64) int64 {
	z := uint64(seed) + uint64(stream)*0x9E3779B97F4A7C15 + 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
