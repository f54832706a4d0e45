package events

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Rand is the source of randomness for event selection and branching.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed int64) *rand.Rand {
	// Non-cryptographic PRNG is intentional for reproducible games.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "events"), seedWord(seed, "outcomes")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
