package random

import (
	"math/rand/v2"
	"time"
)

// Source is the randomness boss rolls and story draws are taken from.
type Source interface {
	// IntN returns a uniform int in [0, n). n must be positive.
	IntN(n int) int
}

type PCG struct {
	rng *rand.Rand
}

// New returns a PCG source. A zero seed means time-seeded.
func New(seed int64) *PCG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PCG{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (p *PCG) IntN(n int) int {
	return p.rng.IntN(n)
}

// Between returns a uniform int in [lo, hi]. hi < lo yields lo.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniform element of items, or the zero value when empty.
func Pick[T any](src Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[src.IntN(len(items))]
}
