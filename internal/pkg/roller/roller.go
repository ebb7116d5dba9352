// Package roller provides dice.Roller implementations for the engine.
//
// The loot generator draws every random value through the dice.Roller
// interface so that a caller-supplied seed reproduces an identical drop
// sequence. Seeded is that deterministic implementation; tests and the
// anti-cheat consistency checks rely on it.
package roller

import (
	"math/rand"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/delveforge/delve-engine/internal/errors"
)

// Seeded implements dice.Roller over a seeded math/rand source. It is not
// safe for concurrent use; the engine's single-threaded tick model never
// needs it to be.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded creates a deterministic roller from the given seed
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))} // #nosec G404 // reproducibility is the point
}

// Roll returns a uniform value in [1, size]
func (r *Seeded) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	return r.rng.Intn(size) + 1, nil
}

// RollN returns count uniform values in [1, size]
func (r *Seeded) RollN(count, size int) ([]int, error) {
	if count <= 0 {
		return nil, errors.InvalidArgumentf("roll count must be positive, got %d", count)
	}
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var _ dice.Roller = (*Seeded)(nil)
