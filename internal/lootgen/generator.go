// Package lootgen decides how many loot objects to spawn per tick. The
// probability of spawning grows with the time elapsed since the last spawn,
// so quiet maps fill up and busy maps stay scarce.
package lootgen

import (
	"math"
	"time"
)

// RandomSource yields a uniform value in [0, 1]. The default source always
// returns 1, making generation deterministic for a given elapsed time.
type RandomSource func() float64

type Generator struct {
	base        time.Duration
	probability float64
	unspent     time.Duration
	rand        RandomSource
}

// New creates a generator with the deterministic default random source.
// base is the reference interval and probability the chance of spawning one
// object for one looter within that interval.
func New(base time.Duration, probability float64) *Generator {
	return NewWithRandom(base, probability, func() float64 { return 1.0 })
}

func NewWithRandom(base time.Duration, probability float64, rand RandomSource) *Generator {
	return &Generator{
		base:        base,
		probability: probability,
		rand:        rand,
	}
}

// Generate returns how many loot objects to spawn after dt has passed with
// lootCount objects on the map and looterCount players hunting them. Elapsed
// time accumulates across calls and resets only when something spawns.
func (g *Generator) Generate(dt time.Duration, lootCount, looterCount int) int {
	g.unspent += dt

	shortage := 0
	if looterCount > lootCount {
		shortage = looterCount - lootCount
	}

	ratio := float64(g.unspent) / float64(g.base)
	p := clamp((1.0-math.Pow(1.0-g.probability, ratio))*g.rand(), 0.0, 1.0)

	n := int(math.Round(float64(shortage) * p))
	if n > 0 {
		g.unspent = 0
	}
	return n
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
