// Package rng implements the xoshiro256** pseudo-random number generator.
//
// The generator is deterministic for a given seed, which is what makes
// generation runs reproducible: the same (exemplar, options, seed) triple
// always yields the same output.
package rng

import "math/bits"

// Xoshiro256 is the xoshiro256** generator of Blackman and Vigna.
// Not cryptographically secure. Not safe for concurrent use.
type Xoshiro256 struct {
	s [4]uint64
}

// New returns a generator seeded from a single 64-bit value. The state is
// expanded with splitmix64, as the xoshiro reference implementation
// recommends, so that small seeds do not produce correlated states.
func New(seed uint64) *Xoshiro256 {
	g := &Xoshiro256{}
	for i := range g.s {
		seed += 0x9E3779B97F4A7C15
		z := seed
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		g.s[i] = z ^ (z >> 31)
	}
	return g
}

// Uint64 returns the next value in the sequence.
func (g *Xoshiro256) Uint64() uint64 {
	s := &g.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9

	t := s[1] << 17
	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// Float64 returns a uniform value in [0, 1) built from the top 53 bits of
// the next output.
func (g *Xoshiro256) Float64() float64 {
	return float64(g.Uint64()>>11) / (1 << 53)
}
