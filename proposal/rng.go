// Package proposal - RNG utilities shared by the proposal variants.
//
// Goals:
//   - Determinism: same seed ⇒ identical results across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Interoperability: the returned *rand.Rand satisfies rand.Source, so it
//     can feed gonum's distuv distributions directly.
//
// Concurrency:
//   - *rand.Rand is NOT goroutine-safe. Each Proposal instance owns its
//     streams; construct independent instances for parallel callers.
package proposal

import "math/rand/v2"

// defaultRNGSeed is the fixed “zero” seed used when callers pass seed==0.
const defaultRNGSeed uint64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
func rngFromSeed(seed uint64) *rand.Rand {
	var s = seed
	if s == 0 {
		s = defaultRNGSeed
	}
	return rand.New(rand.NewPCG(s, mix64(s)))
}

// deriveRNG creates an independent deterministic RNG stream from a base RNG
// and a stream identifier. base.Uint64() is consumed once to decorrelate
// consecutive derivations.
func deriveRNG(base *rand.Rand, stream uint64) *rand.Rand {
	var parent = defaultRNGSeed
	if base != nil {
		parent = base.Uint64()
	}
	var s = mix64(parent ^ (stream + 0x9e3779b97f4a7c15))
	return rand.New(rand.NewPCG(s, mix64(s)))
}

// mix64 is a SplitMix64-style finalizer; see Vigna 2014 for the constants.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
