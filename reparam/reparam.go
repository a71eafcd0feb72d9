// Package reparam - the Reparameterisation contract and shared plumbing.
//
// Every transform in this package implements Reparameterisation: it owns a
// subset of physical parameters, produces a (possibly different-sized)
// subset of transformed parameters, and reports the log-Jacobian of each
// call so densities can be converted between spaces.
//
// Design principles:
//   - Transforms write into the caller-supplied output Point and never
//     mutate their input side; the Composite owns point assembly.
//   - Strict sentinels: ErrDomain for runtime violations, ErrConfiguration
//     at construction. No panics on user input.
//   - Determinism: transforms that draw auxiliary variables take an
//     explicit *rand.Rand; same seed ⇒ identical results.
package reparam

import (
	"math/rand/v2"

	"github.com/avayla/gwarp/params"
)

// Reparameterisation is a bidirectional, Jacobian-tracking coordinate
// transform over a declared subset of physical parameters.
//
// Forward reads the owned parameters (plus any Requires context) from x and
// writes the transformed parameters into xPrime, returning the
// log-Jacobian log|det J_T| of the physical→transformed map at x.
//
// Inverse reads the transformed parameters from xPrime (plus any Requires
// context from the partially reconstructed x) and writes the physical
// parameters into x, returning the log-Jacobian of the transformed→physical
// map, which equals the negation of Forward's value for the same pair.
type Reparameterisation interface {
	// Parameters returns the owned physical parameter names.
	Parameters() []string

	// PrimeParameters returns the transformed parameter names produced by
	// Forward and consumed by Inverse.
	PrimeParameters() []string

	// Requires returns physical parameter names this transform reads for
	// context without owning them. The Composite sequences a requiring
	// transform before the owners of its required parameters so that the
	// reverse-order inverse pass reconstructs the context first.
	Requires() []string

	// Forward applies the physical→transformed map.
	Forward(x, xPrime params.Point) (logJ float64, err error)

	// Inverse applies the transformed→physical map.
	Inverse(x, xPrime params.Point) (logJ float64, err error)
}

// Fittable marks reparameterisations whose internal state (e.g. rescaling
// bounds) is estimated from the live-point population and then frozen until
// the next Update.
type Fittable interface {
	Reparameterisation

	// Update refits internal state from physical-space points.
	Update(points []params.Point) error
}

// Discrete marks reparameterisations whose prime set includes
// integer-valued parameters (e.g. a mode index). Continuous perturbation
// machinery must leave these parameters untouched.
type Discrete interface {
	Reparameterisation

	// DiscretePrimeParameters returns the integer-valued prime names.
	DiscretePrimeParameters() []string
}

// base carries the name bookkeeping shared by all transforms.
type base struct {
	parameters []string
	prime      []string
	requires   []string
}

func (b *base) Parameters() []string      { return b.parameters }
func (b *base) PrimeParameters() []string { return b.prime }
func (b *base) Requires() []string        { return b.requires }

// get reads one named value from a point, converting a missing key into a
// DomainError so the bounded retry machinery upstream can absorb it.
func get(p params.Point, name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, domainErrf(name, 0, "missing from point")
	}
	return v, nil
}

// orDefaultRNG substitutes the package default stream for a nil RNG.
func orDefaultRNG(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rngFromSeed(0)
	}
	return rng
}
