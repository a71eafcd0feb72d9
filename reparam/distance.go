package reparam

import (
	"math"

	"github.com/avayla/gwarp/params"
)

// DistancePrior identifies the prior implied on a distance parameter, which
// fixes the volume element the transform must absorb.
type DistancePrior int

const (
	// PriorPowerLaw: p(d) ∝ d^k with a caller-supplied power.
	PriorPowerLaw DistancePrior = iota

	// PriorUniformComovingVolume: approximated by the cubic power law
	// (k = 2), which is exact for a Euclidean universe and a close local
	// approximation otherwise.
	PriorUniformComovingVolume

	// PriorUniform: no volume weighting (k = 0).
	PriorUniform
)

// Distance maps a positive, volumetric-prior distance d ∈ [dmin, dmax] to a
// scale suited to the base proposal: first to the prior-uniform coordinate
//
//	u = (d^(k+1) − dmin^(k+1)) / (dmax^(k+1) − dmin^(k+1)) ∈ [0, 1]
//
// then affinely onto [-1, 1]. Under the declared prior, u is uniform, which
// removes the strong radial gradient a flow would otherwise have to learn.
//
// The upper boundary is reflective: prime values past +1 fold back with
// |J| = 1, matching the physically correct behaviour at the far edge of a
// volumetric prior. The lower boundary stays hard.
type Distance struct {
	base
	name       string
	dmin, dmax float64
	k          float64 // prior power; the converter exponent is k+1
	span       float64 // dmax^(k+1) − dmin^(k+1)
	loPow      float64 // dmin^(k+1)
}

// NewDistance constructs a distance transform for name over bounds.
// power is only consulted for PriorPowerLaw and must be ≥ 0.
//
// Errors: ErrConfiguration on negative/unordered bounds, unknown prior, or
// a negative power.
func NewDistance(name string, bounds [2]float64, prior DistancePrior, power float64) (*Distance, error) {
	if name == "" {
		return nil, configErrf("distance: empty parameter name")
	}
	if bounds[0] < 0 || !(bounds[0] < bounds[1]) || math.IsInf(bounds[1], 0) {
		return nil, configErrf("distance: invalid bounds [%g, %g] for %q", bounds[0], bounds[1], name)
	}
	var k float64
	switch prior {
	case PriorPowerLaw:
		if power < 0 {
			return nil, configErrf("distance: negative power %g for %q", power, name)
		}
		k = power
	case PriorUniformComovingVolume:
		k = 2
	case PriorUniform:
		k = 0
	default:
		return nil, configErrf("distance: unknown prior %d", int(prior))
	}
	loPow := math.Pow(bounds[0], k+1)
	hiPow := math.Pow(bounds[1], k+1)
	return &Distance{
		base: base{
			parameters: []string{name},
			prime:      []string{name + "_u"},
		},
		name:  name,
		dmin:  bounds[0],
		dmax:  bounds[1],
		k:     k,
		span:  hiPow - loPow,
		loPow: loPow,
	}, nil
}

// Forward maps d onto [-1, 1] through the prior-uniform coordinate.
func (t *Distance) Forward(x, xPrime params.Point) (float64, error) {
	d, err := get(x, t.name)
	if err != nil {
		return 0, err
	}
	if d < t.dmin || d > t.dmax {
		return 0, domainErrf(t.name, d, "outside bounds [%g, %g]", t.dmin, t.dmax)
	}
	if !(d > 0) {
		// k·log d diverges at zero; treat the origin as out of domain.
		return 0, domainErrf(t.name, d, "non-positive distance")
	}
	u := (math.Pow(d, t.k+1) - t.loPow) / t.span
	xPrime[t.prime[0]] = 2*u - 1
	logJ := math.Log(2) + math.Log(t.k+1) + t.k*math.Log(d) - math.Log(t.span)
	if math.IsInf(logJ, 0) || math.IsNaN(logJ) {
		return 0, domainErrf(t.name, d, "non-finite Jacobian")
	}
	return logJ, nil
}

// Inverse maps the prime coordinate back to a distance, folding values past
// the upper edge back into range.
func (t *Distance) Inverse(x, xPrime params.Point) (float64, error) {
	z, err := get(xPrime, t.prime[0])
	if err != nil {
		return 0, err
	}
	if z > 1 {
		// Reflective upper edge only; the lower edge stays hard.
		z = 2 - z
	}
	if z < -1 || z > 1 {
		return 0, domainErrf(t.prime[0], z, "outside [-1, 1]")
	}
	u := (z + 1) / 2
	d := math.Pow(u*t.span+t.loPow, 1/(t.k+1))
	if !(d > 0) || math.IsNaN(d) {
		return 0, domainErrf(t.prime[0], z, "maps to non-positive distance")
	}
	x[t.name] = d
	logJ := math.Log(t.span) - math.Log(2) - math.Log(t.k+1) - t.k*math.Log(d)
	if math.IsInf(logJ, 0) || math.IsNaN(logJ) {
		return 0, domainErrf(t.prime[0], z, "non-finite Jacobian")
	}
	return logJ, nil
}
