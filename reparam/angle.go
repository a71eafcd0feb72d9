package reparam

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avayla/gwarp/params"
)

// Angle maps a periodic angle θ ∈ [lower, upper) onto the plane so the base
// proposal — whose density model assumes unbounded, non-periodic support —
// sees no discontinuity at the wrap point.
//
// The angle is first scaled onto the full circle, φ = s·(θ − lower) with
// s = 2π/(upper − lower), then lifted to Cartesian coordinates
// (x, y) = (r·cos φ, r·sin φ) with an auxiliary radius r drawn from a
// Chi(2) distribution. The radius is recovered on Inverse as r = hypot(x, y),
// so the pair round-trips exactly.
//
// Jacobian bookkeeping: the transformed density is
// p'(x, y) = p(θ)·q(r)/(s·r), hence Forward returns
// logJ = log(s·r) − log q(r) and Inverse returns its negation for the same
// pair, keeping the change-of-variables identity exact.
type Angle struct {
	base
	name   string
	lo, hi float64
	scale  float64
	radial distuv.Chi
	rng    *rand.Rand
}

// NewAngle constructs a periodic angle transform for name over
// bounds [lower, upper). A nil rng selects the package default stream.
//
// Errors: ErrConfiguration on empty name or non-finite/unordered bounds.
func NewAngle(name string, bounds [2]float64, rng *rand.Rand) (*Angle, error) {
	if name == "" {
		return nil, configErrf("angle: empty parameter name")
	}
	if !(bounds[0] < bounds[1]) || math.IsInf(bounds[0], 0) || math.IsInf(bounds[1], 0) {
		return nil, configErrf("angle: invalid bounds [%g, %g] for %q", bounds[0], bounds[1], name)
	}
	rng = orDefaultRNG(rng)
	return &Angle{
		base: base{
			parameters: []string{name},
			prime:      []string{name + "_x", name + "_y"},
		},
		name:   name,
		lo:     bounds[0],
		hi:     bounds[1],
		scale:  2 * math.Pi / (bounds[1] - bounds[0]),
		radial: distuv.Chi{K: 2, Src: rng},
		rng:    rng,
	}, nil
}

// Forward lifts θ to the plane with a freshly drawn auxiliary radius.
func (a *Angle) Forward(x, xPrime params.Point) (float64, error) {
	theta, err := get(x, a.name)
	if err != nil {
		return 0, err
	}
	if theta < a.lo || theta >= a.hi {
		return 0, domainErrf(a.name, theta, "outside periodic domain [%g, %g)", a.lo, a.hi)
	}
	r := a.radial.Rand()
	if !(r > 0) || math.IsInf(r, 1) {
		return 0, domainErrf(a.name, r, "degenerate auxiliary radius")
	}
	phi := a.scale * (theta - a.lo)
	xPrime[a.prime[0]] = r * math.Cos(phi)
	xPrime[a.prime[1]] = r * math.Sin(phi)
	return math.Log(a.scale*r) - a.radial.LogProb(r), nil
}

// Inverse recovers θ from the plane coordinates and drops the radius.
func (a *Angle) Inverse(x, xPrime params.Point) (float64, error) {
	xv, err := get(xPrime, a.prime[0])
	if err != nil {
		return 0, err
	}
	yv, err := get(xPrime, a.prime[1])
	if err != nil {
		return 0, err
	}
	r := math.Hypot(xv, yv)
	if !(r > 0) || math.IsInf(r, 1) || math.IsNaN(r) {
		return 0, domainErrf(a.prime[0], r, "non-invertible radius")
	}
	phi := math.Atan2(yv, xv)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := a.lo + phi/a.scale
	if theta >= a.hi {
		// atan2 lands exactly on the wrap point; identify it with the origin.
		theta = a.lo
	}
	x[a.name] = theta
	return a.radial.LogProb(r) - math.Log(a.scale*r), nil
}
