package reparam

import (
	"math"

	"github.com/avayla/gwarp/params"
)

// AngleSine maps a polar angle θ ∈ [lower, upper] ⊆ [0, π] with a
// sine-shaped prior to u = cos θ. Under a sine prior the transformed
// parameter is uniform, which is exactly the shape a flow-based proposal
// handles best.
//
// The forward log-Jacobian is log sin θ. The endpoints θ = 0 and θ = π are
// removable singularities of the inverse; per the error policy they are
// reported as domain errors, never clipped.
type AngleSine struct {
	base
	name   string
	lo, hi float64
}

// NewAngleSine constructs a sine-prior angle transform for name over
// bounds ⊆ [0, π].
//
// Errors: ErrConfiguration when the bounds are unordered or extend outside
// [0, π].
func NewAngleSine(name string, bounds [2]float64) (*AngleSine, error) {
	if name == "" {
		return nil, configErrf("angle-sine: empty parameter name")
	}
	if !(bounds[0] < bounds[1]) || bounds[0] < 0 || bounds[1] > math.Pi {
		return nil, configErrf("angle-sine: bounds [%g, %g] for %q must be ordered and within [0, π]", bounds[0], bounds[1], name)
	}
	return &AngleSine{
		base: base{
			parameters: []string{name},
			prime:      []string{name + "_u"},
		},
		name: name,
		lo:   bounds[0],
		hi:   bounds[1],
	}, nil
}

// Forward maps θ to cos θ with logJ = log sin θ.
func (a *AngleSine) Forward(x, xPrime params.Point) (float64, error) {
	theta, err := get(x, a.name)
	if err != nil {
		return 0, err
	}
	if theta < a.lo || theta > a.hi {
		return 0, domainErrf(a.name, theta, "outside bounds [%g, %g]", a.lo, a.hi)
	}
	s := math.Sin(theta)
	if !(s > 0) {
		return 0, domainErrf(a.name, theta, "singular Jacobian at sin θ = %g", s)
	}
	xPrime[a.prime[0]] = math.Cos(theta)
	return math.Log(s), nil
}

// Inverse maps u back to θ = acos u with logJ = −log sin θ.
func (a *AngleSine) Inverse(x, xPrime params.Point) (float64, error) {
	u, err := get(xPrime, a.prime[0])
	if err != nil {
		return 0, err
	}
	if u < -1 || u > 1 {
		return 0, domainErrf(a.prime[0], u, "outside [-1, 1]")
	}
	theta := math.Acos(u)
	if theta < a.lo || theta > a.hi {
		return 0, domainErrf(a.prime[0], u, "maps to θ=%g outside [%g, %g]", theta, a.lo, a.hi)
	}
	s := math.Sin(theta)
	if !(s > 0) {
		return 0, domainErrf(a.prime[0], u, "singular Jacobian at sin θ = %g", s)
	}
	x[a.name] = theta
	return -math.Log(s), nil
}
