package reparam

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avayla/gwarp/params"
)

// SkyConvention selects how an AnglePair interprets its two angles.
type SkyConvention int

const (
	// RADec: azimuthal angle α ∈ [0, 2π), elevation β ∈ [-π/2, π/2].
	RADec SkyConvention = iota

	// AzZen: azimuthal angle α ∈ [0, 2π), zenith β ∈ [0, π].
	AzZen
)

// String returns the canonical convention name.
func (c SkyConvention) String() string {
	switch c {
	case RADec:
		return "ra-dec"
	case AzZen:
		return "az-zen"
	default:
		return "sky-convention(?)"
	}
}

// AnglePair transforms a correlated pair of sky angles jointly onto 3-D
// Cartesian coordinates, with an auxiliary radius r drawn from a Chi(3)
// distribution on Forward and recovered as the vector norm on Inverse.
//
// The log-Jacobian is the log-determinant of the full 3×3 derivative matrix
// of the joint map, evaluated with mat.LogDet — not the product of marginal
// per-angle derivatives, which would be wrong for a correlated pair.
// As with Angle, the auxiliary density is folded into the reported value:
// Forward returns log|det J| − log q(r) so that
// log p_physical = log p_transformed + logJ holds exactly.
type AnglePair struct {
	base
	alphaName, betaName string
	alphaLo, alphaHi    float64
	betaLo, betaHi      float64
	conv                SkyConvention
	radial              distuv.Chi
	rng                 *rand.Rand
}

// NewAnglePair constructs a joint sky transform.
//
// Contract:
//   - bounds[alpha] must span [0, 2π).
//   - bounds[beta] must lie within [-π/2, π/2] (RADec) or [0, π] (AzZen).
//
// A nil rng selects the package default stream.
//
// Errors: ErrConfiguration on missing names, missing bounds, or bounds that
// do not match the convention.
func NewAnglePair(alpha, beta string, bounds map[string][2]float64, conv SkyConvention, rng *rand.Rand) (*AnglePair, error) {
	if alpha == "" || beta == "" {
		return nil, configErrf("angle-pair: empty parameter name")
	}
	ab, ok := bounds[alpha]
	if !ok {
		return nil, configErrf("angle-pair: missing bounds for %q", alpha)
	}
	bb, ok := bounds[beta]
	if !ok {
		return nil, configErrf("angle-pair: missing bounds for %q", beta)
	}
	const tol = 1e-9
	if math.Abs(ab[0]) > tol || math.Abs(ab[1]-2*math.Pi) > tol {
		return nil, configErrf("angle-pair: azimuthal bounds [%g, %g] for %q must be [0, 2π)", ab[0], ab[1], alpha)
	}
	var betaMin, betaMax float64
	switch conv {
	case RADec:
		betaMin, betaMax = -math.Pi/2, math.Pi/2
	case AzZen:
		betaMin, betaMax = 0, math.Pi
	default:
		return nil, configErrf("angle-pair: unknown convention %d", int(conv))
	}
	if bb[0] < betaMin-tol || bb[1] > betaMax+tol || !(bb[0] < bb[1]) {
		return nil, configErrf("angle-pair: %s bounds [%g, %g] for %q must lie within [%g, %g]",
			conv, bb[0], bb[1], beta, betaMin, betaMax)
	}
	prefix := alpha + "_" + beta
	rng = orDefaultRNG(rng)
	return &AnglePair{
		base: base{
			parameters: []string{alpha, beta},
			prime:      []string{prefix + "_x", prefix + "_y", prefix + "_z"},
		},
		alphaName: alpha,
		betaName:  beta,
		alphaLo:   ab[0],
		alphaHi:   ab[1],
		betaLo:    bb[0],
		betaHi:    bb[1],
		conv:      conv,
		radial:    distuv.Chi{K: 3, Src: rng},
		rng:       rng,
	}, nil
}

// Forward lifts (α, β) to Cartesian coordinates with a fresh radius.
func (s *AnglePair) Forward(x, xPrime params.Point) (float64, error) {
	alpha, err := get(x, s.alphaName)
	if err != nil {
		return 0, err
	}
	beta, err := get(x, s.betaName)
	if err != nil {
		return 0, err
	}
	if alpha < s.alphaLo || alpha >= s.alphaHi {
		return 0, domainErrf(s.alphaName, alpha, "outside periodic domain [%g, %g)", s.alphaLo, s.alphaHi)
	}
	if beta < s.betaLo || beta > s.betaHi {
		return 0, domainErrf(s.betaName, beta, "outside bounds [%g, %g]", s.betaLo, s.betaHi)
	}
	r := s.radial.Rand()
	if !(r > 0) || math.IsInf(r, 1) {
		return 0, domainErrf(s.alphaName, r, "degenerate auxiliary radius")
	}
	xv, yv, zv := s.toCartesian(alpha, beta, r)
	logDet, err := s.logDetJacobian(alpha, beta, r)
	if err != nil {
		return 0, err
	}
	xPrime[s.prime[0]] = xv
	xPrime[s.prime[1]] = yv
	xPrime[s.prime[2]] = zv
	return logDet - s.radial.LogProb(r), nil
}

// Inverse recovers (α, β) from Cartesian coordinates and drops the radius.
func (s *AnglePair) Inverse(x, xPrime params.Point) (float64, error) {
	xv, err := get(xPrime, s.prime[0])
	if err != nil {
		return 0, err
	}
	yv, err := get(xPrime, s.prime[1])
	if err != nil {
		return 0, err
	}
	zv, err := get(xPrime, s.prime[2])
	if err != nil {
		return 0, err
	}
	r := math.Sqrt(xv*xv + yv*yv + zv*zv)
	if !(r > 0) || math.IsInf(r, 1) || math.IsNaN(r) {
		return 0, domainErrf(s.prime[0], r, "non-invertible radius")
	}
	alpha := math.Atan2(yv, xv)
	if alpha < 0 {
		alpha += 2 * math.Pi
	}
	if alpha >= s.alphaHi {
		alpha = s.alphaLo
	}
	var beta float64
	switch s.conv {
	case RADec:
		beta = math.Asin(zv / r)
	default:
		beta = math.Acos(zv / r)
	}
	if beta < s.betaLo || beta > s.betaHi {
		return 0, domainErrf(s.betaName, beta, "outside bounds [%g, %g]", s.betaLo, s.betaHi)
	}
	logDet, err := s.logDetJacobian(alpha, beta, r)
	if err != nil {
		return 0, err
	}
	x[s.alphaName] = alpha
	x[s.betaName] = beta
	return s.radial.LogProb(r) - logDet, nil
}

// toCartesian evaluates the joint map for the configured convention.
func (s *AnglePair) toCartesian(alpha, beta, r float64) (x, y, z float64) {
	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	if s.conv == RADec {
		return r * cb * ca, r * cb * sa, r * sb
	}
	return r * sb * ca, r * sb * sa, r * cb
}

// logDetJacobian assembles the 3×3 derivative matrix ∂(x,y,z)/∂(α,β,r) and
// returns log|det J| via mat.LogDet. A singular matrix (pole of the sky
// chart) is a domain error.
func (s *AnglePair) logDetJacobian(alpha, beta, r float64) (float64, error) {
	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	var j *mat.Dense
	if s.conv == RADec {
		j = mat.NewDense(3, 3, []float64{
			-r * cb * sa, -r * sb * ca, cb * ca,
			r * cb * ca, -r * sb * sa, cb * sa,
			0, r * cb, sb,
		})
	} else {
		j = mat.NewDense(3, 3, []float64{
			-r * sb * sa, r * cb * ca, sb * ca,
			r * sb * ca, r * cb * sa, sb * sa,
			0, -r * sb, cb,
		})
	}
	logDet, sign := mat.LogDet(j)
	if sign == 0 || math.IsInf(logDet, -1) || math.IsNaN(logDet) {
		return 0, domainErrf(s.betaName, beta, "singular sky Jacobian")
	}
	return logDet, nil
}
