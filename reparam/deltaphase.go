package reparam

import (
	"math"

	"github.com/avayla/gwarp/params"
)

// DeltaPhase converts the coalescence phase into the better-measured
// combination δφ = φ + sign(cos θ_jn)·ψ. The map is a shear with unit
// Jacobian determinant, so logJ is always 0.
//
// DeltaPhase owns only the phase parameter; ψ and θ_jn are read as context
// (Requires), so the composite sequences it before their owners and its
// inverse runs after they have been reconstructed.
type DeltaPhase struct {
	base
	phaseName string
	psiName   string
	thetaName string
}

// NewDeltaPhase constructs a delta-phase transform. psi and theta default to
// "psi" and "theta_jn" when empty.
//
// Errors: ErrConfiguration on an empty phase name or a name collision.
func NewDeltaPhase(phase, psi, theta string) (*DeltaPhase, error) {
	if phase == "" {
		return nil, configErrf("delta-phase: empty phase parameter name")
	}
	if psi == "" {
		psi = "psi"
	}
	if theta == "" {
		theta = "theta_jn"
	}
	if phase == psi || phase == theta || psi == theta {
		return nil, configErrf("delta-phase: parameter names must be distinct (%q, %q, %q)", phase, psi, theta)
	}
	return &DeltaPhase{
		base: base{
			parameters: []string{phase},
			prime:      []string{"delta_" + phase},
			requires:   []string{psi, theta},
		},
		phaseName: phase,
		psiName:   psi,
		thetaName: theta,
	}, nil
}

// Forward computes δφ = φ + sign(cos θ_jn)·ψ.
func (d *DeltaPhase) Forward(x, xPrime params.Point) (float64, error) {
	phase, err := get(x, d.phaseName)
	if err != nil {
		return 0, err
	}
	psi, err := get(x, d.psiName)
	if err != nil {
		return 0, err
	}
	theta, err := get(x, d.thetaName)
	if err != nil {
		return 0, err
	}
	xPrime[d.prime[0]] = phase + sign(math.Cos(theta))*psi
	return 0, nil
}

// Inverse recovers φ = (δφ − sign(cos θ_jn)·ψ) mod 2π. ψ and θ_jn must
// already be present in x, which the composite ordering guarantees.
func (d *DeltaPhase) Inverse(x, xPrime params.Point) (float64, error) {
	delta, err := get(xPrime, d.prime[0])
	if err != nil {
		return 0, err
	}
	psi, err := get(x, d.psiName)
	if err != nil {
		return 0, err
	}
	theta, err := get(x, d.thetaName)
	if err != nil {
		return 0, err
	}
	phase := math.Mod(delta-sign(math.Cos(theta))*psi, 2*math.Pi)
	if phase < 0 {
		phase += 2 * math.Pi
	}
	x[d.phaseName] = phase
	return 0, nil
}

// sign returns -1, 0 or +1 matching the sign of v.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
