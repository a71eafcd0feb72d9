package reparam

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avayla/gwarp/params"
)

// LISAOptions configures LISAExtrinsicSymmetry.
//
//   - IncludeModeIndex     — carry a discrete mode_index prime parameter so
//     the map is one-to-one. When false, a mode is drawn at random on
//     Inverse.
//   - EstimateModeWeights  — estimate per-mode weights from the live points
//     on Update and draw modes accordingly. Incompatible with
//     IncludeModeIndex.
//   - MinimumModeWeight    — floor applied to estimated weights before
//     renormalisation; zero disables the floor.
type LISAOptions struct {
	IncludeModeIndex    bool
	EstimateModeWeights bool
	MinimumModeWeight   float64
}

// modeID addresses one of the 8 (without phase) or 16 (with phase)
// degenerate extrinsic modes.
type modeID struct {
	longNum  int // ecliptic-longitude quadrant, 0..3
	latNum   int // ecliptic-latitude hemisphere, 0..1
	phaseNum int // phase half-turn, 0..1
	index    int // flattened index, 0..nModes-1
}

// LISAExtrinsicSymmetry folds the degenerate LISA extrinsic parameter space
// — ecliptic longitude λ, ecliptic latitude β, polarisation ψ, inclination ι
// and optionally the phase φ — into a single fundamental mode. The folding
// is a piecewise isometry, so the log-Jacobian is always zero.
//
// The transform is one-to-one only when IncludeModeIndex is set; otherwise
// the inverse draws a mode index (uniformly, or from weights estimated by
// Update) before unfolding.
type LISAExtrinsicSymmetry struct {
	base
	lambdaName, betaName, psiName, iotaName, phaseName string
	opts                                               LISAOptions
	rng                                                *rand.Rand
	weights                                            []float64 // nil until estimated
}

var (
	_ Fittable = (*LISAExtrinsicSymmetry)(nil)
	_ Discrete = (*LISAExtrinsicSymmetry)(nil)
)

// Known parameter names used to infer each role when the caller supplies a
// plain name list.
var (
	knownLambdaNames = map[string]bool{"eclipticlongitude": true, "lambda": true}
	knownBetaNames   = map[string]bool{"eclipticlatitude": true, "beta": true}
	knownPsiNames    = map[string]bool{"polarization": true, "psi": true}
	knownIotaNames   = map[string]bool{"iota": true, "inclination": true}
	knownPhaseNames  = map[string]bool{"phase": true, "coa_phase": true}
)

// NewLISAExtrinsicSymmetry constructs the folding transform over names.
// The λ, β, ψ and ι roles are inferred from the known name sets and are
// required; the phase role is optional. A nil rng selects the package
// default stream.
//
// Errors: ErrConfiguration when a required role is missing or ambiguous,
// when bounds do not match the expected ranges, or when EstimateModeWeights
// is combined with IncludeModeIndex.
func NewLISAExtrinsicSymmetry(names []string, bounds map[string][2]float64, opts LISAOptions, rng *rand.Rand) (*LISAExtrinsicSymmetry, error) {
	if opts.IncludeModeIndex && opts.EstimateModeWeights {
		return nil, configErrf("lisa: cannot estimate mode weights with an explicit mode index")
	}
	lambda, err := resolveRole("lambda", names, knownLambdaNames, true)
	if err != nil {
		return nil, err
	}
	beta, err := resolveRole("beta", names, knownBetaNames, true)
	if err != nil {
		return nil, err
	}
	psi, err := resolveRole("psi", names, knownPsiNames, true)
	if err != nil {
		return nil, err
	}
	iota, err := resolveRole("iota", names, knownIotaNames, true)
	if err != nil {
		return nil, err
	}
	phase, err := resolveRole("phase", names, knownPhaseNames, false)
	if err != nil {
		return nil, err
	}

	checks := []struct {
		name   string
		lo, hi float64
	}{
		{lambda, 0, 2 * math.Pi},
		{beta, -math.Pi / 2, math.Pi / 2},
		{psi, 0, math.Pi},
		{iota, 0, math.Pi},
	}
	if phase != "" {
		checks = append(checks, struct {
			name   string
			lo, hi float64
		}{phase, 0, 2 * math.Pi})
	}
	const tol = 1e-9
	for _, c := range checks {
		b, ok := bounds[c.name]
		if !ok {
			return nil, configErrf("lisa: missing bounds for %q", c.name)
		}
		if math.Abs(b[0]-c.lo) > tol || math.Abs(b[1]-c.hi) > tol {
			return nil, configErrf("lisa: bounds [%g, %g] for %q must be [%g, %g]", b[0], b[1], c.name, c.lo, c.hi)
		}
	}

	owned := []string{lambda, beta, psi, iota}
	if phase != "" {
		owned = append(owned, phase)
	}
	prime := make([]string, 0, len(owned)+1)
	for _, p := range owned {
		prime = append(prime, p+"_folded")
	}
	if opts.IncludeModeIndex {
		prime = append(prime, "mode_index")
	}
	return &LISAExtrinsicSymmetry{
		base:       base{parameters: owned, prime: prime},
		lambdaName: lambda,
		betaName:   beta,
		psiName:    psi,
		iotaName:   iota,
		phaseName:  phase,
		opts:       opts,
		rng:        orDefaultRNG(rng),
	}, nil
}

// resolveRole picks the single name in names matching a known set.
func resolveRole(role string, names []string, known map[string]bool, required bool) (string, error) {
	var found string
	for _, n := range names {
		if known[n] {
			if found != "" {
				return "", configErrf("lisa: multiple parameters match role %q (%q, %q)", role, found, n)
			}
			found = n
		}
	}
	if found == "" && required {
		return "", configErrf("lisa: no parameter matches role %q", role)
	}
	return found, nil
}

// DiscretePrimeParameters returns the mode index when it is carried.
func (l *LISAExtrinsicSymmetry) DiscretePrimeParameters() []string {
	if l.opts.IncludeModeIndex {
		return []string{"mode_index"}
	}
	return nil
}

// NModes returns the number of degenerate modes: 16 with a phase parameter,
// 8 without.
func (l *LISAExtrinsicSymmetry) NModes() int {
	if l.phaseName != "" {
		return 16
	}
	return 8
}

// determineMode bins a physical point into its extrinsic mode.
func (l *LISAExtrinsicSymmetry) determineMode(x params.Point) (modeID, error) {
	lambda, err := get(x, l.lambdaName)
	if err != nil {
		return modeID{}, err
	}
	if lambda < 0 || lambda > 2*math.Pi {
		return modeID{}, domainErrf(l.lambdaName, lambda, "outside [0, 2π]")
	}
	beta, err := get(x, l.betaName)
	if err != nil {
		return modeID{}, err
	}
	if beta < -math.Pi/2 || beta > math.Pi/2 {
		return modeID{}, domainErrf(l.betaName, beta, "outside [-π/2, π/2]")
	}
	longNum := clampInt(int(math.Floor(lambda/(math.Pi/2))), 0, 3)
	latNum := 0
	if beta >= 0 {
		latNum = 1
	}
	phaseNum := 0
	if l.phaseName != "" {
		phase, err := get(x, l.phaseName)
		if err != nil {
			return modeID{}, err
		}
		if phase < 0 || phase > 2*math.Pi {
			return modeID{}, domainErrf(l.phaseName, phase, "outside [0, 2π]")
		}
		if phase >= math.Pi {
			phaseNum = 1
		}
	}
	return modeID{
		longNum:  longNum,
		latNum:   latNum,
		phaseNum: phaseNum,
		index:    longNum + 4*latNum + 8*phaseNum,
	}, nil
}

// unfoldMode expands a flat index back into its components.
func (l *LISAExtrinsicSymmetry) unfoldMode(index int) modeID {
	phaseNum := index / 8
	rem := index - 8*phaseNum
	return modeID{
		longNum:  rem % 4,
		latNum:   rem / 4,
		phaseNum: phaseNum,
		index:    index,
	}
}

// sampleModeIndex draws a mode, uniformly or from the estimated weights.
func (l *LISAExtrinsicSymmetry) sampleModeIndex() int {
	if l.weights != nil {
		cat := distuv.NewCategorical(l.weights, l.rng)
		return int(cat.Rand())
	}
	return l.rng.IntN(l.NModes())
}

// Forward folds the extrinsic parameters into the fundamental mode.
// logJ is always 0: the folding is a piecewise isometry.
func (l *LISAExtrinsicSymmetry) Forward(x, xPrime params.Point) (float64, error) {
	mode, err := l.determineMode(x)
	if err != nil {
		return 0, err
	}
	psi, err := get(x, l.psiName)
	if err != nil {
		return 0, err
	}
	if psi < 0 || psi > math.Pi {
		return 0, domainErrf(l.psiName, psi, "outside [0, π]")
	}
	iota, err := get(x, l.iotaName)
	if err != nil {
		return 0, err
	}
	if iota < 0 || iota > math.Pi {
		return 0, domainErrf(l.iotaName, iota, "outside [0, π]")
	}

	psiF := mod(psi-float64(mode.longNum)*math.Pi/2, math.Pi)
	iotaF := iota
	betaF := x[l.betaName]
	if mode.latNum == 0 {
		psiF = math.Pi - psiF
		iotaF = math.Pi - iota
		betaF = -betaF
	}
	xPrime[l.psiName+"_folded"] = psiF
	xPrime[l.iotaName+"_folded"] = iotaF
	xPrime[l.betaName+"_folded"] = betaF
	xPrime[l.lambdaName+"_folded"] = mod(x[l.lambdaName]-float64(mode.longNum)*math.Pi/2, 2*math.Pi)
	if l.phaseName != "" {
		xPrime[l.phaseName+"_folded"] = mod(x[l.phaseName], math.Pi)
	}
	if l.opts.IncludeModeIndex {
		xPrime["mode_index"] = float64(mode.index)
	}
	return 0, nil
}

// Inverse unfolds the fundamental mode back into the full extrinsic space,
// using the carried mode index when present and drawing one otherwise.
func (l *LISAExtrinsicSymmetry) Inverse(x, xPrime params.Point) (float64, error) {
	var index int
	if l.opts.IncludeModeIndex {
		raw, err := get(xPrime, "mode_index")
		if err != nil {
			return 0, err
		}
		index = int(math.Round(raw))
		if index < 0 || index >= l.NModes() {
			return 0, domainErrf("mode_index", raw, "outside [0, %d)", l.NModes())
		}
	} else {
		index = l.sampleModeIndex()
	}
	mode := l.unfoldMode(index)

	lambdaF, err := get(xPrime, l.lambdaName+"_folded")
	if err != nil {
		return 0, err
	}
	betaF, err := get(xPrime, l.betaName+"_folded")
	if err != nil {
		return 0, err
	}
	psiF, err := get(xPrime, l.psiName+"_folded")
	if err != nil {
		return 0, err
	}
	iotaF, err := get(xPrime, l.iotaName+"_folded")
	if err != nil {
		return 0, err
	}

	x[l.lambdaName] = mod(lambdaF+float64(mode.longNum)*math.Pi/2, 2*math.Pi)
	beta, iota, psi := betaF, iotaF, psiF
	if mode.latNum == 0 {
		beta = -betaF
		iota = math.Pi - iotaF
		psi = math.Pi - psiF
	}
	x[l.betaName] = beta
	x[l.iotaName] = iota
	x[l.psiName] = mod(psi+float64(mode.longNum)*math.Pi/2, math.Pi)
	if l.phaseName != "" {
		phaseF, err := get(xPrime, l.phaseName+"_folded")
		if err != nil {
			return 0, err
		}
		x[l.phaseName] = phaseF + float64(mode.phaseNum)*math.Pi
	}
	return 0, nil
}

// Update estimates the per-mode weights from the physical live points.
// No-op unless EstimateModeWeights is set.
func (l *LISAExtrinsicSymmetry) Update(points []params.Point) error {
	if !l.opts.EstimateModeWeights {
		return nil
	}
	if len(points) == 0 {
		return configErrf("lisa: update with empty population")
	}
	counts := make([]float64, l.NModes())
	for _, p := range points {
		mode, err := l.determineMode(p)
		if err != nil {
			return err
		}
		counts[mode.index]++
	}
	total := float64(len(points))
	weights := make([]float64, len(counts))
	var sum float64
	for i, c := range counts {
		w := c / total
		if l.opts.MinimumModeWeight > 0 && w < l.opts.MinimumModeWeight {
			w = l.opts.MinimumModeWeight
		}
		weights[i] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	l.weights = weights
	return nil
}

// Reset discards any estimated mode weights.
func (l *LISAExtrinsicSymmetry) Reset() { l.weights = nil }

// ModeWeights returns the estimated weights, or nil when none have been
// estimated yet. The slice is a copy.
func (l *LISAExtrinsicSymmetry) ModeWeights() []float64 {
	if l.weights == nil {
		return nil
	}
	return append([]float64(nil), l.weights...)
}

// mod wraps v into [0, m).
func mod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
