package proposal

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/reparam"
)

// MCMCProposal refines each base candidate with a bounded Metropolis–
// Hastings random walk in transformed space before mapping it back. The
// walk targets the base density; an optional physical-space constraint
// additionally gates every accepted move.
//
// LogProb is inherited from the plain wrapper: refinement leaves the base
// density invariant, so the wrapper evaluation remains the correct one.
type MCMCProposal struct {
	*Wrapper
	steps      int
	constraint Constraint
	kernel     distuv.Normal
	// discrete holds integer-valued prime names the kernel must not perturb.
	discrete map[string]bool
}

var _ Proposal = (*MCMCProposal)(nil)

// newMCMC wires a bounded refinement chain around a plain wrapper.
func newMCMC(cfg Config) (*MCMCProposal, error) {
	if cfg.MCMCSteps <= 0 {
		return nil, configErrf("MCMC step count must be positive, got %d", cfg.MCMCSteps)
	}
	if cfg.StepSize <= 0 {
		return nil, configErrf("step size must be positive, got %g", cfg.StepSize)
	}
	w, err := newWrapper(cfg)
	if err != nil {
		return nil, err
	}
	discrete := make(map[string]bool)
	for _, name := range w.comp.DiscretePrimeParameters() {
		discrete[name] = true
	}
	return &MCMCProposal{
		Wrapper:    w,
		steps:      cfg.MCMCSteps,
		constraint: cfg.Constraint,
		kernel:     distuv.Normal{Mu: 0, Sigma: cfg.StepSize, Src: deriveRNG(w.rng, 1)},
		discrete:   discrete,
	}, nil
}

// Sample draws base candidates, refines each with a bounded chain, and
// returns the refined physical-space points. Candidates whose initial
// inverse fails a domain check are discarded inside the shared retry
// budget.
func (m *MCMCProposal) Sample(n int) ([]params.Point, error) {
	if n <= 0 {
		return nil, configErrf("sample count must be positive, got %d", n)
	}
	out := make([]params.Point, 0, n)
	var last error
	for round := 0; round < m.retryLimit; round++ {
		batch, err := m.base.SampleTransformed(n - len(out))
		if err != nil {
			return nil, err
		}
		for _, t := range batch {
			x, err := m.refine(t)
			if err != nil {
				if errors.Is(err, reparam.ErrDomain) {
					last = err
					continue
				}
				return nil, err
			}
			out = append(out, x)
		}
		if len(out) == n {
			return out, nil
		}
	}
	return nil, &ExhaustedError{Retries: m.retryLimit, Last: last}
}

// refine runs the bounded chain from t and returns the final physical
// point. The chain state is always a candidate that inverts cleanly and
// passes the constraint, so the returned point is valid by construction.
//
// Kernel moves walk the continuous prime parameters in sorted name order,
// one shared RNG stream; discrete primes (mode indices) stay fixed within a
// chain so the surrogate density is only evaluated at representable points.
func (m *MCMCProposal) refine(t params.Point) (params.Point, error) {
	cur := t.Clone()
	walked := make([]string, 0, len(cur))
	for _, name := range cur.Names() {
		if !m.discrete[name] {
			walked = append(walked, name)
		}
	}
	curPhys, _, err := m.comp.Inverse(cur)
	if err != nil {
		return nil, err
	}
	if m.constraint != nil && !m.constraint(curPhys) {
		return nil, &reparam.DomainError{Reason: "initial candidate rejected by constraint"}
	}
	curLP, err := m.base.LogProbTransformed(cur)
	if err != nil {
		return nil, err
	}

	for step := 0; step < m.steps; step++ {
		prop := cur.Clone()
		for _, name := range walked {
			prop[name] += m.kernel.Rand()
		}
		propLP, err := m.base.LogProbTransformed(prop)
		if err != nil {
			return nil, err
		}
		if d := propLP - curLP; d < 0 && m.rng.Float64() >= math.Exp(d) {
			continue
		}
		// Accepted by density; the move must still invert cleanly and
		// satisfy the constraint to enter the chain.
		phys, _, err := m.comp.Inverse(prop)
		if err != nil {
			if errors.Is(err, reparam.ErrDomain) {
				continue
			}
			return nil, err
		}
		if m.constraint != nil && !m.constraint(phys) {
			continue
		}
		cur, curPhys, curLP = prop, phys, propLP
	}
	return curPhys, nil
}
