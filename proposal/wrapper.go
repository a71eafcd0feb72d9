package proposal

import (
	"errors"
	"math/rand/v2"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/reparam"
)

// Wrapper is the plain proposal variant: it translates between physical
// space (what the sampling engine and likelihood understand) and
// transformed space (what the base proposal samples and evaluates in),
// correcting densities by the accumulated log-Jacobian.
type Wrapper struct {
	comp       *reparam.Composite
	base       Base
	retryLimit int
	rng        *rand.Rand
}

var _ Proposal = (*Wrapper)(nil)

// newWrapper builds the composite from the descriptor set (honoring
// overrides) and wires it around cfg.Base.
func newWrapper(cfg Config) (*Wrapper, error) {
	if cfg.Base == nil {
		return nil, configErrf("nil base proposal")
	}
	if cfg.RetryLimit <= 0 {
		return nil, configErrf("retry limit must be positive, got %d", cfg.RetryLimit)
	}
	rng := rngFromSeed(cfg.Seed)
	comp, err := reparam.DefaultSet(cfg.Descriptors, cfg.Overrides, deriveRNG(rng, 0))
	if err != nil {
		return nil, err
	}
	return &Wrapper{
		comp:       comp,
		base:       cfg.Base,
		retryLimit: cfg.RetryLimit,
		rng:        rng,
	}, nil
}

// Composite exposes the wrapped reparameterisation, mainly for inspection
// and tests.
func (w *Wrapper) Composite() *reparam.Composite { return w.comp }

// Sample draws n physical-space candidates. Candidates whose inverse map
// fails a domain check are discarded inside a bounded retry loop; spending
// the budget fails with ErrExhausted carrying the last failure.
func (w *Wrapper) Sample(n int) ([]params.Point, error) {
	return invertWithRetry(w.comp, w.base.SampleTransformed, n, w.retryLimit)
}

// LogProb evaluates the proposal density at a physical point:
// log p_physical(x) = log p_transformed(T(x)) + log|det J_T(x)|.
// Domain errors are never absorbed here — a physical point presented for
// density evaluation is assumed valid by contract.
func (w *Wrapper) LogProb(p params.Point) (float64, error) {
	t, logJ, err := w.comp.Forward(p)
	if err != nil {
		return 0, err
	}
	lp, err := w.base.LogProbTransformed(t)
	if err != nil {
		return 0, err
	}
	return lp + logJ, nil
}

// Update refits the fitted sub-transforms from the physical live points,
// maps the population to transformed space, and hands it to the base
// proposal's fitting routine. The base never sees physical coordinates.
func (w *Wrapper) Update(live []params.Point) error {
	ts, err := forwardAll(w.comp, live)
	if err != nil {
		return err
	}
	return w.base.Fit(ts)
}

// forwardAll refits the composite then maps every live point to
// transformed space. Fails loudly: the live-point population is assumed
// valid by contract.
func forwardAll(comp *reparam.Composite, live []params.Point) ([]params.Point, error) {
	if len(live) == 0 {
		return nil, configErrf("update with empty live-point population")
	}
	if err := comp.Update(live); err != nil {
		return nil, err
	}
	ts := make([]params.Point, len(live))
	for i, p := range live {
		t, _, err := comp.Forward(p)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

// invertWithRetry pulls transformed candidates from draw and maps them back
// to physical space, absorbing per-candidate domain errors for at most
// retryLimit rounds.
func invertWithRetry(comp *reparam.Composite, draw func(int) ([]params.Point, error), n, retryLimit int) ([]params.Point, error) {
	if n <= 0 {
		return nil, configErrf("sample count must be positive, got %d", n)
	}
	out := make([]params.Point, 0, n)
	var last error
	for round := 0; round < retryLimit; round++ {
		batch, err := draw(n - len(out))
		if err != nil {
			return nil, err
		}
		for _, t := range batch {
			x, _, err := comp.Inverse(t)
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
	return nil, &ExhaustedError{Retries: retryLimit, Last: last}
}
