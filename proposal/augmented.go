package proposal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avayla/gwarp/params"
)

// AugmentedProposal extends the transformed space with auxiliary latent
// dimensions e_i ~ Normal(0, 1). The latent dimensions condition the base
// proposal during fitting and sampling but are marginalised out by
// construction: they are dropped before the inverse map and never surface
// to the caller or the likelihood.
type AugmentedProposal struct {
	*Wrapper
	names  []string
	draws  int
	latent distuv.Normal
}

var _ Proposal = (*AugmentedProposal)(nil)

// newAugmented wires AugmentedDims latent dimensions around a plain
// wrapper.
func newAugmented(cfg Config) (*AugmentedProposal, error) {
	if cfg.AugmentedDims <= 0 {
		return nil, configErrf("augmented dimension count must be positive, got %d", cfg.AugmentedDims)
	}
	if cfg.MarginalisationDraws <= 0 {
		return nil, configErrf("marginalisation draw count must be positive, got %d", cfg.MarginalisationDraws)
	}
	w, err := newWrapper(cfg)
	if err != nil {
		return nil, err
	}
	names := make([]string, cfg.AugmentedDims)
	for i := range names {
		names[i] = fmt.Sprintf("e_%d", i)
	}
	return &AugmentedProposal{
		Wrapper: w,
		names:   names,
		draws:   cfg.MarginalisationDraws,
		latent:  distuv.Normal{Mu: 0, Sigma: 1, Src: deriveRNG(w.rng, 1)},
	}, nil
}

// LatentNames returns the auxiliary dimension names, mainly for tests.
func (a *AugmentedProposal) LatentNames() []string {
	return append([]string(nil), a.names...)
}

// Update appends fresh latent draws to every transformed live point before
// handing the population to the base proposal.
func (a *AugmentedProposal) Update(live []params.Point) error {
	ts, err := forwardAll(a.comp, live)
	if err != nil {
		return err
	}
	for _, t := range ts {
		for _, name := range a.names {
			t[name] = a.latent.Rand()
		}
	}
	return a.base.Fit(ts)
}

// Sample draws augmented candidates from the base proposal and strips the
// latent dimensions before mapping back to physical space, so augmented
// points never escape this variant.
func (a *AugmentedProposal) Sample(n int) ([]params.Point, error) {
	draw := func(k int) ([]params.Point, error) {
		batch, err := a.base.SampleTransformed(k)
		if err != nil {
			return nil, err
		}
		stripped := make([]params.Point, len(batch))
		for i, t := range batch {
			s := t.Clone()
			for _, name := range a.names {
				delete(s, name)
			}
			stripped[i] = s
		}
		return stripped, nil
	}
	return invertWithRetry(a.comp, draw, n, a.retryLimit)
}

// LogProb marginalises the latent dimensions by importance sampling against
// their Normal(0,1) prior:
//
//	log p(t) ≈ logsumexp_m [ log p_base(t, e_m) − log q(e_m) ] − log M
//
// then applies the usual physical-space Jacobian correction.
func (a *AugmentedProposal) LogProb(p params.Point) (float64, error) {
	t, logJ, err := a.comp.Forward(p)
	if err != nil {
		return 0, err
	}
	terms := make([]float64, a.draws)
	for m := range terms {
		ta := t.Clone()
		var logQ float64
		for _, name := range a.names {
			e := a.latent.Rand()
			ta[name] = e
			logQ += a.latent.LogProb(e)
		}
		lp, err := a.base.LogProbTransformed(ta)
		if err != nil {
			return 0, err
		}
		terms[m] = lp - logQ
	}
	return floats.LogSumExp(terms) - math.Log(float64(a.draws)) + logJ, nil
}
