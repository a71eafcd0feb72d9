package proposal

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/reparam"
)

// ClusteringProposal partitions the transformed live points into clusters
// on Update and fits one base-proposal instance per cluster. Sample draws
// from the per-cluster proposals in proportion to their membership counts;
// LogProb combines the per-cluster densities as a mixture,
// log p = log Σ_k w_k p_k.
//
// Per-cluster bases are independently constructed, so a host engine may
// evaluate them in parallel by building independent ClusteringProposal
// instances; one instance is owned by a single caller at a time.
type ClusteringProposal struct {
	comp       *reparam.Composite
	factory    func() Base
	retryLimit int
	rng        *rand.Rand
	requested  int // requested cluster count; 0 = automatic

	// fitted state, replaced wholesale on Update
	bases      []Base
	logWeights []float64
	weights    []float64
}

var _ Proposal = (*ClusteringProposal)(nil)

// newClustering validates the clustering configuration. BaseFactory is
// required: each cluster owns a fresh base instance.
func newClustering(cfg Config) (*ClusteringProposal, error) {
	if cfg.BaseFactory == nil {
		return nil, configErrf("clustering variant requires a base factory")
	}
	if cfg.RetryLimit <= 0 {
		return nil, configErrf("retry limit must be positive, got %d", cfg.RetryLimit)
	}
	rng := rngFromSeed(cfg.Seed)
	comp, err := reparam.DefaultSet(cfg.Descriptors, cfg.Overrides, deriveRNG(rng, 0))
	if err != nil {
		return nil, err
	}
	return &ClusteringProposal{
		comp:       comp,
		factory:    cfg.BaseFactory,
		retryLimit: cfg.RetryLimit,
		rng:        rng,
		requested:  cfg.Clusters,
	}, nil
}

// Composite exposes the wrapped reparameterisation.
func (c *ClusteringProposal) Composite() *reparam.Composite { return c.comp }

// ClusterCount returns the number of fitted clusters, 0 before Update.
func (c *ClusteringProposal) ClusterCount() int { return len(c.bases) }

// Weights returns a copy of the fitted mixture weights.
func (c *ClusteringProposal) Weights() []float64 {
	return append([]float64(nil), c.weights...)
}

// chooseK picks the cluster count for a population of size n.
func (c *ClusteringProposal) chooseK(n int) int {
	k := c.requested
	if k == 0 {
		// One cluster per 25 live points, capped: small populations do not
		// support many independent density fits.
		k = n / 25
		if k < 1 {
			k = 1
		}
		if k > 4 {
			k = 4
		}
	}
	if k > n {
		k = n
	}
	return k
}

// Update partitions the transformed live points and fits one base per
// cluster. The new state becomes visible only after every per-cluster fit
// has succeeded.
func (c *ClusteringProposal) Update(live []params.Point) error {
	ts, err := forwardAll(c.comp, live)
	if err != nil {
		return err
	}
	keys := ts[0].Names()
	vecs := make([][]float64, len(ts))
	for i, t := range ts {
		vecs[i] = pointToVector(t, keys)
	}

	assign, _, err := kmeans(vecs, c.chooseK(len(ts)), deriveRNG(c.rng, 1))
	if err != nil {
		return err
	}

	groups := make(map[int][]params.Point)
	for i, a := range assign {
		groups[a] = append(groups[a], ts[i])
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	bases := make([]Base, 0, len(ids))
	weights := make([]float64, 0, len(ids))
	total := float64(len(ts))
	for _, id := range ids {
		members := groups[id]
		b := c.factory()
		if b == nil {
			return configErrf("base factory returned nil")
		}
		if err := b.Fit(members); err != nil {
			return err
		}
		bases = append(bases, b)
		weights = append(weights, float64(len(members))/total)
	}

	logWeights := make([]float64, len(weights))
	for i, w := range weights {
		logWeights[i] = math.Log(w)
	}
	c.bases = bases
	c.weights = weights
	c.logWeights = logWeights
	return nil
}

// Sample draws per-cluster counts from a categorical distribution over the
// mixture weights, samples each cluster's base, and maps the pooled
// candidates back to physical space under the shared retry budget.
func (c *ClusteringProposal) Sample(n int) ([]params.Point, error) {
	if len(c.bases) == 0 {
		return nil, configErrf("sample before update: no fitted clusters")
	}
	draw := func(k int) ([]params.Point, error) {
		counts := make([]int, len(c.bases))
		if len(c.bases) == 1 {
			counts[0] = k
		} else {
			cat := distuv.NewCategorical(c.weights, c.rng)
			for i := 0; i < k; i++ {
				counts[int(cat.Rand())]++
			}
		}
		pooled := make([]params.Point, 0, k)
		for i, count := range counts {
			if count == 0 {
				continue
			}
			batch, err := c.bases[i].SampleTransformed(count)
			if err != nil {
				return nil, err
			}
			pooled = append(pooled, batch...)
		}
		return pooled, nil
	}
	return invertWithRetry(c.comp, draw, n, c.retryLimit)
}

// LogProb evaluates the mixture density log Σ_k w_k p_k(T(x)) and applies
// the physical-space Jacobian correction.
func (c *ClusteringProposal) LogProb(p params.Point) (float64, error) {
	if len(c.bases) == 0 {
		return 0, configErrf("log-prob before update: no fitted clusters")
	}
	t, logJ, err := c.comp.Forward(p)
	if err != nil {
		return 0, err
	}
	terms := make([]float64, len(c.bases))
	for i, b := range c.bases {
		lp, err := b.LogProbTransformed(t)
		if err != nil {
			return 0, err
		}
		terms[i] = c.logWeights[i] + lp
	}
	return floats.LogSumExp(terms) + logJ, nil
}

// pointToVector flattens a point into key order.
func pointToVector(p params.Point, keys []string) []float64 {
	v := make([]float64, len(keys))
	for i, k := range keys {
		v[i] = p[k]
	}
	return v
}
