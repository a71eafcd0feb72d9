package proposal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/proposal"
	"github.com/avayla/gwarp/reparam"
)

func newMCMC(t *testing.T, base *stubBase, opts ...proposal.Option) proposal.Proposal {
	t.Helper()
	descriptors := []params.Descriptor{boundedDescriptor("x", 0, 10)}
	all := append([]proposal.Option{
		proposal.WithVariant(proposal.VariantMCMC),
		proposal.WithSeed(13),
	}, opts...)
	p, err := proposal.New(proposal.DefaultConfig(descriptors, base), all...)
	require.NoError(t, err)
	return p
}

// TestMCMC_SampleStaysInBounds verifies that refined candidates always land
// inside the physical domain: moves whose inverse fails are rejected by the
// chain rather than surfacing.
func TestMCMC_SampleStaysInBounds(t *testing.T) {
	base := &stubBase{
		sample: constPoints(params.Point{"x_prime": 0.9}), // near the upper edge
		logProb: func(p params.Point) (float64, error) {
			return 0, nil // flat density, every proposed move is accepted
		},
	}
	p := newMCMC(t, base, proposal.WithMCMCSteps(50), proposal.WithStepSize(0.5))

	got, err := p.Sample(20)
	require.NoError(t, err)
	require.Len(t, got, 20)
	for _, pt := range got {
		assert.GreaterOrEqual(t, pt["x"], 0.0)
		assert.LessOrEqual(t, pt["x"], 10.0)
		assert.False(t, pt.Has("x_prime"))
	}
}

// TestMCMC_RefinementMovesTowardDensity checks that the chain climbs a
// peaked base density.
func TestMCMC_RefinementMovesTowardDensity(t *testing.T) {
	// Density peaked at x_prime = -0.8; candidates start at +0.8.
	base := &stubBase{
		sample: constPoints(params.Point{"x_prime": 0.8}),
		logProb: func(p params.Point) (float64, error) {
			d := p["x_prime"] + 0.8
			return -50 * d * d, nil
		},
	}
	p := newMCMC(t, base, proposal.WithMCMCSteps(200), proposal.WithStepSize(0.2))

	got, err := p.Sample(10)
	require.NoError(t, err)
	for _, pt := range got {
		assert.Less(t, pt["x"], 5.0, "the chain must migrate toward the density peak at x = 1")
	}
}

// TestMCMC_ConstraintGatesMoves verifies that the physical-space constraint
// is honored by every accepted move.
func TestMCMC_ConstraintGatesMoves(t *testing.T) {
	base := &stubBase{sample: constPoints(params.Point{"x_prime": -0.4})} // x = 3
	p := newMCMC(t, base,
		proposal.WithMCMCSteps(100),
		proposal.WithStepSize(0.3),
		proposal.WithConstraint(func(pt params.Point) bool { return pt["x"] < 5 }),
	)

	got, err := p.Sample(20)
	require.NoError(t, err)
	for _, pt := range got {
		assert.Less(t, pt["x"], 5.0, "no refined point may violate the constraint")
	}
}

// TestMCMC_InitialConstraintFailureExhausts verifies that candidates whose
// starting point already violates the constraint are discarded and count
// against the retry budget.
func TestMCMC_InitialConstraintFailureExhausts(t *testing.T) {
	base := &stubBase{sample: constPoints(params.Point{"x_prime": 0.6})} // x = 8
	p := newMCMC(t, base,
		proposal.WithRetryLimit(2),
		proposal.WithConstraint(func(pt params.Point) bool { return false }),
	)

	_, err := p.Sample(3)
	require.ErrorIs(t, err, proposal.ErrExhausted)

	var ex *proposal.ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 2, ex.Retries)
}

// TestMCMC_LogProbMatchesWrapper verifies that refinement leaves density
// evaluation untouched: LogProb is the plain wrapped evaluation.
func TestMCMC_LogProbMatchesWrapper(t *testing.T) {
	base := &stubBase{logProb: func(p params.Point) (float64, error) { return -1.5, nil }}

	mcmc := newMCMC(t, base)
	plain, err := proposal.New(proposal.DefaultConfig([]params.Descriptor{boundedDescriptor("x", 0, 10)}, base))
	require.NoError(t, err)

	x := params.Point{"x": 4}
	got, err := mcmc.LogProb(x)
	require.NoError(t, err)
	want, err := plain.LogProb(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestMCMC_DeterministicWithSeed verifies seed-for-seed reproducibility of
// the refinement chain over a multi-parameter space: the kernel must visit
// the prime parameters in a fixed order, not map-iteration order.
func TestMCMC_DeterministicWithSeed(t *testing.T) {
	descriptors := []params.Descriptor{
		boundedDescriptor("a", 0, 10),
		boundedDescriptor("b", 0, 10),
		boundedDescriptor("c", 0, 10),
		boundedDescriptor("d", 0, 10),
	}
	build := func() proposal.Proposal {
		base := &stubBase{sample: constPoints(params.Point{
			"a_prime": 0.2, "b_prime": -0.1, "c_prime": 0.4, "d_prime": 0.0,
		})}
		p, err := proposal.New(proposal.DefaultConfig(descriptors, base),
			proposal.WithVariant(proposal.VariantMCMC),
			proposal.WithSeed(1234),
			proposal.WithMCMCSteps(30),
			proposal.WithStepSize(0.2),
		)
		require.NoError(t, err)
		return p
	}

	first, err := build().Sample(5)
	require.NoError(t, err)
	second, err := build().Sample(5)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same seed must reproduce the same refined draws")
}

// TestMCMC_DiscretePrimesStayFixed verifies that integer-valued prime
// parameters are never perturbed by the random-walk kernel: the base density
// must only ever see an integral mode index.
func TestMCMC_DiscretePrimesStayFixed(t *testing.T) {
	names := []string{"eclipticlongitude", "eclipticlatitude", "polarization", "iota", "phase"}
	bounds := map[string][2]float64{
		"eclipticlongitude": {0, 2 * math.Pi},
		"eclipticlatitude":  {-math.Pi / 2, math.Pi / 2},
		"polarization":      {0, math.Pi},
		"iota":              {0, math.Pi},
		"phase":             {0, 2 * math.Pi},
	}
	lisa, err := reparam.NewLISAExtrinsicSymmetry(names, bounds, reparam.LISAOptions{IncludeModeIndex: true}, nil)
	require.NoError(t, err)

	descriptors := make([]params.Descriptor, 0, len(names))
	for _, n := range names {
		b := bounds[n]
		descriptors = append(descriptors, params.Descriptor{Name: n, Lower: b[0], Upper: b[1], Topology: params.Bounded})
	}

	violations := 0
	base := &stubBase{
		sample: constPoints(params.Point{
			"eclipticlongitude_folded": 0.5,
			"eclipticlatitude_folded":  0.3,
			"polarization_folded":      0.7,
			"iota_folded":              1.0,
			"phase_folded":             1.0,
			"mode_index":               3.0,
		}),
		logProb: func(p params.Point) (float64, error) {
			if v := p["mode_index"]; v != math.Trunc(v) {
				violations++
			}
			return 0, nil
		},
	}
	p, err := proposal.New(proposal.DefaultConfig(descriptors, base),
		proposal.WithVariant(proposal.VariantMCMC),
		proposal.WithOverrides(map[string]reparam.Reparameterisation{"eclipticlongitude": lisa}),
		proposal.WithSeed(21),
		proposal.WithMCMCSteps(40),
		proposal.WithStepSize(0.3),
	)
	require.NoError(t, err)

	got, err := p.Sample(5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Zero(t, violations, "the kernel must never move the mode index off the integers")
}

// TestMCMC_ConstructionErrors covers the chain-length and step-size checks.
func TestMCMC_ConstructionErrors(t *testing.T) {
	descriptors := []params.Descriptor{boundedDescriptor("x", 0, 10)}

	cfg := proposal.DefaultConfig(descriptors, &stubBase{})
	cfg.Variant = proposal.VariantMCMC
	cfg.MCMCSteps = 0
	_, err := proposal.New(cfg)
	assert.ErrorIs(t, err, proposal.ErrConfiguration)

	cfg = proposal.DefaultConfig(descriptors, &stubBase{})
	cfg.Variant = proposal.VariantMCMC
	cfg.StepSize = -1
	_, err = proposal.New(cfg)
	assert.ErrorIs(t, err, proposal.ErrConfiguration)
}
