package reparam_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/reparam"
)

// TestRegistry_RegisterAndKeys covers the registry surface: registration,
// lookup, key listing and the duplicate/unknown error paths.
func TestRegistry_RegisterAndKeys(t *testing.T) {
	r := reparam.NewRegistry()
	require.NoError(t, r.Register("ident", func(cfg reparam.FactoryConfig) (reparam.Reparameterisation, error) {
		return reparam.NewNull(cfg.Parameters...)
	}))

	assert.True(t, r.Known("ident"))
	assert.False(t, r.Known("missing"))

	err := r.Register("ident", func(cfg reparam.FactoryConfig) (reparam.Reparameterisation, error) {
		return reparam.NewNull(cfg.Parameters...)
	})
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "duplicate key")

	assert.ErrorIs(t, r.Register("", nil), reparam.ErrConfiguration, "empty key")

	_, err = r.New("missing", reparam.FactoryConfig{Parameters: []string{"x"}})
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "unknown key")

	got, err := r.New("ident", reparam.FactoryConfig{Parameters: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Parameters())
}

// TestDefaultRegistry_CatalogKeys pins the built-in gravitational-wave
// catalog.
func TestDefaultRegistry_CatalogKeys(t *testing.T) {
	want := []string{
		"angle-2pi", "angle-pi", "angle-sine", "delta-phase", "distance",
		"lisa-sky", "mass", "mass-ratio", "null", "periodic", "rescale",
		"sky-az-zen", "sky-ra-dec", "time",
	}
	if diff := cmp.Diff(want, reparam.DefaultRegistry().Keys()); diff != "" {
		t.Fatalf("catalog keys mismatch (-want +got):\n%s", diff)
	}
}

// TestDefaultSet_AliasResolution verifies that known parameter names resolve
// through the alias table, with the sky pair gathered jointly.
func TestDefaultSet_AliasResolution(t *testing.T) {
	descriptors := []params.Descriptor{
		{Name: "ra", Lower: 0, Upper: 2 * math.Pi, Topology: params.Periodic},
		{Name: "dec", Lower: -math.Pi / 2, Upper: math.Pi / 2, Topology: params.Bounded},
		{Name: "luminosity_distance", Lower: 100, Upper: 1000, Topology: params.Bounded},
	}
	c, err := reparam.DefaultSet(descriptors, nil, rand.New(rand.NewPCG(3, 7)))
	require.NoError(t, err)

	assert.Len(t, c.Sequence(), 2, "ra and dec must be transformed jointly")
	assert.ElementsMatch(t, []string{"ra", "dec", "luminosity_distance"}, c.PhysicalParameters())
	assert.ElementsMatch(t,
		[]string{"ra_dec_x", "ra_dec_y", "ra_dec_z", "luminosity_distance_u"},
		c.PrimeParameters())
}

// TestDefaultSet_TopologyFallback covers parameters with no alias entry:
// each topology gets its documented default, composite demands an override.
func TestDefaultSet_TopologyFallback(t *testing.T) {
	descriptors := []params.Descriptor{
		{Name: "drift", Lower: math.Inf(-1), Upper: math.Inf(1), Topology: params.Linear},
		{Name: "amp", Lower: 0, Upper: 5, Topology: params.Bounded},
		{Name: "cycle", Lower: 0, Upper: 1, Topology: params.Periodic},
		{Name: "ratio", Lower: 0.1, Upper: 1, Topology: params.Reflective},
	}
	c, err := reparam.DefaultSet(descriptors, nil, nil)
	require.NoError(t, err)

	primes := c.PrimeParameters()
	assert.Contains(t, primes, "drift", "linear topology keeps the identity")
	assert.Contains(t, primes, "amp_prime", "bounded topology rescales")
	assert.Contains(t, primes, "cycle_x", "periodic topology lifts to the plane")
	assert.Contains(t, primes, "ratio_prime", "reflective topology rescales")

}

// TestDefaultSet_CompositePartners verifies that a composite-topology
// parameter with no alias entry is transformed jointly with its declared
// partners: sky-shaped pairs get the sky transform, anything else a joint
// rescale.
func TestDefaultSet_CompositePartners(t *testing.T) {
	sky := []params.Descriptor{
		{Name: "long", Lower: 0, Upper: 2 * math.Pi, Topology: params.Composite, Partners: []string{"lat"}},
		{Name: "lat", Lower: -math.Pi / 2, Upper: math.Pi / 2, Topology: params.Bounded},
	}
	c, err := reparam.DefaultSet(sky, nil, nil)
	require.NoError(t, err)
	require.Len(t, c.Sequence(), 1, "the pair must be transformed jointly")
	assert.ElementsMatch(t, []string{"long_lat_x", "long_lat_y", "long_lat_z"}, c.PrimeParameters())

	zen := []params.Descriptor{
		{Name: "bearing", Lower: 0, Upper: 2 * math.Pi, Topology: params.Composite, Partners: []string{"tilt"}},
		{Name: "tilt", Lower: 0, Upper: math.Pi, Topology: params.Bounded},
	}
	c, err = reparam.DefaultSet(zen, nil, nil)
	require.NoError(t, err)
	require.Len(t, c.Sequence(), 1)
	assert.ElementsMatch(t, []string{"bearing_tilt_x", "bearing_tilt_y", "bearing_tilt_z"}, c.PrimeParameters())

	plain := []params.Descriptor{
		{Name: "u", Lower: 0, Upper: 1, Topology: params.Composite, Partners: []string{"v"}},
		{Name: "v", Lower: 0, Upper: 5, Topology: params.Bounded},
	}
	c, err = reparam.DefaultSet(plain, nil, nil)
	require.NoError(t, err)
	require.Len(t, c.Sequence(), 1, "non-sky partners still form one joint group")
	assert.ElementsMatch(t, []string{"u_prime", "v_prime"}, c.PrimeParameters())

	missing := []params.Descriptor{
		{Name: "u", Lower: 0, Upper: 1, Topology: params.Composite, Partners: []string{"ghost"}},
	}
	_, err = reparam.DefaultSet(missing, nil, nil)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "undeclared partner")
}

// TestDefaultSet_OverridesReplace checks that an override fully replaces the
// default for its parameters, including an aliased joint group.
func TestDefaultSet_OverridesReplace(t *testing.T) {
	descriptors := []params.Descriptor{
		{Name: "ra", Lower: 0, Upper: 2 * math.Pi, Topology: params.Periodic},
		{Name: "dec", Lower: -math.Pi / 2, Upper: math.Pi / 2, Topology: params.Bounded},
	}
	ident, err := reparam.NewNull("ra", "dec")
	require.NoError(t, err)

	c, err := reparam.DefaultSet(descriptors, map[string]reparam.Reparameterisation{"ra": ident}, nil)
	require.NoError(t, err)

	require.Len(t, c.Sequence(), 1)
	assert.ElementsMatch(t, []string{"ra", "dec"}, c.PrimeParameters(),
		"the identity override must replace the sky transform outright")

	_, err = reparam.DefaultSet(descriptors, map[string]reparam.Reparameterisation{"ra": nil}, nil)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "nil override")
}

// TestDefaultSet_DescriptorValidation covers invalid and duplicate
// descriptors.
func TestDefaultSet_DescriptorValidation(t *testing.T) {
	_, err := reparam.DefaultSet(nil, nil, nil)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "empty descriptor set")

	_, err = reparam.DefaultSet([]params.Descriptor{
		{Name: "", Lower: 0, Upper: 1, Topology: params.Bounded},
	}, nil, nil)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "invalid descriptor")

	_, err = reparam.DefaultSet([]params.Descriptor{
		{Name: "m", Lower: 0, Upper: 1, Topology: params.Bounded},
		{Name: "m", Lower: 0, Upper: 2, Topology: params.Bounded},
	}, nil, nil)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "duplicate descriptor")
}

// TestDefaultSet_EndToEndRoundTrip drives the full default gravitational-wave
// set with a population of random points: every point must survive
// Forward∘Inverse with cancelling log-Jacobians.
func TestDefaultSet_EndToEndRoundTrip(t *testing.T) {
	descriptors := []params.Descriptor{
		{Name: "ra", Lower: 0, Upper: 2 * math.Pi, Topology: params.Periodic},
		{Name: "dec", Lower: -math.Pi / 2, Upper: math.Pi / 2, Topology: params.Bounded},
		{Name: "theta_jn", Lower: 0, Upper: math.Pi, Topology: params.Bounded},
		{Name: "psi", Lower: 0, Upper: math.Pi, Topology: params.Periodic},
		{Name: "phase", Lower: 0, Upper: 2 * math.Pi, Topology: params.Periodic},
		{Name: "luminosity_distance", Lower: 100, Upper: 1000, Topology: params.Bounded},
		{Name: "chirp_mass", Lower: 10, Upper: 80, Topology: params.Bounded},
	}
	rng := rand.New(rand.NewPCG(42, 43))
	c, err := reparam.DefaultSet(descriptors, nil, rng)
	require.NoError(t, err)

	// chirp_mass uses fitted bounds; seed them from a spread population.
	live := make([]params.Point, 100)
	for i := range live {
		live[i] = randomPoint(descriptors, rng)
	}
	live[0]["chirp_mass"] = 11
	live[1]["chirp_mass"] = 79
	require.NoError(t, c.Update(live))

	for i := 0; i < 1000; i++ {
		x := randomPoint(descriptors, rng)
		// Stay inside the fitted chirp-mass range.
		x["chirp_mass"] = 20 + 40*rng.Float64()

		xPrime, logJ, err := c.Forward(x)
		require.NoError(t, err, "point %d must transform", i)
		require.False(t, math.IsInf(logJ, 0) || math.IsNaN(logJ), "point %d: non-finite logJ", i)

		back, logJInv, err := c.Inverse(xPrime)
		require.NoError(t, err, "point %d must invert", i)

		for name, want := range x {
			assert.InDelta(t, want, back[name], 1e-8, "point %d: %s must round-trip", i, name)
		}
		assert.InDelta(t, 0.0, logJ+logJInv, 1e-8, "point %d: log-Jacobians must cancel", i)
	}
}

// randomPoint draws one point uniformly inside the descriptor bounds,
// nudged off singular edges.
func randomPoint(descriptors []params.Descriptor, rng *rand.Rand) params.Point {
	p := make(params.Point, len(descriptors))
	for _, d := range descriptors {
		span := d.Upper - d.Lower
		p[d.Name] = d.Lower + span*(0.01+0.98*rng.Float64())
	}
	return p
}
