package reparam_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/reparam"
)

// TestDistance_ComovingVolumeRoundTrip checks the cubic converter across the
// domain with cancelling log-Jacobians.
func TestDistance_ComovingVolumeRoundTrip(t *testing.T) {
	d, err := reparam.NewDistance("luminosity_distance", [2]float64{100, 1000}, reparam.PriorUniformComovingVolume, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"luminosity_distance_u"}, d.PrimeParameters())

	for _, dist := range []float64{100, 250, 500, 999.9, 1000} {
		xPrime := params.Point{}
		logJ, err := d.Forward(params.Point{"luminosity_distance": dist}, xPrime)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, xPrime["luminosity_distance_u"], -1.0)
		assert.LessOrEqual(t, xPrime["luminosity_distance_u"], 1.0)

		x := params.Point{}
		logJInv, err := d.Inverse(x, xPrime)
		require.NoError(t, err)

		assert.InDelta(t, dist, x["luminosity_distance"], 1e-6, "d=%g must round-trip", dist)
		assert.InDelta(t, 0.0, logJ+logJInv, 1e-9, "log-Jacobians must cancel at d=%g", dist)
	}
}

// TestDistance_ForwardValues checks the prior-uniform coordinate against
// hand-computed values for the cubic prior.
func TestDistance_ForwardValues(t *testing.T) {
	d, err := reparam.NewDistance("dl", [2]float64{0, 1000}, reparam.PriorUniformComovingVolume, 0)
	require.NoError(t, err)

	xPrime := params.Point{}
	logJ, err := d.Forward(params.Point{"dl": 500}, xPrime)
	require.NoError(t, err)

	// u = (500³ − 0)/1000³ = 1/8, so z = 2u − 1 = −0.75.
	assert.InDelta(t, -0.75, xPrime["dl_u"], 1e-12)
	want := math.Log(2) + math.Log(3) + 2*math.Log(500) - 3*math.Log(1000)
	assert.InDelta(t, want, logJ, 1e-12)
}

// TestDistance_ReflectiveUpperEdge verifies that prime values past +1 fold
// back while the lower edge stays hard.
func TestDistance_ReflectiveUpperEdge(t *testing.T) {
	d, err := reparam.NewDistance("dl", [2]float64{100, 1000}, reparam.PriorUniformComovingVolume, 0)
	require.NoError(t, err)

	folded := params.Point{}
	_, err = d.Inverse(folded, params.Point{"dl_u": 1.2})
	require.NoError(t, err)

	direct := params.Point{}
	_, err = d.Inverse(direct, params.Point{"dl_u": 0.8})
	require.NoError(t, err)
	assert.InDelta(t, direct["dl"], folded["dl"], 1e-9, "1.2 must fold to 0.8")

	_, err = d.Inverse(params.Point{}, params.Point{"dl_u": -1.5})
	assert.ErrorIs(t, err, reparam.ErrDomain, "the lower edge is hard")
}

// TestDistance_UniformPriorIsAffine checks that k = 0 reduces to a plain
// affine rescaling.
func TestDistance_UniformPriorIsAffine(t *testing.T) {
	d, err := reparam.NewDistance("dl", [2]float64{100, 300}, reparam.PriorUniform, 0)
	require.NoError(t, err)

	xPrime := params.Point{}
	logJ, err := d.Forward(params.Point{"dl": 200}, xPrime)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, xPrime["dl_u"], 1e-12, "midpoint must map to 0")
	assert.InDelta(t, math.Log(2)-math.Log(200), logJ, 1e-12)
}

// TestDistance_PowerLawPrior exercises the caller-supplied power path.
func TestDistance_PowerLawPrior(t *testing.T) {
	d, err := reparam.NewDistance("dl", [2]float64{1, 10}, reparam.PriorPowerLaw, 1)
	require.NoError(t, err)

	xPrime := params.Point{}
	_, err = d.Forward(params.Point{"dl": 5}, xPrime)
	require.NoError(t, err)
	// u = (25 − 1)/99, z = 2u − 1.
	assert.InDelta(t, 2*24.0/99.0-1, xPrime["dl_u"], 1e-12)
}

// TestDistance_Errors covers domain and configuration failures.
func TestDistance_Errors(t *testing.T) {
	d, err := reparam.NewDistance("dl", [2]float64{100, 1000}, reparam.PriorUniformComovingVolume, 0)
	require.NoError(t, err)

	_, err = d.Forward(params.Point{"dl": 50}, params.Point{})
	assert.ErrorIs(t, err, reparam.ErrDomain)

	_, err = d.Forward(params.Point{"dl": 1500}, params.Point{})
	assert.ErrorIs(t, err, reparam.ErrDomain)

	_, err = reparam.NewDistance("dl", [2]float64{-1, 10}, reparam.PriorUniform, 0)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "negative lower bound")

	_, err = reparam.NewDistance("dl", [2]float64{1, 10}, reparam.PriorPowerLaw, -2)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "negative power")

	_, err = reparam.NewDistance("", [2]float64{1, 10}, reparam.PriorUniform, 0)
	assert.ErrorIs(t, err, reparam.ErrConfiguration, "empty name")
}
