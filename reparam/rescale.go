package reparam

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/avayla/gwarp/params"
)

// RescaleOptions configures a Rescale transform.
//
//   - Offset       — subtract the midpoint of the construction bounds before
//     rescaling. Used for parameters with large absolute values and a narrow
//     prior (e.g. geocent_time) to preserve floating-point precision.
//   - UpdateBounds — refit the rescaling bounds from the live-point
//     population on Update; fitted bounds are frozen until the next Update.
//   - Reflective   — fold values that cross a boundary back into range with
//     |J| = 1 instead of rejecting them. Applies to physical values on
//     Forward and to prime values on Inverse.
type RescaleOptions struct {
	Offset       bool
	UpdateBounds bool
	Reflective   bool
}

// Rescale maps each owned parameter affinely from its bounds onto [-1, 1].
//
// Per parameter, the forward map is z = 2·(v − lo)/(hi − lo) − 1 with
// log-Jacobian log 2 − log(hi − lo); the inverse negates it. Reflective
// folding is an isometry and contributes nothing to the Jacobian.
type Rescale struct {
	base
	opts   RescaleOptions
	offset map[string]float64
	// lo/hi are in offset-subtracted units and may be refitted by Update.
	lo map[string]float64
	hi map[string]float64
}

var _ Fittable = (*Rescale)(nil)

// NewRescale constructs a Rescale over names with per-name prior bounds.
//
// Contract:
//   - every name must have finite, ordered bounds in bounds.
//
// Errors: ErrConfiguration on missing/degenerate bounds or duplicate names.
func NewRescale(names []string, bounds map[string][2]float64, opts RescaleOptions) (*Rescale, error) {
	if len(names) == 0 {
		return nil, configErrf("rescale: no parameters")
	}
	r := &Rescale{
		opts:   opts,
		offset: make(map[string]float64, len(names)),
		lo:     make(map[string]float64, len(names)),
		hi:     make(map[string]float64, len(names)),
	}
	for _, n := range names {
		if _, dup := r.lo[n]; dup {
			return nil, configErrf("rescale: duplicate parameter %q", n)
		}
		b, ok := bounds[n]
		if !ok {
			return nil, configErrf("rescale: missing bounds for %q", n)
		}
		if !(b[0] < b[1]) || math.IsInf(b[0], 0) || math.IsInf(b[1], 0) {
			return nil, configErrf("rescale: invalid bounds [%g, %g] for %q", b[0], b[1], n)
		}
		var off float64
		if opts.Offset {
			off = 0.5 * (b[0] + b[1])
		}
		r.offset[n] = off
		r.lo[n] = b[0] - off
		r.hi[n] = b[1] - off
		r.parameters = append(r.parameters, n)
		r.prime = append(r.prime, n+"_prime")
	}
	return r, nil
}

// Forward maps each owned parameter onto [-1, 1].
func (r *Rescale) Forward(x, xPrime params.Point) (float64, error) {
	var logJ float64
	for i, n := range r.parameters {
		v, err := get(x, n)
		if err != nil {
			return 0, err
		}
		u := v - r.offset[n]
		lo, hi := r.lo[n], r.hi[n]
		if r.opts.Reflective {
			u = foldReflect(u, lo, hi)
		} else if u < lo || u > hi {
			return 0, domainErrf(n, v, "outside bounds [%g, %g]", lo+r.offset[n], hi+r.offset[n])
		}
		xPrime[r.prime[i]] = 2*(u-lo)/(hi-lo) - 1
		logJ += math.Log(2) - math.Log(hi-lo)
	}
	return logJ, nil
}

// Inverse maps each prime parameter back into the physical bounds.
func (r *Rescale) Inverse(x, xPrime params.Point) (float64, error) {
	var logJ float64
	for i, n := range r.parameters {
		z, err := get(xPrime, r.prime[i])
		if err != nil {
			return 0, err
		}
		if z < -1 || z > 1 {
			if !r.opts.Reflective {
				return 0, domainErrf(r.prime[i], z, "outside [-1, 1]")
			}
			z = foldReflect(z, -1, 1)
		}
		lo, hi := r.lo[n], r.hi[n]
		x[n] = lo + (z+1)*(hi-lo)/2 + r.offset[n]
		logJ += math.Log(hi-lo) - math.Log(2)
	}
	return logJ, nil
}

// Update refits the rescaling bounds from the physical live points.
// No-op unless the transform was constructed with UpdateBounds.
//
// Errors: ErrConfiguration when a parameter is missing from the population
// or its sample range is degenerate.
func (r *Rescale) Update(points []params.Point) error {
	if !r.opts.UpdateBounds {
		return nil
	}
	if len(points) == 0 {
		return configErrf("rescale: update with empty population")
	}
	for _, n := range r.parameters {
		values := make([]float64, 0, len(points))
		for _, p := range points {
			v, ok := p[n]
			if !ok {
				return configErrf("rescale: parameter %q missing from population", n)
			}
			values = append(values, v-r.offset[n])
		}
		lo, err := stats.Min(values)
		if err != nil {
			return configErrf("rescale: %v", err)
		}
		hi, err := stats.Max(values)
		if err != nil {
			return configErrf("rescale: %v", err)
		}
		if !(lo < hi) {
			return configErrf("rescale: degenerate sample range for %q", n)
		}
		r.lo[n] = lo
		r.hi[n] = hi
	}
	return nil
}

// Bounds returns the current (possibly fitted) bounds for one parameter in
// physical units. The second return is false for unknown names.
func (r *Rescale) Bounds(name string) ([2]float64, bool) {
	lo, ok := r.lo[name]
	if !ok {
		return [2]float64{}, false
	}
	off := r.offset[name]
	return [2]float64{lo + off, r.hi[name] + off}, true
}

// foldReflect folds v into [lo, hi] by reflecting across the boundaries.
// Values already in range are untouched; the map is piecewise isometric.
func foldReflect(v, lo, hi float64) float64 {
	w := hi - lo
	t := math.Mod(v-lo, 2*w)
	if t < 0 {
		t += 2 * w
	}
	if t > w {
		t = 2*w - t
	}
	return lo + t
}
