// Package reparam - the Default Reparameterisation Set.
//
// DefaultSet maps well-known gravitational-wave parameter names to
// recommended reparameterisations via an alias table, falls back by
// topology for unrecognized names, honors caller overrides (which replace,
// never merge with, the default for a name), and assembles the result into
// a validated Composite.
package reparam

import (
	"math"
	"sort"
	"strings"

	"math/rand/v2"

	"github.com/avayla/gwarp/params"
)

// aliasEntry maps a canonical parameter name to a registry key and the
// partner names that must be transformed jointly with it.
type aliasEntry struct {
	key      string
	partners []string
}

// gwAliases is the default catalog for common gravitational-wave parameter
// names. Lookup is case-insensitive; partner matching is case-insensitive
// against the supplied descriptor names.
var gwAliases = map[string]aliasEntry{
	"chirp_mass":          {key: "mass"},
	"mass_ratio":          {key: "mass-ratio"},
	"ra":                  {key: "sky-ra-dec", partners: []string{"dec"}},
	"dec":                 {key: "sky-ra-dec", partners: []string{"ra"}},
	"azimuth":             {key: "sky-az-zen", partners: []string{"zenith", "zen"}},
	"zenith":              {key: "sky-az-zen", partners: []string{"azimuth", "az"}},
	"theta_1":             {key: "angle-sine"},
	"theta_2":             {key: "angle-sine"},
	"tilt_1":              {key: "angle-sine"},
	"tilt_2":              {key: "angle-sine"},
	"theta_jn":            {key: "angle-sine"},
	"iota":                {key: "angle-sine"},
	"phi_jl":              {key: "angle-2pi"},
	"phi_12":              {key: "angle-2pi"},
	"phase":               {key: "angle-2pi"},
	"psi":                 {key: "angle-pi"},
	"geocent_time":        {key: "time"},
	"time_jitter":         {key: "periodic"},
	"a_1":                 {key: "rescale"},
	"a_2":                 {key: "rescale"},
	"chi_1":               {key: "rescale"},
	"chi_2":               {key: "rescale"},
	"luminosity_distance": {key: "distance"},
}

// DefaultSet builds the recommended Composite for a descriptor set.
//
// Resolution order per parameter:
//  1. overrides[name], used verbatim (replacing, never merging with, the
//     default for that name);
//  2. the gravitational-wave alias table, with joint partners gathered from
//     the descriptor set;
//  3. a topology fallback — Linear → null, Bounded → rescale,
//     Reflective → reflective rescale, Periodic → angle; Composite gathers
//     the declared Partners into one joint group (a two-angle group matching
//     a sky chart gets the sky transform, anything else a joint rescale).
//
// A nil rng selects the package default stream; every transform that draws
// auxiliary variables receives its own derived substream.
//
// Errors: ErrConfiguration on invalid or duplicate descriptors, composite
// topology without an alias or override, or any coverage failure surfaced
// by NewComposite.
func DefaultSet(descriptors []params.Descriptor, overrides map[string]Reparameterisation, rng *rand.Rand) (*Composite, error) {
	if len(descriptors) == 0 {
		return nil, configErrf("default set: no descriptors")
	}
	rng = orDefaultRNG(rng)

	names := make([]string, 0, len(descriptors))
	bounds := make(map[string][2]float64, len(descriptors))
	byLower := make(map[string]params.Descriptor, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, configErrf("default set: %v", err)
		}
		if _, dup := bounds[d.Name]; dup {
			return nil, configErrf("default set: duplicate descriptor %q", d.Name)
		}
		names = append(names, d.Name)
		bounds[d.Name] = [2]float64{d.Lower, d.Upper}
		byLower[strings.ToLower(d.Name)] = d
	}

	registry := DefaultRegistry()
	covered := make(map[string]bool, len(names))
	var seq []Reparameterisation
	var stream uint64

	// Stage 1: overrides, in sorted-name order for determinism.
	overrideNames := make([]string, 0, len(overrides))
	for n := range overrides {
		overrideNames = append(overrideNames, n)
	}
	sort.Strings(overrideNames)
	for _, n := range overrideNames {
		r := overrides[n]
		if r == nil {
			return nil, configErrf("default set: nil override for %q", n)
		}
		if covered[n] {
			continue // already claimed by an earlier override's joint group
		}
		for _, p := range r.Parameters() {
			covered[p] = true
		}
		seq = append(seq, r)
	}

	// Stage 2: aliases and topology fallbacks, in descriptor order.
	for _, d := range descriptors {
		if covered[d.Name] {
			continue
		}
		group := []string{d.Name}
		key := ""
		if entry, ok := gwAliases[strings.ToLower(d.Name)]; ok {
			key = entry.key
			for _, partner := range entry.partners {
				pd, present := byLower[strings.ToLower(partner)]
				if present && !covered[pd.Name] && pd.Name != d.Name {
					group = append(group, pd.Name)
				}
			}
		} else if d.Topology == params.Composite {
			for _, partner := range d.Partners {
				pd, present := byLower[strings.ToLower(partner)]
				if !present {
					return nil, configErrf("default set: partner %q of %q is not in the descriptor set", partner, d.Name)
				}
				if !covered[pd.Name] && pd.Name != d.Name {
					group = append(group, pd.Name)
				}
			}
			key = jointKey(group, bounds)
		} else {
			switch d.Topology {
			case params.Linear:
				key = "null"
			case params.Bounded:
				key = "rescale"
			case params.Reflective:
				key = "mass-ratio" // reflective rescale with fitted bounds
			case params.Periodic:
				key = "angle-2pi"
			default:
				return nil, configErrf("default set: no default for %q with %s topology; supply an override", d.Name, d.Topology)
			}
		}
		r, err := registry.New(key, FactoryConfig{
			Parameters: group,
			Bounds:     bounds,
			RNG:        deriveRNG(rng, stream),
		})
		if err != nil {
			return nil, err
		}
		stream++
		for _, p := range r.Parameters() {
			covered[p] = true
		}
		seq = append(seq, r)
	}

	return NewComposite(names, seq)
}

// jointKey picks the default transform for a partner-declared joint group.
// A two-angle group whose azimuthal member spans [0, 2π) and whose second
// member fits a sky chart gets the matching sky transform; any other group
// is rescaled jointly.
func jointKey(group []string, bounds map[string][2]float64) string {
	if len(group) != 2 {
		return "rescale"
	}
	const tol = 1e-9
	var alpha, beta string
	for _, n := range group {
		b := bounds[n]
		if math.Abs(b[0]) < tol && math.Abs(b[1]-2*math.Pi) < tol && alpha == "" {
			alpha = n
		} else {
			beta = n
		}
	}
	if alpha == "" || beta == "" {
		return "rescale"
	}
	bb := bounds[beta]
	switch {
	case bb[0] >= -math.Pi/2-tol && bb[1] <= math.Pi/2+tol:
		return "sky-ra-dec"
	case bb[0] >= -tol && bb[1] <= math.Pi+tol:
		return "sky-az-zen"
	default:
		return "rescale"
	}
}
