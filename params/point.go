package params

import "sort"

// Point is one sample in a given space (physical or transformed), keyed by
// parameter name. Points in transformed space may carry a different
// parameter set than physical space — added latent dimensions, merged
// composite parameters — so the mapping is sized, never positional.
type Point map[string]float64

// Clone returns an independent copy of the point.
func (p Point) Clone() Point {
	q := make(Point, len(p))
	for k, v := range p {
		q[k] = v
	}
	return q
}

// Has reports whether the point carries a value for name.
func (p Point) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Names returns the parameter names in sorted order.
// Sorting keeps every consumer of a Point deterministic.
func (p Point) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Project returns a new point containing only the named parameters that are
// present in p. Missing names are skipped, not zero-filled.
func (p Point) Project(names []string) Point {
	q := make(Point, len(names))
	for _, n := range names {
		if v, ok := p[n]; ok {
			q[n] = v
		}
	}
	return q
}
