// Package reparam - the Composite engine.
//
// A Composite chains an ordered set of Reparameterisations into one
// bidirectional map over the full physical parameter vector.
//
// Construction validates:
//  1. Coverage — the union of owned parameters equals exactly the declared
//     physical set: no duplicates, no omissions, no unknown names.
//  2. Ordering — a transform that Requires context parameters is sequenced
//     before the transforms owning them, so the reverse-order inverse pass
//     reconstructs the context first. Cyclic requirements are rejected.
//
// Both Forward and Inverse are all-or-nothing: on any error the inputs are
// untouched and no partial output escapes.
package reparam

import (
	"github.com/avayla/gwarp/params"
)

// Composite is an ordered sequence of Reparameterisations covering the full
// physical parameter set. Immutable after construction except for members
// implementing Fittable, which Update refits in place.
type Composite struct {
	seq      []Reparameterisation
	physical []string
	prime    []string
}

// NewComposite validates coverage and dependency ordering of rs against the
// declared physical parameter set and returns the sequenced composite. The
// supplied order is preserved wherever dependencies allow.
//
// Errors: ErrConfiguration on empty inputs, duplicate or unknown owned
// parameters, missing coverage, colliding prime names, unresolvable
// Requires, or cyclic dependencies.
//
// Complexity: O(P + R·E) for P parameters, R transforms, E dependency edges.
func NewComposite(physical []string, rs []Reparameterisation) (*Composite, error) {
	if len(physical) == 0 {
		return nil, configErrf("composite: empty physical parameter set")
	}
	if len(rs) == 0 {
		return nil, configErrf("composite: no reparameterisations")
	}

	wanted := make(map[string]bool, len(physical))
	for _, p := range physical {
		if p == "" {
			return nil, configErrf("composite: empty physical parameter name")
		}
		if wanted[p] {
			return nil, configErrf("composite: duplicate physical parameter %q", p)
		}
		wanted[p] = true
	}

	// Stage 1: ownership and prime-name uniqueness.
	owner := make(map[string]int, len(physical))
	primeSeen := make(map[string]bool)
	for i, r := range rs {
		for _, p := range r.Parameters() {
			if !wanted[p] {
				return nil, configErrf("composite: reparameterisation %d claims unknown parameter %q", i, p)
			}
			if j, dup := owner[p]; dup {
				return nil, configErrf("composite: parameter %q claimed by reparameterisations %d and %d", p, j, i)
			}
			owner[p] = i
		}
		for _, p := range r.PrimeParameters() {
			if primeSeen[p] {
				return nil, configErrf("composite: duplicate prime parameter %q", p)
			}
			primeSeen[p] = true
		}
	}
	for p := range wanted {
		if _, ok := owner[p]; !ok {
			return nil, configErrf("composite: physical parameter %q is not covered", p)
		}
	}

	// Stage 2: dependency edges requirer→owner. The requirer must precede
	// the owner so the owner inverts first in the reverse pass.
	adj := make([][]int, len(rs))
	indeg := make([]int, len(rs))
	for i, r := range rs {
		for _, req := range r.Requires() {
			j, ok := owner[req]
			if !ok {
				return nil, configErrf("composite: reparameterisation %d requires uncovered parameter %q", i, req)
			}
			if j == i {
				return nil, configErrf("composite: reparameterisation %d requires its own parameter %q", i, req)
			}
			adj[i] = append(adj[i], j)
			indeg[j]++
		}
	}

	// Stage 3: stable topological order (earliest-index-first Kahn).
	order := make([]int, 0, len(rs))
	done := make([]bool, len(rs))
	for len(order) < len(rs) {
		next := -1
		for i := range rs {
			if !done[i] && indeg[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, configErrf("composite: cyclic parameter dependencies")
		}
		done[next] = true
		order = append(order, next)
		for _, j := range adj[next] {
			indeg[j]--
		}
	}

	c := &Composite{
		seq:      make([]Reparameterisation, len(rs)),
		physical: append([]string(nil), physical...),
	}
	for k, i := range order {
		c.seq[k] = rs[i]
	}
	for _, r := range c.seq {
		c.prime = append(c.prime, r.PrimeParameters()...)
	}
	return c, nil
}

// PhysicalParameters returns a copy of the full physical parameter set.
func (c *Composite) PhysicalParameters() []string {
	return append([]string(nil), c.physical...)
}

// PrimeParameters returns a copy of the transformed parameter set in
// sequence order.
func (c *Composite) PrimeParameters() []string {
	return append([]string(nil), c.prime...)
}

// DiscretePrimeParameters returns the integer-valued prime parameters
// declared by the members, in sequence order. Empty when no member carries
// a discrete prime.
func (c *Composite) DiscretePrimeParameters() []string {
	var out []string
	for _, r := range c.seq {
		if d, ok := r.(Discrete); ok {
			out = append(out, d.DiscretePrimeParameters()...)
		}
	}
	return out
}

// Sequence returns the validated transform order.
func (c *Composite) Sequence() []Reparameterisation {
	return append([]Reparameterisation(nil), c.seq...)
}

// Forward applies every reparameterisation in sequence order to x and
// returns the assembled transformed point with the summed log-Jacobian.
// x is never mutated; on error no partial output escapes.
func (c *Composite) Forward(x params.Point) (params.Point, float64, error) {
	xPrime := make(params.Point, len(c.prime))
	var logJ float64
	for _, r := range c.seq {
		lj, err := r.Forward(x, xPrime)
		if err != nil {
			return nil, 0, err
		}
		logJ += lj
	}
	return xPrime, logJ, nil
}

// Inverse applies every inverse in reverse sequence order to xPrime and
// returns the reconstructed physical point with the summed log-Jacobian,
// which equals the negation of Forward's total for the same pair.
// xPrime is never mutated; on error no partial output escapes.
func (c *Composite) Inverse(xPrime params.Point) (params.Point, float64, error) {
	x := make(params.Point, len(c.physical))
	var logJ float64
	for i := len(c.seq) - 1; i >= 0; i-- {
		lj, err := c.seq[i].Inverse(x, xPrime)
		if err != nil {
			return nil, 0, err
		}
		logJ += lj
	}
	return x, logJ, nil
}

// Update refits every Fittable member from the physical live points.
// Non-fittable members are untouched.
func (c *Composite) Update(points []params.Point) error {
	for _, r := range c.seq {
		if f, ok := r.(Fittable); ok {
			if err := f.Update(points); err != nil {
				return err
			}
		}
	}
	return nil
}
