package reparam

import "github.com/avayla/gwarp/params"

// Null is the identity reparameterisation: each owned parameter passes
// through unchanged and the log-Jacobian is zero. It is the default for
// parameters with linear topology.
type Null struct {
	base
}

// NewNull constructs an identity transform over the given parameter names.
//
// Errors: ErrConfiguration when no names are supplied or a name repeats.
func NewNull(names ...string) (*Null, error) {
	if len(names) == 0 {
		return nil, configErrf("null: no parameters")
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, configErrf("null: empty parameter name")
		}
		if _, dup := seen[n]; dup {
			return nil, configErrf("null: duplicate parameter %q", n)
		}
		seen[n] = struct{}{}
	}
	owned := append([]string(nil), names...)
	return &Null{base: base{parameters: owned, prime: owned}}, nil
}

// Forward copies each owned parameter into xPrime. logJ is always 0.
func (n *Null) Forward(x, xPrime params.Point) (float64, error) {
	for _, name := range n.parameters {
		v, err := get(x, name)
		if err != nil {
			return 0, err
		}
		xPrime[name] = v
	}
	return 0, nil
}

// Inverse copies each owned parameter back into x. logJ is always 0.
func (n *Null) Inverse(x, xPrime params.Point) (float64, error) {
	for _, name := range n.parameters {
		v, err := get(xPrime, name)
		if err != nil {
			return 0, err
		}
		x[name] = v
	}
	return 0, nil
}
