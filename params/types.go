package params

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration is returned when a descriptor or descriptor set is
// malformed. Configuration errors are detected at construction time and are
// never retried.
var ErrConfiguration = errors.New("params: invalid configuration")

// ConfigError reports a malformed Descriptor with the offending detail.
// It unwraps to ErrConfiguration so callers can match with errors.Is.
type ConfigError struct {
	Name   string // parameter name, may be empty when the name itself is the problem
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("params: %s", e.Reason)
	}
	return fmt.Sprintf("params: parameter %q: %s", e.Name, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Topology classifies the structure of a parameter's prior domain.
//
//   - Linear     — unbounded (or effectively unbounded) support.
//   - Bounded    — hard prior bounds; values outside are invalid.
//   - Periodic   — the domain wraps around (angles).
//   - Reflective — hard bounds where crossing values fold back into range
//     instead of being rejected.
//   - Composite  — must be transformed jointly with named partner
//     parameters (e.g. right ascension with declination).
type Topology int

const (
	// Linear topology: unconstrained support, identity is a valid transform.
	Linear Topology = iota

	// Bounded topology: values outside [Lower, Upper] are a domain error.
	Bounded

	// Periodic topology: the domain is [Lower, Upper) and wraps.
	Periodic

	// Reflective topology: boundary crossings fold back into range.
	Reflective

	// Composite topology: transformed jointly with Partners.
	Composite
)

// String returns the canonical lower-case name of the topology.
func (t Topology) String() string {
	switch t {
	case Linear:
		return "linear"
	case Bounded:
		return "bounded"
	case Periodic:
		return "periodic"
	case Reflective:
		return "reflective"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("topology(%d)", int(t))
	}
}

// Descriptor holds the static metadata for one physical parameter.
// Descriptors are value types and must not be mutated after Validate.
//
// Lower/Upper may be ±Inf for Linear topology; every other topology
// requires finite, ordered bounds.
type Descriptor struct {
	Name     string
	Lower    float64
	Upper    float64
	Topology Topology
	// Partners lists the parameters that must be transformed jointly with
	// this one. Only meaningful for Composite topology.
	Partners []string
}

// Validate checks the descriptor for internal consistency.
//
// Contract:
//   - Name must be non-empty.
//   - Lower < Upper whenever either bound is finite.
//   - Non-linear topologies require both bounds finite.
//   - Partners are only allowed (and then required) for Composite topology.
//
// Errors: *ConfigError wrapping ErrConfiguration.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return &ConfigError{Reason: "empty parameter name"}
	}
	if d.Lower >= d.Upper {
		return &ConfigError{Name: d.Name, Reason: fmt.Sprintf("bounds not ordered: [%g, %g]", d.Lower, d.Upper)}
	}
	if d.Topology != Linear {
		if math.IsInf(d.Lower, 0) || math.IsInf(d.Upper, 0) {
			return &ConfigError{Name: d.Name, Reason: fmt.Sprintf("%s topology requires finite bounds", d.Topology)}
		}
	}
	if d.Topology == Composite && len(d.Partners) == 0 {
		return &ConfigError{Name: d.Name, Reason: "composite topology requires at least one partner"}
	}
	if d.Topology != Composite && len(d.Partners) != 0 {
		return &ConfigError{Name: d.Name, Reason: fmt.Sprintf("partners declared for %s topology", d.Topology)}
	}
	return nil
}

// BoundsFinite reports whether both prior bounds are finite.
func (d Descriptor) BoundsFinite() bool {
	return !math.IsInf(d.Lower, 0) && !math.IsInf(d.Upper, 0)
}

// Width returns Upper − Lower.
func (d Descriptor) Width() float64 { return d.Upper - d.Lower }
