// Package reparam - the string-keyed reparameterisation registry.
//
// Proposal configuration resolves reparameterisations by name at run
// configuration time, so the registry maps string keys to explicit factory
// closures instead of relying on reflection. DefaultRegistry returns a
// fresh registry preloaded with the gravitational-wave catalog; callers may
// register additional factories without affecting other registries.
package reparam

import (
	"math"
	"math/rand/v2"
	"sort"
)

// FactoryConfig carries everything a factory needs to build one
// reparameterisation instance.
type FactoryConfig struct {
	// Parameters are the physical parameter names the instance will own.
	Parameters []string
	// Bounds holds the prior bounds for every name in Parameters (and any
	// context parameters a factory may consult).
	Bounds map[string][2]float64
	// RNG is the stream for transforms that draw auxiliary variables.
	// May be nil; factories fall back to the package default stream.
	RNG *rand.Rand
}

// Factory builds one reparameterisation from a FactoryConfig.
type Factory func(cfg FactoryConfig) (Reparameterisation, error)

// Registry maps string keys to reparameterisation factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under key.
//
// Errors: ErrConfiguration on an empty key, nil factory, or duplicate key.
func (r *Registry) Register(key string, f Factory) error {
	if key == "" {
		return configErrf("registry: empty key")
	}
	if f == nil {
		return configErrf("registry: nil factory for %q", key)
	}
	if _, dup := r.factories[key]; dup {
		return configErrf("registry: duplicate key %q", key)
	}
	r.factories[key] = f
	return nil
}

// Known reports whether key is registered.
func (r *Registry) Known(key string) bool {
	_, ok := r.factories[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New builds a reparameterisation for key.
//
// Errors: ErrConfiguration for unknown keys; factory errors pass through.
func (r *Registry) New(key string, cfg FactoryConfig) (Reparameterisation, error) {
	f, ok := r.factories[key]
	if !ok {
		return nil, configErrf("registry: unknown reparameterisation %q", key)
	}
	return f(cfg)
}

// DefaultRegistry returns a fresh registry preloaded with the
// gravitational-wave catalog:
//
//	null, rescale, time, mass, mass-ratio, angle-2pi, angle-pi, periodic,
//	angle-sine, sky-ra-dec, sky-az-zen, distance, delta-phase, lisa-sky
func DefaultRegistry() *Registry {
	r := NewRegistry()
	builtin := map[string]Factory{
		"null":        nullFactory,
		"rescale":     rescaleFactory(RescaleOptions{}),
		"time":        rescaleFactory(RescaleOptions{Offset: true, UpdateBounds: true}),
		"mass":        rescaleFactory(RescaleOptions{UpdateBounds: true}),
		"mass-ratio":  rescaleFactory(RescaleOptions{UpdateBounds: true, Reflective: true}),
		"angle-2pi":   angleFactory,
		"angle-pi":    angleFactory,
		"periodic":    angleFactory,
		"angle-sine":  angleSineFactory,
		"sky-ra-dec":  skyFactory(RADec),
		"sky-az-zen":  skyFactory(AzZen),
		"distance":    distanceFactory,
		"delta-phase": deltaPhaseFactory,
		"lisa-sky":    lisaFactory,
	}
	for key, f := range builtin {
		// Keys are distinct literals; Register cannot fail here.
		_ = r.Register(key, f)
	}
	return r
}

func nullFactory(cfg FactoryConfig) (Reparameterisation, error) {
	return NewNull(cfg.Parameters...)
}

func rescaleFactory(opts RescaleOptions) Factory {
	return func(cfg FactoryConfig) (Reparameterisation, error) {
		return NewRescale(cfg.Parameters, cfg.Bounds, opts)
	}
}

func angleFactory(cfg FactoryConfig) (Reparameterisation, error) {
	if len(cfg.Parameters) != 1 {
		return nil, configErrf("angle: expected one parameter, got %d", len(cfg.Parameters))
	}
	name := cfg.Parameters[0]
	b, ok := cfg.Bounds[name]
	if !ok {
		return nil, configErrf("angle: missing bounds for %q", name)
	}
	return NewAngle(name, b, cfg.RNG)
}

func angleSineFactory(cfg FactoryConfig) (Reparameterisation, error) {
	if len(cfg.Parameters) != 1 {
		return nil, configErrf("angle-sine: expected one parameter, got %d", len(cfg.Parameters))
	}
	name := cfg.Parameters[0]
	b, ok := cfg.Bounds[name]
	if !ok {
		return nil, configErrf("angle-sine: missing bounds for %q", name)
	}
	return NewAngleSine(name, b)
}

// skyFactory builds an AnglePair, identifying the azimuthal member of the
// pair as the parameter whose upper bound is 2π.
func skyFactory(conv SkyConvention) Factory {
	return func(cfg FactoryConfig) (Reparameterisation, error) {
		if len(cfg.Parameters) != 2 {
			return nil, configErrf("%s: expected two parameters, got %d", conv, len(cfg.Parameters))
		}
		const tol = 1e-9
		var alpha, beta string
		for _, n := range cfg.Parameters {
			b, ok := cfg.Bounds[n]
			if !ok {
				return nil, configErrf("%s: missing bounds for %q", conv, n)
			}
			if math.Abs(b[1]-2*math.Pi) < tol && math.Abs(b[0]) < tol && alpha == "" {
				alpha = n
			} else {
				beta = n
			}
		}
		if alpha == "" || beta == "" {
			return nil, configErrf("%s: could not identify azimuthal member of (%q, %q)", conv, cfg.Parameters[0], cfg.Parameters[1])
		}
		return NewAnglePair(alpha, beta, cfg.Bounds, conv, cfg.RNG)
	}
}

func distanceFactory(cfg FactoryConfig) (Reparameterisation, error) {
	if len(cfg.Parameters) != 1 {
		return nil, configErrf("distance: expected one parameter, got %d", len(cfg.Parameters))
	}
	name := cfg.Parameters[0]
	b, ok := cfg.Bounds[name]
	if !ok {
		return nil, configErrf("distance: missing bounds for %q", name)
	}
	return NewDistance(name, b, PriorUniformComovingVolume, 0)
}

func deltaPhaseFactory(cfg FactoryConfig) (Reparameterisation, error) {
	if len(cfg.Parameters) != 1 {
		return nil, configErrf("delta-phase: expected one parameter, got %d", len(cfg.Parameters))
	}
	return NewDeltaPhase(cfg.Parameters[0], "", "")
}

func lisaFactory(cfg FactoryConfig) (Reparameterisation, error) {
	return NewLISAExtrinsicSymmetry(cfg.Parameters, cfg.Bounds, LISAOptions{IncludeModeIndex: true}, cfg.RNG)
}
