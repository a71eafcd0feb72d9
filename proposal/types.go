package proposal

import (
	"errors"
	"fmt"

	"github.com/avayla/gwarp/params"
	"github.com/avayla/gwarp/reparam"
)

// ErrExhausted is returned when Sample's bounded retry budget is spent
// before enough in-domain candidates are produced. Fatal for that call; the
// host engine decides whether to abort the run.
var ErrExhausted = errors.New("proposal: retry budget exhausted")

// ErrConfiguration is returned for malformed construction-time
// configuration. Never retried.
var ErrConfiguration = errors.New("proposal: invalid configuration")

// ExhaustedError carries the spent retry count and the last per-candidate
// failure. It unwraps to ErrExhausted.
type ExhaustedError struct {
	Retries int
	Last    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("proposal: retry budget exhausted after %d rounds (last failure: %v)", e.Retries, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return ErrExhausted }

// ConfigError carries the detail of a construction-time failure.
// It unwraps to ErrConfiguration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "proposal: " + e.Reason }

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// configErrf builds a ConfigError with a formatted reason.
func configErrf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Base is the capability interface of the externally supplied proposal.
// It lives entirely in transformed space and never sees physical
// coordinates. Any conforming implementation is substitutable.
type Base interface {
	// Fit trains the base proposal on transformed-space points.
	Fit(points []params.Point) error

	// SampleTransformed draws n transformed-space points.
	SampleTransformed(n int) ([]params.Point, error)

	// LogProbTransformed evaluates the base density at a transformed point.
	LogProbTransformed(p params.Point) (float64, error)
}

// Constraint is the host engine's likelihood-constraint predicate,
// evaluated on physical-space points during MCMC refinement.
type Constraint func(p params.Point) bool

// Proposal is the contract exposed to the host sampling engine. All three
// operations work in physical-space units; the engine need not know a
// transform exists.
type Proposal interface {
	// Sample draws n physical-space candidate points.
	Sample(n int) ([]params.Point, error)

	// LogProb evaluates the proposal density at a physical-space point,
	// corrected back to physical-space units.
	LogProb(p params.Point) (float64, error)

	// Update refits the proposal from the current live-point population
	// (physical space).
	Update(live []params.Point) error
}

// Variant selects the proposal strategy at construction time.
type Variant int

const (
	// VariantPlain: direct wrapping of the base proposal.
	VariantPlain Variant = iota

	// VariantAugmented: auxiliary latent dimensions, marginalised by
	// construction.
	VariantAugmented

	// VariantClustering: one base proposal per live-point cluster,
	// mixture-combined.
	VariantClustering

	// VariantMCMC: bounded Metropolis–Hastings refinement of candidates.
	VariantMCMC
)

// String returns the canonical variant name.
func (v Variant) String() string {
	switch v {
	case VariantPlain:
		return "plain"
	case VariantAugmented:
		return "augmented"
	case VariantClustering:
		return "clustering"
	case VariantMCMC:
		return "mcmc"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Config is the construction-time configuration surface.
//
// Fields beyond Descriptors and Base have working defaults from
// DefaultConfig and are usually set through functional options.
type Config struct {
	// Descriptors declares the physical parameter set.
	Descriptors []params.Descriptor

	// Overrides replaces the default reparameterisation for the named
	// parameters. Replacement is total, never a merge.
	Overrides map[string]reparam.Reparameterisation

	// Base is the externally supplied proposal. Not owned: its lifetime is
	// managed by the host. Required for every variant except clustering.
	Base Base

	// BaseFactory builds one Base per cluster. Required for the clustering
	// variant, ignored otherwise.
	BaseFactory func() Base

	// Variant selects the proposal strategy.
	Variant Variant

	// RetryLimit bounds the resampling rounds in Sample.
	RetryLimit int

	// Seed drives every RNG stream in the proposal. 0 selects a fixed
	// default, so runs are reproducible either way.
	Seed uint64

	// AugmentedDims is the number of latent dimensions (augmented variant).
	AugmentedDims int

	// MarginalisationDraws is the Monte-Carlo sample count used to
	// marginalise the latent dimensions in LogProb (augmented variant).
	MarginalisationDraws int

	// Clusters fixes the cluster count (clustering variant); 0 selects an
	// automatic count from the population size.
	Clusters int

	// MCMCSteps bounds the Metropolis–Hastings chain length (mcmc variant).
	MCMCSteps int

	// StepSize is the standard deviation of the Gaussian random-walk
	// kernel (mcmc variant).
	StepSize float64

	// Constraint is the likelihood-constraint predicate (mcmc variant).
	// May be nil, in which case only the base density gates acceptance.
	Constraint Constraint
}

// Option is a functional option for Config.
type Option func(*Config)

// WithVariant selects the proposal strategy.
func WithVariant(v Variant) Option {
	return func(c *Config) { c.Variant = v }
}

// WithOverrides replaces the default reparameterisations for the named
// parameters.
func WithOverrides(overrides map[string]reparam.Reparameterisation) Option {
	return func(c *Config) { c.Overrides = overrides }
}

// WithRetryLimit bounds the resampling rounds in Sample.
// Must be positive; invalid values panic per option-constructor convention.
func WithRetryLimit(n int) Option {
	if n <= 0 {
		panic("proposal: retry limit must be positive")
	}
	return func(c *Config) { c.RetryLimit = n }
}

// WithSeed fixes the RNG seed for the whole proposal.
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithAugmentedDims sets the latent dimension count for the augmented
// variant. Must be positive.
func WithAugmentedDims(n int) Option {
	if n <= 0 {
		panic("proposal: augmented dimension count must be positive")
	}
	return func(c *Config) { c.AugmentedDims = n }
}

// WithMarginalisationDraws sets the Monte-Carlo draw count used to
// marginalise latent dimensions. Must be positive.
func WithMarginalisationDraws(n int) Option {
	if n <= 0 {
		panic("proposal: marginalisation draw count must be positive")
	}
	return func(c *Config) { c.MarginalisationDraws = n }
}

// WithClusters fixes the cluster count for the clustering variant.
// Zero selects the automatic count.
func WithClusters(k int) Option {
	if k < 0 {
		panic("proposal: cluster count must be non-negative")
	}
	return func(c *Config) { c.Clusters = k }
}

// WithBaseFactory supplies the per-cluster base constructor for the
// clustering variant.
func WithBaseFactory(f func() Base) Option {
	return func(c *Config) { c.BaseFactory = f }
}

// WithMCMCSteps bounds the refinement chain length. Must be positive.
func WithMCMCSteps(n int) Option {
	if n <= 0 {
		panic("proposal: MCMC step count must be positive")
	}
	return func(c *Config) { c.MCMCSteps = n }
}

// WithStepSize sets the random-walk kernel scale. Must be positive.
func WithStepSize(s float64) Option {
	if s <= 0 {
		panic("proposal: step size must be positive")
	}
	return func(c *Config) { c.StepSize = s }
}

// WithConstraint supplies the likelihood-constraint predicate for MCMC
// refinement.
func WithConstraint(fn Constraint) Option {
	return func(c *Config) { c.Constraint = fn }
}

// DefaultConfig returns a Config with sensible defaults for the plain
// variant wrapping base over descriptors.
//
// Defaults:
//   - Variant:              VariantPlain
//   - RetryLimit:           10
//   - AugmentedDims:        1
//   - MarginalisationDraws: 8
//   - Clusters:             0 (automatic)
//   - MCMCSteps:            20
//   - StepSize:             0.1
func DefaultConfig(descriptors []params.Descriptor, base Base) Config {
	return Config{
		Descriptors:          descriptors,
		Base:                 base,
		Variant:              VariantPlain,
		RetryLimit:           10,
		AugmentedDims:        1,
		MarginalisationDraws: 8,
		MCMCSteps:            20,
		StepSize:             0.1,
	}
}

// New constructs the proposal selected by cfg.Variant after applying the
// functional options.
//
// Errors: ErrConfiguration when the configuration is invalid;
// reparam.ErrConfiguration passes through when the implied composite is.
func New(cfg Config, opts ...Option) (Proposal, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	switch cfg.Variant {
	case VariantPlain:
		return newWrapper(cfg)
	case VariantAugmented:
		return newAugmented(cfg)
	case VariantClustering:
		return newClustering(cfg)
	case VariantMCMC:
		return newMCMC(cfg)
	default:
		return nil, configErrf("unknown variant %d", int(cfg.Variant))
	}
}
