package reparam

import (
	"errors"
	"fmt"
)

// ErrDomain is returned when a transform is invoked outside its valid
// domain, or when a Jacobian would be non-finite. Domain errors are
// recoverable at the call site by discarding the offending candidate.
var ErrDomain = errors.New("reparam: value outside transform domain")

// ErrConfiguration is returned for malformed or incomplete
// reparameterisation coverage, detected at construction time.
// Configuration errors are fatal and never retried.
var ErrConfiguration = errors.New("reparam: invalid reparameterisation configuration")

// DomainError carries the parameter name and offending value of a domain
// violation. It unwraps to ErrDomain.
type DomainError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("reparam: parameter %q value %g: %s", e.Param, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// domainErrf builds a DomainError with a formatted reason.
func domainErrf(param string, value float64, format string, args ...any) error {
	return &DomainError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// ConfigError carries the detail of a construction-time failure.
// It unwraps to ErrConfiguration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "reparam: " + e.Reason }

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// configErrf builds a ConfigError with a formatted reason.
func configErrf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
