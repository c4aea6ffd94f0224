package linear

import (
	"strings"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"github.com/YuminosukeSato/polyreg/pkg/log"
)

// UpdateRule selects how one gradient descent step applies its updates.
type UpdateRule int

const (
	// UpdateSimultaneous computes every gradient from the parameters as they
	// were at the start of the step, then applies all updates together.
	UpdateSimultaneous UpdateRule = iota

	// UpdateSequential updates coefficient orders one at a time, lowest first.
	// The gradient for order k sees orders below k already updated in the same
	// step, and the intercept gradient sees every updated coefficient.
	UpdateSequential
)

func (r UpdateRule) String() string {
	switch r {
	case UpdateSimultaneous:
		return "simultaneous"
	case UpdateSequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// ParseUpdateRule converts "simultaneous" or "sequential" to an UpdateRule.
// An empty string selects the default.
func ParseUpdateRule(s string) (UpdateRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simultaneous":
		return UpdateSimultaneous, nil
	case "sequential":
		return UpdateSequential, nil
	default:
		return 0, errors.NewValidationError("update_rule", "must be \"simultaneous\" or \"sequential\"", s)
	}
}

// Option is a function that configures PolynomialRegression
type Option func(*PolynomialRegression)

// WithUpdateRule sets the gradient update rule
func WithUpdateRule(rule UpdateRule) Option {
	return func(p *PolynomialRegression) {
		p.updateRule = rule
	}
}

// WithProgressInterval sets how many accepted iterations pass between
// progress callbacks
func WithProgressInterval(n int) Option {
	return func(p *PolynomialRegression) {
		p.progressInterval = n
	}
}

// WithCallbacks appends training callbacks
func WithCallbacks(callbacks ...Callback) Option {
	return func(p *PolynomialRegression) {
		p.callbacks = append(p.callbacks, callbacks...)
	}
}

// WithLogger replaces the package logger
func WithLogger(logger log.Logger) Option {
	return func(p *PolynomialRegression) {
		p.logger = logger
	}
}
