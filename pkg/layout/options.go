package layout

import (
	"time"

	"github.com/matzehuels/cellsolve/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDomainMin and DefaultDomainMax bound every coordinate variable.
	DefaultDomainMin int64 = 0
	DefaultDomainMax int64 = 10000

	// DefaultMinFootprint is the minimum width and height given to leaves
	// no relation mentions.
	DefaultMinFootprint int64 = 10

	// DefaultTimeBudget bounds a single solve.
	DefaultTimeBudget = 10 * time.Second
)

// Options configures an Engine.
type Options struct {
	// DefaultFootprint keeps unconstrained leaves visible: x1,y1 >= 0 and
	// a size of at least MinFootprint.
	DefaultFootprint bool

	MinFootprint int64
	DomainMin    int64
	DomainMax    int64
	TimeBudget   time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		DefaultFootprint: true,
		MinFootprint:     DefaultMinFootprint,
		DomainMin:        DefaultDomainMin,
		DomainMax:        DefaultDomainMax,
		TimeBudget:       DefaultTimeBudget,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// inconsistent values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MinFootprint == 0 {
		o.MinFootprint = DefaultMinFootprint
	}
	if o.DomainMin == 0 && o.DomainMax == 0 {
		o.DomainMin, o.DomainMax = DefaultDomainMin, DefaultDomainMax
	}
	if o.TimeBudget == 0 {
		o.TimeBudget = DefaultTimeBudget
	}

	if o.MinFootprint < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "min footprint must be positive, got %d", o.MinFootprint)
	}
	if o.DomainMax-o.DomainMin < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "coordinate domain [%d, %d] is empty", o.DomainMin, o.DomainMax)
	}
	if o.TimeBudget < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "time budget must not be negative")
	}
	return nil
}
