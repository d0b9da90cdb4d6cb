package stats

import "github.com/okian/fwtrank/internal/domain/exclusion"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithExclusion sets the filter deciding which series are left out of
// series-level statistics.
func WithExclusion(f exclusion.Filter) Option {
	return func(a *Aggregator) {
		a.filter = f
	}
}
