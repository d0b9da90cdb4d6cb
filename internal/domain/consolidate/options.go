package consolidate

import (
	"github.com/okian/fwtrank/internal/domain/parser"
	"github.com/okian/fwtrank/internal/domain/stats"
	"github.com/okian/fwtrank/pkg/logger"
)

// Option applies a configuration option to the Consolidator.
type Option func(*Consolidator)

// WithParser sets the parser used for ranking entries.
func WithParser(p *parser.Parser) Option {
	return func(c *Consolidator) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithAggregator sets the statistics aggregator.
func WithAggregator(a *stats.Aggregator) Option {
	return func(c *Consolidator) {
		if a != nil {
			c.aggregator = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Consolidator) {
		if l != nil {
			c.logger = l
		}
	}
}
