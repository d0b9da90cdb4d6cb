package parser

import (
	"time"

	"github.com/okian/fwtrank/pkg/logger"
)

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithLogger sets the logger used for dropped-record warnings.
func WithLogger(l logger.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock that supplies the fallback series year.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}
