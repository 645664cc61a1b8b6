package skematree

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Option configures a template at Compile or Extend time. Sub-templates
// compiled from the same declaration inherit the configuration.
type Option func(*config)

type config struct {
	logger  zerolog.Logger
	metrics *Metrics
	name    string
}

func newConfig(base *config, opts []Option) *config {
	c := &config{
		logger: log.Logger.With().Str("component", "skematree").Logger(),
		name:   "anonymous",
	}
	if base != nil {
		cp := *base
		c = &cp
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics records diagnostics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithName names the template in log output and JSON Schema titles.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}
