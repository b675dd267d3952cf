package hive

import (
	logger "github.com/xraph/go-utils/log"
	"github.com/xraph/go-utils/metrics"
)

// Option configures an Injector.
type Option func(*config)

// config holds injector configuration. Unset fields are inherited from the
// parent injector.
type config struct {
	parent     *Injector
	name       string
	logger     logger.Logger
	metrics    metrics.Metrics
	registry   *TokenRegistry
	metadata   MetadataSource
	middleware []Middleware
	strict     *bool
}

// WithParent makes the injector a child of parent.
func WithParent(parent *Injector) Option {
	return func(c *config) {
		c.parent = parent
	}
}

// WithName sets the name used in logs and errors.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetrics enables instantiation and disposal counters.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithRegistry sets the token registry. Only meaningful on a root injector;
// children always share their parent's registry.
func WithRegistry(r *TokenRegistry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithMetadata sets the source of class constructor dependencies.
func WithMetadata(m MetadataSource) Option {
	return func(c *config) {
		c.metadata = m
	}
}

// WithMiddleware adds resolve middleware. Children run their parent's
// middleware first.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithStrictDuplicates rejects a second registration of a non-multi key at
// registration time instead of at first instantiation.
func WithStrictDuplicates(strict bool) Option {
	return func(c *config) {
		c.strict = &strict
	}
}

func buildConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	return cfg
}

// inherit fills unset fields from the parent injector.
func (c *config) inherit() {
	p := c.parent
	if p == nil {
		return
	}

	// Keys are only meaningful within the registry that interned them
	c.registry = p.registry

	if c.logger == nil {
		c.logger = p.logger
	}

	if c.metrics == nil {
		c.metrics = p.metrics
	}

	if c.metadata == nil {
		c.metadata = p.metadata
	}

	if c.strict == nil {
		strict := p.strict
		c.strict = &strict
	}

	c.middleware = append(p.middleware.list(), c.middleware...)
}
