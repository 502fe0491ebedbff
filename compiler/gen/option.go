package gen

import (
	"errors"
	"runtime"

	"github.com/syssam/nodetypeobjects/internal/logger"
)

// Config holds the pipeline configuration.
type Config struct {
	// Dialect is the target language. Required.
	Dialect Dialect
	// Locator resolves package selectors. Required.
	Locator PackageLocator
	// Source provides the node type schemas. Required.
	Source SchemaSource
	// Writer performs all file system access. Required.
	Writer FileWriter
	// Workers bounds the number of entities generated concurrently.
	Workers int
	// StrictSuperTypes turns undeclared supertypes into schema errors
	// instead of dropping them.
	StrictSuperTypes bool
	// Logger receives pipeline events.
	Logger logger.Logger
}

// Option configures code generation.
type Option func(*Config) error

// WithDialect sets the target language.
func WithDialect(d Dialect) Option {
	return func(c *Config) error {
		if d == nil {
			return NewConfigError("Dialect", nil, "dialect cannot be nil")
		}
		c.Dialect = d
		return nil
	}
}

// WithLocator sets the package locator.
func WithLocator(l PackageLocator) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Locator", nil, "locator cannot be nil")
		}
		c.Locator = l
		return nil
	}
}

// WithSource sets the schema source.
func WithSource(s SchemaSource) Option {
	return func(c *Config) error {
		if s == nil {
			return NewConfigError("Source", nil, "schema source cannot be nil")
		}
		c.Source = s
		return nil
	}
}

// WithWriter sets the file writer.
func WithWriter(w FileWriter) Option {
	return func(c *Config) error {
		if w == nil {
			return NewConfigError("Writer", nil, "writer cannot be nil")
		}
		c.Writer = w
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithStrictSuperTypes rejects supertypes that are not in scope.
func WithStrictSuperTypes(strict bool) Option {
	return func(c *Config) error {
		c.StrictSuperTypes = strict
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.Dialect == nil:
		return NewConfigError("Dialect", nil, "missing dialect in config")
	case c.Locator == nil:
		return NewConfigError("Locator", nil, "missing package locator in config")
	case c.Source == nil:
		return NewConfigError("Source", nil, "missing schema source in config")
	case c.Writer == nil:
		return NewConfigError("Writer", nil, "missing writer in config")
	}
	return nil
}

// NewConfig creates a new Config with the given options. Every invalid
// option is reported.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Workers: runtime.GOMAXPROCS(0),
		Logger:  logger.NewNopLogger(),
	}
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
