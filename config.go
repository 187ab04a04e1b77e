package traverse

import (
	"errors"
	"log/slog"
	"os"

	"github.com/podhmo/go-traverse/cache"
	"github.com/podhmo/go-traverse/member"
	"github.com/podhmo/go-traverse/resolver"
)

// Config holds the components an Accessor is built from.
// Components left nil are created with defaults by New.
type Config struct {
	// Logger is shared by the accessor and the components it creates.
	Logger *slog.Logger

	// Resolver finds members and touches values through them.
	// Defaults to a reflection-based resolver.
	Resolver member.Resolver

	// Cache memoizes lookups made through Resolver. Sharing a cache between
	// accessors shares its entries; it must wrap the same resolver.
	Cache *cache.AccessCache

	// Registry supplies static members and nested types to the default
	// resolver. It cannot be combined with a custom Resolver.
	Registry *resolver.Registry
}

// Option is a function that configures an Accessor.
type Option func(*Config) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithResolver replaces the default reflection-based resolver.
func WithResolver(r member.Resolver) Option {
	return func(c *Config) error {
		if r == nil {
			return errors.New("resolver must not be nil")
		}
		c.Resolver = r
		return nil
	}
}

// WithCache uses an existing lookup cache, typically to share it between accessors.
func WithCache(ac *cache.AccessCache) Option {
	return func(c *Config) error {
		if ac == nil {
			return errors.New("cache must not be nil")
		}
		c.Cache = ac
		return nil
	}
}

// WithRegistry sets the registry used by the default resolver.
func WithRegistry(registry *resolver.Registry) Option {
	return func(c *Config) error {
		if registry == nil {
			return errors.New("registry must not be nil")
		}
		c.Registry = registry
		return nil
	}
}

func (c *Config) complete() error {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if c.Cache != nil {
		if c.Resolver != nil && c.Resolver != c.Cache.Resolver() {
			return errors.New("cache wraps a different resolver than the one configured")
		}
		c.Resolver = c.Cache.Resolver()
	}
	if c.Registry != nil && c.Resolver != nil {
		return errors.New("registry cannot be combined with a custom resolver; register on the resolver's own registry")
	}
	if c.Resolver == nil {
		opts := []resolver.Option{resolver.WithLogger(c.Logger)}
		if c.Registry != nil {
			opts = append(opts, resolver.WithRegistry(c.Registry))
		}
		c.Resolver = resolver.New(opts...)
	}
	if c.Cache == nil {
		c.Cache = cache.New(c.Resolver, cache.WithLogger(c.Logger))
	}
	return nil
}
