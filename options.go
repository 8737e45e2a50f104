package glyphcache

import "log/slog"

// Option configures a Cache during creation.
//
// Example:
//
//	c, err := glyphcache.New[raster.Descriptor, *raster.Glyph](8<<20,
//	    glyphcache.WithGroupCapacity(32),
//	    glyphcache.WithLogger(logger),
//	)
type Option func(*cacheOptions)

// cacheOptions holds optional configuration for Cache creation.
type cacheOptions struct {
	groupCapacity int
	logger        *slog.Logger
}

// defaultOptions returns the default cache options.
func defaultOptions() cacheOptions {
	return cacheOptions{
		groupCapacity: 16,
		logger:        nil, // falls back to the package logger
	}
}

// WithGroupCapacity presizes the group registry for the expected number
// of distinct font descriptors. It is a hint, not a limit; values below
// one are ignored.
func WithGroupCapacity(n int) Option {
	return func(o *cacheOptions) {
		if n > 0 {
			o.groupCapacity = n
		}
	}
}

// WithLogger sets a logger for one cache instead of the package logger
// configured with [SetLogger]. A nil logger keeps the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *cacheOptions) {
		o.logger = l
	}
}
