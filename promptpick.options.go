package promptpick

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	format         Format
	maxDepth       int
	lineSeparator  string
	directiveKinds []string
	resultCache    *ResultCache
	logger         *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		format:        DefaultFormat,
		maxDepth:      DefaultMaxDepth,
		lineSeparator: DefaultLineSeparator,
		logger:        nil,
	}
}

// WithFormat sets the document format used by Compose and Parse.
// Default: FormatTOML
func WithFormat(format Format) Option {
	return func(c *engineConfig) {
		if format != "" {
			c.format = format
		}
	}
}

// WithMaxDepth caps how many levels a ?? selection descends.
// Use 0 for unlimited depth.
// Default: 100
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithLineSeparator sets the string placed between the texts of non-empty lines.
// Default: ","
func WithLineSeparator(sep string) Option {
	return func(c *engineConfig) {
		c.lineSeparator = sep
	}
}

// WithDirectiveKinds restricts extraction to the given tag kinds, e.g. "lora".
// Tags of other kinds stay in the composed text.
// Default: every kind is extracted
func WithDirectiveKinds(kinds ...string) Option {
	return func(c *engineConfig) {
		c.directiveKinds = append([]string(nil), kinds...)
	}
}

// WithResultCache enables caching of compositions.
// Default: nil (no caching)
func WithResultCache(cache *ResultCache) Option {
	return func(c *engineConfig) {
		c.resultCache = cache
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
