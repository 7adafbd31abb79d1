package cloudpdf

import (
	"log/slog"
	"maps"
	"time"
)

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// converterConfig holds the values set through options.
type converterConfig struct {
	timeout   time.Duration
	style     string
	assetPath string
	logger    *slog.Logger
	page      *PageSettings
	verify    bool
	params    map[string]string
	paths     *BuildPaths
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout sets the page load timeout of the renderer.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cloudpdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithStyle selects the stylesheet by name (default "cloud").
func WithStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.style = name
	}
}

// WithAssetPath adds a directory searched for styles and templates before the
// embedded assets.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// WithConfigLoader replaces how the font configuration is obtained before
// rendering.
func WithConfigLoader(l ConfigLoader) Option {
	return func(c *Converter) {
		c.configLoader = l
	}
}

// WithPage sets the PDF page settings. nil keeps the defaults.
func WithPage(p *PageSettings) Option {
	return func(c *Converter) {
		c.cfg.page = p
	}
}

// WithVerify enables reading back every written PDF to count its pages.
func WithVerify(verify bool) Option {
	return func(c *Converter) {
		c.cfg.verify = verify
	}
}

// WithParams adds transform parameters. The graphics and cover parameters are
// always set from the build paths and cannot be overridden.
func WithParams(params map[string]string) Option {
	return func(c *Converter) {
		if c.cfg.params == nil {
			c.cfg.params = make(map[string]string, len(params))
		}
		maps.Copy(c.cfg.params, params)
	}
}

// WithPreparedPaths marks resources as already extracted for paths, so
// PreProcess does nothing. Used by pools sharing one extraction.
func WithPreparedPaths(paths BuildPaths) Option {
	return func(c *Converter) {
		c.cfg.paths = &paths
	}
}
