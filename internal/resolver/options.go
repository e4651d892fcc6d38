package resolver

import (
	"go.uber.org/zap"

	"github.com/eugenenazirov/layercfg/internal/tree"
)

// Renderer renders template text against the current merged tree.
type Renderer interface {
	Render(text string, ctx tree.Mapping) (string, error)
	// Markers returns substrings whose presence means text still needs rendering.
	Markers() []string
}

// Parser splits part text into its documents.
type Parser func(text string) ([]tree.Mapping, error)

// Option configures a Resolver.
type Option func(*Resolver)

// WithRenderer replaces the default strict text/template engine.
func WithRenderer(renderer Renderer) Option {
	return func(r *Resolver) {
		r.renderer = renderer
	}
}

// WithParser replaces the default YAML parser.
func WithParser(parse Parser) Option {
	return func(r *Resolver) {
		r.parse = parse
	}
}

// WithEnvironment injects the environment used for prefix overrides and by
// the default renderer's env filters. Without it the process environment is
// snapshotted when Resolve starts.
func WithEnvironment(env map[string]string) Option {
	return func(r *Resolver) {
		r.env = env
	}
}

// WithEnvDelimiter sets the separator that nests environment variable names.
func WithEnvDelimiter(delimiter string) Option {
	return func(r *Resolver) {
		r.envDelimiter = delimiter
	}
}

// WithMaxPasses bounds the number of merge passes. Zero or a negative value
// leaves the loop unbounded.
func WithMaxPasses(n int) Option {
	return func(r *Resolver) {
		r.maxPasses = n
	}
}

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}
