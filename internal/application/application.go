package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eugenenazirov/layercfg/internal/config"
	"github.com/eugenenazirov/layercfg/internal/document"
	"github.com/eugenenazirov/layercfg/internal/envtree"
	"github.com/eugenenazirov/layercfg/internal/resolver"
	"github.com/eugenenazirov/layercfg/internal/source"
	"github.com/eugenenazirov/layercfg/internal/templating"
	"github.com/eugenenazirov/layercfg/internal/tree"
)

// App wires part loading, resolution and output for one configuration run.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	source source.Source
	env    map[string]string
}

// Option configures an App.
type Option func(*App)

// WithSource replaces the file loader parts are read with.
func WithSource(src source.Source) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithEnvironment fixes the environment seen by templates and overrides.
// Without it the process environment is snapshotted on every run.
func WithEnvironment(env map[string]string) Option {
	return func(a *App) {
		a.env = env
	}
}

// New initializes the application from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if len(cfg.Parts) == 0 {
		return nil, config.ErrNoParts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	app := &App{
		cfg:    cfg,
		logger: logger,
		source: source.NewFileLoader(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

// Resolve loads every configured part and resolves them into one tree.
func (a *App) Resolve() (tree.Mapping, error) {
	logger := a.logger.With(zap.String("run_id", uuid.NewString()))

	env := a.env
	if env == nil {
		env = envtree.Environ()
	}

	engine := templating.New(
		templating.WithStrict(!a.cfg.Lenient),
		templating.WithEnvironment(env),
	)
	res := resolver.New(
		resolver.WithRenderer(engine),
		resolver.WithEnvironment(env),
		resolver.WithEnvDelimiter(a.cfg.EnvDelimiter),
		resolver.WithMaxPasses(a.cfg.MaxPasses),
		resolver.WithLogger(logger),
	)

	for _, part := range a.cfg.Parts {
		text, err := a.source.Load(part.Path)
		if err != nil {
			return nil, fmt.Errorf("load part: %w", err)
		}
		logger.Debug("part loaded",
			zap.String("path", part.Path),
			zap.Stringer("policy", part.Policy),
		)
		res.AddPart(text, part.Policy)
	}

	start := time.Now()
	merged, err := res.Resolve(a.cfg.EnvPrefix)
	if err != nil {
		logger.Error("resolution failed", zap.Int("passes", res.Passes()), zap.Error(err))
		return nil, fmt.Errorf("resolve configuration: %w", err)
	}

	logger.Info("configuration resolved",
		zap.Int("parts", len(a.cfg.Parts)),
		zap.Int("passes", res.Passes()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return merged, nil
}

// Run resolves the configuration and writes it in the configured format,
// to the output file when one is set and to w otherwise. Nothing is written
// when resolution fails.
func (a *App) Run(w io.Writer) error {
	merged, err := a.Resolve()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := document.Encode(&buf, merged, a.cfg.Format); err != nil {
		return fmt.Errorf("encode %s: %w", a.cfg.Format, err)
	}

	if a.cfg.Output != "" {
		if err := os.WriteFile(a.cfg.Output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		a.logger.Debug("output written", zap.String("path", a.cfg.Output))
		return nil
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Watch runs once, then polls the loaded parts at the configured interval
// and runs again whenever one of them changes. Failures after the first run
// are logged and watching continues. Watch returns nil when ctx is done.
func (a *App) Watch(ctx context.Context, w io.Writer) error {
	if err := a.Run(w); err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Every(a.cfg.WatchInterval), 1)
	// drain the initial token so the first check waits one interval
	limiter.Allow()
	a.logger.Info("watching configuration parts", zap.Duration("interval", a.cfg.WatchInterval))

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				a.logger.Info("watch stopped")
				return nil
			}
			return fmt.Errorf("wait for next poll: %w", err)
		}

		changed, err := a.source.Changed()
		if err != nil {
			a.logger.Warn("failed to check configuration parts", zap.Error(err))
			continue
		}
		if !changed {
			continue
		}

		a.logger.Info("configuration part changed")
		if err := a.Run(w); err != nil {
			a.logger.Error("re-resolution failed", zap.Error(err))
		}
	}
}
