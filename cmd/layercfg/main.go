package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/layercfg/internal/application"
	"github.com/eugenenazirov/layercfg/internal/config"
	"github.com/eugenenazirov/layercfg/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	overrides, err := parseFlags(os.Args[1:])
	kingpin.FatalIfError(err, "parse flags")

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "layercfg: failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "layercfg: failed to initialize logger: %v\n", err)
		os.Exit(2)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if !cfg.Watch {
		if err := app.Run(os.Stdout); err != nil {
			logger.Fatal("failed to resolve configuration", zap.Error(err))
		}
		return
	}

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	if err := app.Watch(ctx, os.Stdout); err != nil {
		logger.Fatal("watch failed", zap.Error(err))
	}
}

// parseFlags turns command-line arguments into configuration overrides.
// Flags the user did not pass stay nil so lower layers keep their values.
func parseFlags(args []string) (*config.CLIOverrides, error) {
	app := kingpin.New("layercfg", "Resolve layered, templated configuration parts into one document")

	var lenientSet, watchSet, delimiterSet, intervalSet bool

	configFile := app.Flag("config", "Path to YAML manifest listing parts and settings").Short('c').String()
	parts := app.Flag("part", "Configuration part as FILE or POLICY:FILE (policy: any, existent, new); repeatable").Short('p').Strings()
	envPrefix := app.Flag("env-prefix", "Prefix of environment variables that override existing keys").String()
	envDelimiter := app.Flag("env-delimiter", "Separator nesting environment variable names").IsSetByUser(&delimiterSet).String()
	format := app.Flag("format", "Output format: yaml, json or toml").Short('f').String()
	output := app.Flag("output", "Write the result to this file instead of stdout").Short('o').String()
	maxPasses := app.Flag("max-passes", "Maximum merge passes (0 for unbounded)").Default("-1").Int()
	logLevel := app.Flag("log-level", "Log level: debug, info, warn or error").String()
	watchInterval := app.Flag("watch-interval", "Polling interval in watch mode").IsSetByUser(&intervalSet).Duration()
	lenient := app.Flag("lenient", "Render undefined references as <no value> instead of failing").IsSetByUser(&lenientSet).Bool()
	watch := app.Flag("watch", "Re-resolve whenever a part changes").IsSetByUser(&watchSet).Bool()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		Parts:      *parts,
	}

	if *envPrefix != "" {
		overrides.EnvPrefix = envPrefix
	}
	if delimiterSet {
		overrides.EnvDelimiter = envDelimiter
	}
	if *format != "" {
		overrides.Format = format
	}
	if *output != "" {
		overrides.Output = output
	}
	if *maxPasses >= 0 {
		overrides.MaxPasses = maxPasses
	}
	if lenientSet {
		overrides.Lenient = lenient
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	if watchSet {
		overrides.Watch = watch
	}
	if intervalSet {
		overrides.WatchInterval = watchInterval
	}

	return overrides, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-quit:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
