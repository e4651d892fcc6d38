package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/layercfg/internal/document"
	"github.com/eugenenazirov/layercfg/internal/envtree"
	"github.com/eugenenazirov/layercfg/internal/tree"
)

const (
	defaultFormat        = document.FormatYAML
	defaultLogLevel      = "info"
	defaultWatchInterval = 2 * time.Second
)

var (
	// ErrNoParts is returned when no configuration part was given.
	ErrNoParts = errors.New("at least one configuration part is required")
	// ErrInvalidFormat is returned for unsupported output formats.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidMaxPasses is returned for a negative pass limit.
	ErrInvalidMaxPasses = errors.New("max passes must be >= 0")
	// ErrInvalidInterval is returned when watch mode has no positive interval.
	ErrInvalidInterval = errors.New("watch interval must be positive")
	// ErrInvalidPart is returned for malformed --part values.
	ErrInvalidPart = errors.New("invalid part")
)

// PartSource names a configuration part file and the policy it is merged with.
type PartSource struct {
	Path   string         `yaml:"path"`
	Policy tree.KeyPolicy `yaml:"policy"`
}

// Config aggregates the settings of a resolution run.
// Precedence: CLI flags > Environment variables > YAML manifest > Defaults
type Config struct {
	Parts         []PartSource
	EnvPrefix     string
	EnvDelimiter  string
	Format        document.Format
	Output        string
	MaxPasses     int
	Lenient       bool
	LogLevel      string
	Watch         bool
	WatchInterval time.Duration
}

// yamlConfig represents the YAML manifest structure.
type yamlConfig struct {
	Parts         []PartSource `yaml:"parts"`
	EnvPrefix     string       `yaml:"env_prefix"`
	EnvDelimiter  string       `yaml:"env_delimiter"`
	Format        string       `yaml:"format"`
	Output        string       `yaml:"output"`
	MaxPasses     int          `yaml:"max_passes"`
	Lenient       bool         `yaml:"lenient"`
	LogLevel      string       `yaml:"log_level"`
	Watch         bool         `yaml:"watch"`
	WatchInterval string       `yaml:"watch_interval"`
}

// envConfig represents settings taken from LAYERCFG_* variables. Pointer
// fields tell an explicit zero ("0", "false") from an unset variable; an
// empty variable counts as unset.
type envConfig struct {
	EnvPrefix     string        `env:"LAYERCFG_ENV_PREFIX"`
	EnvDelimiter  string        `env:"LAYERCFG_ENV_DELIMITER"`
	Format        string        `env:"LAYERCFG_FORMAT"`
	Output        string        `env:"LAYERCFG_OUTPUT"`
	MaxPasses     *int          `env:"LAYERCFG_MAX_PASSES"`
	Lenient       *bool         `env:"LAYERCFG_LENIENT"`
	LogLevel      string        `env:"LAYERCFG_LOG_LEVEL"`
	Watch         *bool         `env:"LAYERCFG_WATCH"`
	WatchInterval time.Duration `env:"LAYERCFG_WATCH_INTERVAL"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile    string
	Parts         []string
	EnvPrefix     *string
	EnvDelimiter  *string
	Format        *string
	Output        *string
	MaxPasses     *int
	Lenient       *bool
	LogLevel      *string
	Watch         *bool
	WatchInterval *time.Duration
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML manifest > Defaults
//
// Parts accumulate across layers: manifest parts come first, followed by
// parts given on the command line.
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		fileCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML manifest: %w", err)
		}
		if err := mergeLayer(&cfg, fileCfg); err != nil {
			return Config{}, err
		}
	}

	envCfg, envExplicit, err := loadFromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := mergeLayer(&cfg, envCfg); err != nil {
		return Config{}, err
	}
	applyExplicitZeros(&cfg, envExplicit)

	if overrides != nil {
		cliCfg, err := fromCLIOverrides(overrides)
		if err != nil {
			return Config{}, err
		}
		if err := mergeLayer(&cfg, cliCfg); err != nil {
			return Config{}, err
		}
		applyExplicitZeros(&cfg, overrides)
	}

	format, err := document.ParseFormat(string(cfg.Format))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	cfg.Format = format

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		EnvDelimiter:  envtree.DefaultDelimiter,
		Format:        defaultFormat,
		LogLevel:      defaultLogLevel,
		WatchInterval: defaultWatchInterval,
	}
}

func mergeLayer(dst *Config, layer Config) error {
	if err := mergo.Merge(dst, layer, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return fmt.Errorf("merge configuration layer: %w", err)
	}
	return nil
}

// loadFromFile loads a YAML manifest. Relative part paths are resolved
// against the manifest's directory.
func loadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return Config{}, fmt.Errorf("parse YAML: %w", err)
	}

	cfg := Config{
		EnvPrefix:    yamlCfg.EnvPrefix,
		EnvDelimiter: yamlCfg.EnvDelimiter,
		Format:       document.Format(strings.ToLower(yamlCfg.Format)),
		Output:       yamlCfg.Output,
		MaxPasses:    yamlCfg.MaxPasses,
		Lenient:      yamlCfg.Lenient,
		LogLevel:     yamlCfg.LogLevel,
		Watch:        yamlCfg.Watch,
	}

	if yamlCfg.WatchInterval != "" {
		d, err := time.ParseDuration(yamlCfg.WatchInterval)
		if err != nil {
			return Config{}, fmt.Errorf("parse watch_interval: %w", err)
		}
		cfg.WatchInterval = d
	}

	dir := filepath.Dir(path)
	for _, part := range yamlCfg.Parts {
		if part.Path == "" {
			return Config{}, fmt.Errorf("%w: manifest part without path", ErrInvalidPart)
		}
		if !filepath.IsAbs(part.Path) {
			part.Path = filepath.Join(dir, part.Path)
		}
		cfg.Parts = append(cfg.Parts, part)
	}

	return cfg, nil
}

// loadFromEnv reads LAYERCFG_* environment variables. The returned
// overrides carry the variables that were set, including zero values.
func loadFromEnv() (Config, *CLIOverrides, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg := Config{
		EnvPrefix:     envCfg.EnvPrefix,
		EnvDelimiter:  envCfg.EnvDelimiter,
		Format:        document.Format(strings.ToLower(envCfg.Format)),
		Output:        envCfg.Output,
		LogLevel:      envCfg.LogLevel,
		WatchInterval: envCfg.WatchInterval,
	}
	if envCfg.MaxPasses != nil {
		cfg.MaxPasses = *envCfg.MaxPasses
	}
	if envCfg.Lenient != nil {
		cfg.Lenient = *envCfg.Lenient
	}
	if envCfg.Watch != nil {
		cfg.Watch = *envCfg.Watch
	}

	explicit := &CLIOverrides{
		MaxPasses: envCfg.MaxPasses,
		Lenient:   envCfg.Lenient,
		Watch:     envCfg.Watch,
	}
	return cfg, explicit, nil
}

// fromCLIOverrides converts command-line flags into a configuration layer.
func fromCLIOverrides(overrides *CLIOverrides) (Config, error) {
	var cfg Config

	for _, raw := range overrides.Parts {
		part, err := ParsePart(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Parts = append(cfg.Parts, part)
	}

	if overrides.EnvPrefix != nil {
		cfg.EnvPrefix = *overrides.EnvPrefix
	}
	if overrides.EnvDelimiter != nil {
		cfg.EnvDelimiter = *overrides.EnvDelimiter
	}
	if overrides.Format != nil {
		cfg.Format = document.Format(strings.ToLower(*overrides.Format))
	}
	if overrides.Output != nil {
		cfg.Output = *overrides.Output
	}
	if overrides.MaxPasses != nil && *overrides.MaxPasses >= 0 {
		cfg.MaxPasses = *overrides.MaxPasses
	}
	if overrides.Lenient != nil {
		cfg.Lenient = *overrides.Lenient
	}
	if overrides.LogLevel != nil {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.Watch != nil {
		cfg.Watch = *overrides.Watch
	}
	if overrides.WatchInterval != nil {
		cfg.WatchInterval = *overrides.WatchInterval
	}

	return cfg, nil
}

// applyExplicitZeros applies settings explicitly set to a zero value, which
// mergo skips when overriding.
func applyExplicitZeros(cfg *Config, overrides *CLIOverrides) {
	if overrides.EnvDelimiter != nil {
		cfg.EnvDelimiter = *overrides.EnvDelimiter
	}
	if overrides.MaxPasses != nil && *overrides.MaxPasses == 0 {
		cfg.MaxPasses = 0
	}
	if overrides.Lenient != nil {
		cfg.Lenient = *overrides.Lenient
	}
	if overrides.Watch != nil {
		cfg.Watch = *overrides.Watch
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if len(cfg.Parts) == 0 {
		return ErrNoParts
	}
	if cfg.MaxPasses < 0 {
		return ErrInvalidMaxPasses
	}
	if cfg.Watch && cfg.WatchInterval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// ParsePart parses a part given as FILE or POLICY:FILE, where POLICY is
// any, existent or new. A prefix that is not a policy name is kept as part
// of the path.
func ParsePart(raw string) (PartSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PartSource{}, fmt.Errorf("%w: empty value", ErrInvalidPart)
	}

	if prefix, path, ok := strings.Cut(raw, ":"); ok {
		if policy, err := tree.ParseKeyPolicy(prefix); err == nil && prefix != "" {
			if path == "" {
				return PartSource{}, fmt.Errorf("%w: %q has no file", ErrInvalidPart, raw)
			}
			return PartSource{Path: path, Policy: policy}, nil
		}
	}

	return PartSource{Path: raw, Policy: tree.PolicyAny}, nil
}
