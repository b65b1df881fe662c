package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by the loader.
// Nested keys use a double underscore: LEAPTABLE_LOG__SEQ_URL -> log.seq_url.
const EnvPrefix = "LEAPTABLE_"

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// configFileNames are searched in the working directory, in order.
var configFileNames = []string{"leaptable.yaml", "leaptable.yml"}

// flagKeys maps command-line flags onto config keys. Flags not listed here
// are command options, not configuration.
var flagKeys = map[string]string{
	"output":      "output",
	"verbose":     "verbose",
	"log-level":   "log.level",
	"seq-url":     "log.seq_url",
	"transform":   "panel.transform",
	"sort-col":    "panel.sort.col",
	"sort-desc":   "panel.sort.desc",
	"concurrency": "batch.concurrency",
}

var configFileUsed string

// findConfigFile returns the explicit path, or the first config file found
// in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]any {
	return map[string]any{
		"verbose":           false,
		"output":            DefaultOutput,
		"log.level":         DefaultLogLevel,
		"panel.transform":   DefaultTransform,
		"batch.concurrency": DefaultBatchConcurrency,
	}
}

// LoadConfig loads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment: LEAPTABLE_PANEL__TRANSFORM -> panel.transform
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Script files are relative to the config file that names them.
	baseDir := "."
	if configFileUsed != "" {
		baseDir = filepath.Dir(configFileUsed)
	}
	for key, a := range cfg.Aggregations {
		if a.File != "" && !filepath.IsAbs(a.File) {
			a.File = filepath.Join(baseDir, a.File)
			cfg.Aggregations[key] = a
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// GetConfigFileUsed returns the path of the config file read by the last
// LoadConfig call, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, or the defaults
// when none was loaded.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		OutputFormat: DefaultOutput,
		Log:          LogConfig{Level: DefaultLogLevel},
		Panel:        PanelConfig{Transform: DefaultTransform},
		Batch:        BatchConfig{Concurrency: DefaultBatchConcurrency},
	}
}
