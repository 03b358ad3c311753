// Package config loads veilbreak settings.
//
// Settings come from four sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (VEILBREAK_ prefix, nested keys joined with
//     "_", e.g. VEILBREAK_BLACKLIST_OUTPUT)
//  3. Config file (.veilbreak.yaml)
//  4. Built-in defaults
//
// Corpus and install locations use the unprefixed MAGICLYSM_DIR,
// DDA_DATA_DIR and USER_MOD_DIR variables, optionally read from a .env file.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults for the content settings.
const (
	// DefaultSubdir is the directory of a content pack holding monster
	// definitions.
	DefaultSubdir = "monsters"

	// DefaultBlacklistFile is where the blacklist is written.
	DefaultBlacklistFile = "monster_blacklist.json"

	// DefaultPreview is how many blacklisted ids are previewed.
	DefaultPreview = 10
)

// Config holds the settings of every command.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Subdir is the monsters directory inside a content pack.
	Subdir string `mapstructure:"subdir" json:"subdir"`

	// Blacklist configures blacklist generation.
	Blacklist BlacklistConfig `mapstructure:"blacklist" json:"blacklist"`

	// Copy configures mod installation.
	Copy CopyConfig `mapstructure:"copy" json:"copy"`

	// ConfigFile is the resolved path of the config file, if any.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// BlacklistConfig holds the blacklist: section.
type BlacklistConfig struct {
	// Output is the blacklist file to write.
	Output string `mapstructure:"output" json:"output"`

	// Preview is how many blacklisted ids are printed after writing.
	Preview int `mapstructure:"preview" json:"preview"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		Subdir:    DefaultSubdir,
		Blacklist: BlacklistConfig{
			Output:  DefaultBlacklistFile,
			Preview: DefaultPreview,
		},
		Copy: CopyConfig{ModName: DefaultModName},
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if strings.TrimSpace(c.Subdir) == "" {
		return errors.New("subdir must not be empty")
	}

	if strings.TrimSpace(c.Blacklist.Output) == "" {
		return errors.New("blacklist.output must not be empty")
	}

	if c.Blacklist.Preview < 0 {
		return fmt.Errorf("blacklist.preview must not be negative, got %d", c.Blacklist.Preview)
	}

	return c.Copy.Validate()
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load reads the global settings from flags, VEILBREAK_* variables and an
// optional config file. Every call uses its own viper instance.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
	v.SetDefault("subdir", d.Subdir)
	v.SetDefault("blacklist.output", d.Blacklist.Output)
	v.SetDefault("blacklist.preview", d.Blacklist.Preview)
	v.SetDefault("copy.modName", d.Copy.ModName)
	v.SetDefault("copy.exclude", []string{})
	v.SetDefault("copy.noDefaultExcludes", false)
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("VEILBREAK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
}

// configureFile reads an explicit config file or discovers .veilbreak.yaml
// in the working directory or ~/.config/veilbreak.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".veilbreak")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "veilbreak"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// commandFlagKeys maps command flags to the config keys they override.
var commandFlagKeys = map[string]string{
	"subdir":              "subdir",
	"output":              "blacklist.output",
	"preview":             "blacklist.preview",
	"mod-name":            "copy.modName",
	"no-default-excludes": "copy.noDefaultExcludes",
}

// bindFlags binds the persistent flags of cmd and every ancestor by name,
// and the command flags listed in commandFlagKeys to their config keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	for name, key := range commandFlagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
