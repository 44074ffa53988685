// Package config loads arazzo-writer settings from defaults, an optional config.yaml, ARAZZO_WRITER_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ARAZZO_WRITER"

	KeyExternalCommand = "validator.external_command"
	KeyTimeout         = "validator.timeout"
	KeySkipExternal    = "validator.skip_external"
	KeyConcurrency     = "validator.concurrency"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeySkillInstallDir = "skill.install_dir"
)

const ErrInvalidConfig = errors.Error("invalid configuration")

// flagKeys maps config keys to the command line flags that override them.
var flagKeys = map[string]string{
	KeyExternalCommand: "external-command",
	KeyTimeout:         "timeout",
	KeySkipExternal:    "skip-external",
	KeyConcurrency:     "concurrency",
	KeyLogLevel:        "log-level",
	KeyLogFormat:       "log-format",
}

type Config struct {
	Validator Validator
	Log       Log
	Skill     Skill
	// File is the config file that was read, empty when none was found.
	File string
}

type Validator struct {
	ExternalCommand string
	Timeout         time.Duration
	SkipExternal    bool
	Concurrency     int
}

type Log struct {
	Level  string
	Format string
}

type Skill struct {
	InstallDir string
}

type options struct {
	file    string
	flags   *pflag.FlagSet
	homeDir string
	noEnv   bool
}

type Option func(*options)

// WithFile reads settings from file instead of searching for config.yaml.
func WithFile(file string) Option {
	return func(o *options) {
		o.file = file
	}
}

// WithFlags binds the flags of fs that correspond to config keys. Only flags changed on the command line take precedence.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(o *options) {
		o.flags = fs
	}
}

// WithHomeDir overrides the directory config.yaml and the default skill install dir are resolved against.
func WithHomeDir(dir string) Option {
	return func(o *options) {
		o.homeDir = dir
	}
}

// WithoutEnv disables reading ARAZZO_WRITER_* environment variables.
func WithoutEnv() Option {
	return func(o *options) {
		o.noEnv = true
	}
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault(KeyExternalCommand, validator.DefaultExternalCommand)
	v.SetDefault(KeyTimeout, validator.DefaultTimeout)
	v.SetDefault(KeySkipExternal, false)
	v.SetDefault(KeyConcurrency, validator.DefaultConcurrency)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeySkillInstallDir, filepath.Join(home, ".skills"))
}

// Load resolves the configuration.
func Load(opts ...Option) (*Config, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.homeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		o.homeDir = home
	}

	v := viper.New()
	setDefaults(v, o.homeDir)

	if !o.noEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if o.file != "" {
		v.SetConfigFile(o.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(o.homeDir, ".arazzo-writer"))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if o.flags != nil {
		for key, name := range flagKeys {
			f := o.flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{
		Validator: Validator{
			ExternalCommand: v.GetString(KeyExternalCommand),
			Timeout:         v.GetDuration(KeyTimeout),
			SkipExternal:    v.GetBool(KeySkipExternal),
			Concurrency:     v.GetInt(KeyConcurrency),
		},
		Log: Log{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Skill: Skill{
			InstallDir: v.GetString(KeySkillInstallDir),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Validator.Timeout < 0 {
		return ErrInvalidConfig.Wrapf("%s must not be negative, got %s", KeyTimeout, c.Validator.Timeout)
	}
	if c.Validator.Concurrency < 1 {
		return ErrInvalidConfig.Wrapf("%s must be at least 1, got %d", KeyConcurrency, c.Validator.Concurrency)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return ErrInvalidConfig.Wrapf("%s must be text or json, got %q", KeyLogFormat, c.Log.Format)
	}
	return nil
}
