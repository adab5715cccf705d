package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

//go:embed config.yaml
var defaultConfig embed.FS

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// holds aggregate configuration for one invocation.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
	Trace  TraceConfig  `mapstructure:"trace"`
}

// remote api
type APIConfig struct {
	Key          string        `mapstructure:"key"`
	Base         string        `mapstructure:"base"`
	Organization string        `mapstructure:"organization"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
	// rotated log file, stderr when empty
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type TraceConfig struct {
	Enable bool `mapstructure:"enable"`
	// stdout or http, stdout writes to stderr
	Exporter string `mapstructure:"exporter"`
	// otlp http endpoints
	TraceEndpoint   string `mapstructure:"trace_endpoint"`
	MetricsEndpoint string `mapstructure:"metrics_endpoint"`
	// secure endpoint (https)
	Secure bool `mapstructure:"secure"`
}

const (
	ExporterStdout = "stdout"
	ExporterHTTP   = "http"
)

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.API.Base == "" {
		return errors.New("api base is required")
	}
	u, err := url.Parse(c.API.Base)
	if err != nil {
		return fmt.Errorf("invalid api base: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api base %q: must be an absolute http(s) url", c.API.Base)
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("invalid request timeout %s", c.API.Timeout)
	}

	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q, expecting %s or %s", c.Output.Format, FormatJSON, FormatYAML)
	}

	if c.Trace.Enable {
		switch c.Trace.Exporter {
		case ExporterStdout:
		case ExporterHTTP:
			if c.Trace.TraceEndpoint == "" || c.Trace.MetricsEndpoint == "" {
				return errors.New("http exporter needs both trace and metrics endpoints")
			}
		default:
			return fmt.Errorf("unknown trace exporter %q, expecting %s or %s", c.Trace.Exporter, ExporterStdout, ExporterHTTP)
		}
	}

	return nil
}

// load configuration from default embedded config.yaml, provided config file, .env, env and flags before validation.
func LoadAndValidate(flags *pflag.FlagSet) (*Config, error) {
	// .env never overrides variables already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	// env
	v.SetEnvPrefix("OPENAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.organization", "OPENAI_API_ORGANIZATION", "OPENAI_ORGANIZATION"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	// flags
	for flagName, configKey := range flagToConfigKeyMap {
		f := flags.Lookup(flagName)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(configKey, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	// defaults
	defaultBytes, _ := defaultConfig.ReadFile("config.yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultBytes)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	// external config file, merged over the defaults
	configFile, _ := flags.GetString(FLAG_CONFIG_FILE)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
