// Package config loads sfnet settings from an optional YAML file and
// SFNET_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SFNET_SERVER_ADDR.
const EnvPrefix = "SFNET"

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Network NetworkConfig `yaml:"network" mapstructure:"network"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	MaxConcurrent  int           `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// NetworkConfig describes the network served or processed by the CLI.
type NetworkConfig struct {
	Path       string  `yaml:"path" mapstructure:"path"`
	Directed   bool    `yaml:"directed" mapstructure:"directed"`
	Geographic bool    `yaml:"geographic" mapstructure:"geographic"`
	Tolerance  float64 `yaml:"tolerance" mapstructure:"tolerance"`
	Weight     string  `yaml:"weight" mapstructure:"weight"`
}

// Load reads configuration from path, or from sfnet.yaml in the working
// directory when path is empty, and applies environment overrides. A missing
// sfnet.yaml is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sfnet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_concurrent", 64)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("network.path", "")
	v.SetDefault("network.directed", false)
	v.SetDefault("network.geographic", false)
	v.SetDefault("network.tolerance", 1e-9)
	v.SetDefault("network.weight", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if c.Server.MaxConcurrent < 1 {
		return eris.Errorf("config: server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent)
	}
	if c.Server.RequestTimeout <= 0 {
		return eris.Errorf("config: server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Network.Tolerance < 0 {
		return eris.Errorf("config: network.tolerance must not be negative, got %g", c.Network.Tolerance)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
