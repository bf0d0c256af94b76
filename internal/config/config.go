// SPDX-License-Identifier: Apache-2.0

// Package config loads server configuration from an optional YAML file
// overlaid with command-line flags. Flag defaults are the configuration
// defaults.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the serve command's configuration. Keys match the flag
// names, so a YAML file mirrors the CLI surface one to one.
type Config struct {
	ListenAddr    string `koanf:"listen-addr"`
	MetricsAddr   string `koanf:"metrics-addr"`
	DatabaseURL   string `koanf:"database-url"`
	RedisAddr     string `koanf:"redis-addr"`
	RedisPassword string `koanf:"redis-password"`
	LogFormat     string `koanf:"log-format"`
	SecureCookies bool   `koanf:"secure-cookies"`
	Dev           bool   `koanf:"dev"`
}

// Load builds a Config from the optional YAML file at path, then the flag
// set. Flags win over the file; unset flags contribute their defaults.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for the serve command. Dev mode swaps
// the external stores for in-memory ones, so their addresses may be empty.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen-addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log-format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text'")
	}
	if !c.Dev {
		if c.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("database-url is required")
		}
		if c.RedisAddr == "" {
			return oops.Code("CONFIG_INVALID").Errorf("redis-addr is required")
		}
	}
	return nil
}
