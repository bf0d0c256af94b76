// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashley-desouza/graphql-auth-server/internal/config"
	"github.com/ashley-desouza/graphql-auth-server/pkg/errutil"
)

func serveFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("listen-addr", ":5000", "")
	flags.String("metrics-addr", "127.0.0.1:9100", "")
	flags.String("database-url", "", "")
	flags.String("redis-addr", "", "")
	flags.String("redis-password", "", "")
	flags.String("log-format", "json", "")
	flags.Bool("secure-cookies", true, "")
	flags.Bool("dev", false, "")
	return flags
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("flag defaults alone in dev mode", func(t *testing.T) {
		flags := serveFlags()
		require.NoError(t, flags.Parse([]string{"--dev"}))

		cfg, err := config.Load("", flags)
		require.NoError(t, err)
		assert.Equal(t, ":5000", cfg.ListenAddr)
		assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.True(t, cfg.SecureCookies)
		assert.True(t, cfg.Dev)
	})

	t.Run("file values override unset flag defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
listen-addr: ":8080"
database-url: "postgres://localhost/auth"
redis-addr: "localhost:6379"
log-format: "text"
`)
		flags := serveFlags()
		require.NoError(t, flags.Parse(nil))

		cfg, err := config.Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, "postgres://localhost/auth", cfg.DatabaseURL)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("explicit flags win over the file", func(t *testing.T) {
		path := writeConfigFile(t, `
listen-addr: ":8080"
database-url: "postgres://localhost/auth"
redis-addr: "localhost:6379"
`)
		flags := serveFlags()
		require.NoError(t, flags.Parse([]string{"--listen-addr", ":9999"}))

		cfg, err := config.Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.ListenAddr)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		flags := serveFlags()
		require.NoError(t, flags.Parse([]string{"--dev"}))

		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), flags)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_FILE_FAILED")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := config.Config{
		ListenAddr:  ":5000",
		DatabaseURL: "postgres://localhost/auth",
		RedisAddr:   "localhost:6379",
		LogFormat:   "json",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty listen-addr", func(c *config.Config) { c.ListenAddr = "" }},
		{"bad log-format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"missing database-url outside dev", func(c *config.Config) { c.DatabaseURL = "" }},
		{"missing redis-addr outside dev", func(c *config.Config) { c.RedisAddr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}

	t.Run("dev mode needs no external stores", func(t *testing.T) {
		cfg := config.Config{ListenAddr: ":5000", LogFormat: "json", Dev: true}
		require.NoError(t, cfg.Validate())
	})
}
