package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, args, err := LoadConfig([]string{"categories"})
	require.NoError(t, err)

	assert.Equal(t, "https://api.mercadolibre.com", cfg.BaseURL)
	assert.Equal(t, "MLA", cfg.Site)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "es-AR", cfg.Locale)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 1, cfg.Pages)
	assert.Empty(t, cfg.Out)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "catalog:", cfg.Storage.RedisPrefix)
	assert.Equal(t, []string{"categories"}, args)
}

func TestLoadConfig_FlagsAndEnv(t *testing.T) {
	t.Setenv("CATALOG_SITE", "MLM")
	t.Setenv("CATALOG_TIMEOUT", "5s")

	cfg, args, err := LoadConfig([]string{"-pages", "3", "-parallelism", "8", "search", "smart tv"})
	require.NoError(t, err)

	assert.Equal(t, "MLM", cfg.Site)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Pages)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, []string{"search", "smart tv"}, args)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			BaseURL:     "https://api.mercadolibre.com",
			Site:        "MLA",
			Timeout:     time.Second,
			Locale:      "es-AR",
			Parallelism: 4,
			Pages:       1,
			Storage:     StorageConfig{Driver: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{name: "Postgres", mutate: func(c *Config) {
			c.Storage = StorageConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/catalog"}
		}},
		{name: "Redis", mutate: func(c *Config) {
			c.Storage = StorageConfig{Driver: "redis", RedisAddr: "localhost:6379"}
		}},
		{name: "UnknownDriver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: true},
		{name: "PostgresWithoutURL", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: true},
		{name: "RedisWithoutAddr", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: true},
		{name: "URLForOtherDriver", mutate: func(c *Config) {
			c.Storage.DatabaseURL = "postgres://localhost/catalog"
		}, wantErr: true},
		{name: "BadBaseURL", mutate: func(c *Config) { c.BaseURL = "not a url" }, wantErr: true},
		{name: "BadLocale", mutate: func(c *Config) { c.Locale = "??" }, wantErr: true},
		{name: "ZeroParallelism", mutate: func(c *Config) { c.Parallelism = 0 }, wantErr: true},
		{name: "ZeroPages", mutate: func(c *Config) { c.Pages = 0 }, wantErr: true},
		{name: "ZeroTimeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadConfig_PlatformDatabaseURL(t *testing.T) {
	t.Setenv("CATALOG_STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://db/catalog")

	cfg, _, err := LoadConfig([]string{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/catalog", cfg.Storage.DatabaseURL)
}
