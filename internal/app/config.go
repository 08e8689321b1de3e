package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"github.com/xenking/meli-catalog/internal/storage"
)

// Config holds the complete application configuration, loadable from
// environment variables (CATALOG_ prefix), flags, or YAML config files.
type Config struct {
	BaseURL     string        `default:"https://api.mercadolibre.com" usage:"Catalog API base URL" flag:"base-url" validate:"required,url"`
	Site        string        `default:"MLA" usage:"Site identifier (MLA, MLB, MLM, ...)" validate:"required,alphanum"`
	Timeout     time.Duration `default:"30s" usage:"Timeout of a single API request" validate:"gt=0"`
	UserAgent   string        `default:"meli-catalog" usage:"User-Agent sent to the API" flag:"user-agent"`
	Locale      string        `default:"es-AR" usage:"Locale used to group price digits" validate:"required,bcp47_language_tag"`
	Parallelism int           `default:"4" usage:"Elements built concurrently per page" validate:"min=1,max=64"`
	Pages       int           `default:"1" usage:"Pages fetched by paginated commands" validate:"min=1"`
	Out         string        `default:"" usage:"Write results gzip-compressed to this file instead of stdout"`
	Storage     StorageConfig
}

// StorageConfig selects the backend that keeps favorites and recent searches.
type StorageConfig struct {
	Driver        string `default:"memory" usage:"Storage backend: memory, postgres or redis" validate:"oneof=memory postgres redis"`
	DatabaseURL   string `usage:"PostgreSQL connection URL" flag:"database-url" validate:"required_if=Driver postgres"`
	RedisAddr     string `usage:"Redis address (host:port)" flag:"redis-addr" validate:"required_if=Driver redis"`
	RedisPassword string `usage:"Redis password" flag:"redis-password"`
	RedisDB       int    `default:"0" usage:"Redis database number" flag:"redis-db" validate:"min=0"`
	RedisPrefix   string `default:"catalog:" usage:"Prefix of every Redis key" flag:"redis-prefix"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and the flags in args, then validates it. It returns the remaining
// positional arguments, which name the command to run.
func LoadConfig(args []string) (*Config, []string, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CATALOG",
		Files:     []string{"catalog.yaml", "/etc/catalog/catalog.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,
	})
	if err := loader.Load(); err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, loader.Flags().Args(), nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	s := c.Storage
	if s.DatabaseURL != "" && s.Driver != storage.DriverPostgres {
		return errors.Errorf("invalid config: database URL is only used by the %s driver, got %q", storage.DriverPostgres, s.Driver)
	}
	if s.RedisAddr != "" && s.Driver != storage.DriverRedis {
		return errors.Errorf("invalid config: redis address is only used by the %s driver, got %q", storage.DriverRedis, s.Driver)
	}
	return nil
}

// applyPlatformDefaults picks up the conventional DATABASE_URL variable when
// the postgres driver is selected without an explicit URL.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.Driver == storage.DriverPostgres && c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}
