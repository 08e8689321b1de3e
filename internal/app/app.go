// Package app wires the catalog client, caches and storage into the
// command-line front end.
package app

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/meli-catalog/internal/catalog"
	"github.com/xenking/meli-catalog/internal/currency"
	"github.com/xenking/meli-catalog/internal/meli"
	"github.com/xenking/meli-catalog/internal/prefs"
	"github.com/xenking/meli-catalog/internal/storage"
	"github.com/xenking/meli-catalog/internal/storage/memory"
	"github.com/xenking/meli-catalog/internal/storage/postgres"
	"github.com/xenking/meli-catalog/internal/storage/redis"
	"github.com/xenking/meli-catalog/pkg/health"
)

// Run creates all dependencies and executes the command in args.
// It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, args []string, stdout io.Writer) (rerr error) {
	lg.Debug("Initializing",
		zap.String("base_url", cfg.BaseURL),
		zap.String("site", cfg.Site),
		zap.String("storage", cfg.Storage.Driver),
	)

	kv, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			lg.Warn("Close storage", zap.Error(err))
		}
	}()

	cli, err := NewCLI(cfg, Deps{
		Storage:        kv,
		Logger:         lg,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return err
	}

	out := NewOutput(stdout)
	if cfg.Out != "" {
		if out, err = CreateOutput(cfg.Out); err != nil {
			return err
		}
	}
	defer func() {
		if err := out.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	if err := cli.Exec(ctx, out, args); err != nil {
		return err
	}
	lg.Debug("Done", zap.Strings("args", args), zap.Int("results", out.Lines()))
	return nil
}

// Deps are the process-level collaborators of a CLI.
type Deps struct {
	Storage storage.KV
	Logger  *zap.Logger

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// NewCLI builds the catalog service, currency cache and preference stores.
func NewCLI(cfg *Config, deps Deps) (*CLI, error) {
	if deps.Storage == nil {
		return nil, errors.New("storage is required")
	}
	lg := deps.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	client := meli.NewClient(meli.Config{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		UserAgent:      cfg.UserAgent,
		TracerProvider: deps.TracerProvider,
		MeterProvider:  deps.MeterProvider,
	}, lg.Named("http"))

	prices, err := currency.New(
		catalog.NewCurrencies(client, lg.Named("currency")),
		currency.Config{Locale: cfg.Locale, LookupTimeout: cfg.Timeout, MeterProvider: deps.MeterProvider},
		lg.Named("currency"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create currency cache")
	}

	svc, err := catalog.NewService(catalog.Config{
		Site:           cfg.Site,
		Parallelism:    cfg.Parallelism,
		TracerProvider: deps.TracerProvider,
		MeterProvider:  deps.MeterProvider,
	}, client, prices, lg.Named("catalog"))
	if err != nil {
		return nil, errors.Wrap(err, "create catalog service")
	}

	checks := health.New()
	site := meli.Endpoints{Site: cfg.Site}
	checks.Add("api", cfg.Timeout, func(ctx context.Context) error {
		_, err := client.Get(ctx, site.SitePath())
		return err
	})
	checks.Add("storage", cfg.Timeout, deps.Storage.Ping)

	return &CLI{
		Catalog:   svc,
		Health:    checks,
		Prices:    prices,
		Favorites: prefs.NewFavorites(deps.Storage, lg.Named("favorites")),
		Recent:    prefs.NewRecent(deps.Storage),
		Pages:     cfg.Pages,
		Logger:    lg,
	}, nil
}

// OpenStorage connects to the configured backend and checks it is reachable.
func OpenStorage(ctx context.Context, cfg StorageConfig) (storage.KV, error) {
	var kv storage.KV
	switch cfg.Driver {
	case storage.DriverMemory, "":
		kv = memory.New()
	case storage.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		kv = s
	case storage.DriverRedis:
		kv = redis.New(redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if err := kv.Ping(ctx); err != nil {
		_ = kv.Close()
		return nil, errors.Wrapf(err, "ping %s", cfg.Driver)
	}
	return kv, nil
}
