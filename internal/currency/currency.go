// Package currency caches currency display symbols and formats prices.
package currency

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale groups digits the way Argentinian prices are written.
const DefaultLocale = "es-AR"

// DefaultLookupTimeout bounds a single remote symbol lookup.
const DefaultLookupTimeout = 10 * time.Second

// Lookup fetches the symbol of a currency code.
type Lookup interface {
	Symbol(ctx context.Context, code string) (string, error)
}

// Config configures a Cache.
type Config struct {
	// Locale is a BCP 47 tag selecting digit grouping. Defaults to DefaultLocale.
	Locale string
	// LookupTimeout bounds a shared lookup. Defaults to DefaultLookupTimeout.
	LookupTimeout time.Duration
	MeterProvider metric.MeterProvider
}

// Cache maps currency codes to symbols. Entries are written once and never
// expire. Resolution never fails: when a symbol cannot be obtained the code
// itself is used.
type Cache struct {
	lookup Lookup
	locale  language.Tag
	timeout time.Duration
	lg      *zap.Logger

	mu      sync.RWMutex
	symbols map[string]string
	group   singleflight.Group

	lookups   metric.Int64Counter
	fallbacks metric.Int64Counter
}

// New creates an empty Cache backed by lookup.
func New(lookup Lookup, cfg Config, lg *zap.Logger) (*Cache, error) {
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = metricnoop.NewMeterProvider()
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, errors.Wrapf(err, "parse locale %q", cfg.Locale)
	}

	meter := cfg.MeterProvider.Meter("currency")
	lookups, err := meter.Int64Counter("currency.lookups",
		metric.WithDescription("Remote currency symbol lookups"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "lookups counter")
	}
	fallbacks, err := meter.Int64Counter("currency.fallbacks",
		metric.WithDescription("Resolutions that fell back to the currency code"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "fallbacks counter")
	}

	return &Cache{
		lookup:    lookup,
		locale:    tag,
		timeout:   cfg.LookupTimeout,
		lg:        lg,
		symbols:   make(map[string]string),
		lookups:   lookups,
		fallbacks: fallbacks,
	}, nil
}

func (c *Cache) cached(code string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.symbols[code]
	return s, ok
}

// Store records the symbol of code unless one is already known.
// It reports whether the entry was written.
func (c *Cache) Store(code, symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.symbols[code]; ok {
		return false
	}
	c.symbols[code] = symbol
	return true
}

// Resolve returns the symbol of code, looking it up on first use.
// Concurrent resolutions of one code share a single lookup, which is not
// cancelled when the caller that started it gives up. A caller whose own
// context is done gets the code back without waiting.
func (c *Cache) Resolve(ctx context.Context, code string) string {
	if s, ok := c.cached(code); ok {
		return s
	}

	ch := c.group.DoChan(code, func() (any, error) {
		if s, ok := c.cached(code); ok {
			return s, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		c.lookups.Add(lctx, 1)
		s, err := c.lookup.Symbol(lctx, code)
		if err != nil {
			return nil, err
		}
		c.Store(code, s)
		s, _ = c.cached(code)
		return s, nil
	})

	select {
	case <-ctx.Done():
		c.lg.Debug("Currency resolution abandoned",
			zap.String("code", code),
			zap.Error(ctx.Err()),
		)
		return code
	case res := <-ch:
		if res.Err != nil {
			c.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
			c.lg.Warn("Could not resolve currency, using code",
				zap.String("code", code),
				zap.Error(res.Err),
			)
			return code
		}
		return res.Val.(string)
	}
}

// FormatPrice renders amount as "{symbol} {grouped amount}" with no
// fraction digits, e.g. "$ 1.234" for es-AR.
func (c *Cache) FormatPrice(ctx context.Context, code string, amount int64) string {
	symbol := c.Resolve(ctx, code)
	return symbol + " " + message.NewPrinter(c.locale).Sprintf("%d", amount)
}
