package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/meli-catalog/internal/meli"
)

const (
	// PageSize is the number of products requested per search page.
	PageSize = 50
	// BatchSize is the maximum number of ids in one multi-get request.
	BatchSize = 20
	// DefaultParallelism bounds concurrent element builds within a page.
	DefaultParallelism = 4
)

// Getter fetches the body of an API path.
type Getter interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Config configures a Service.
type Config struct {
	Site        string
	Parallelism int

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (c *Config) setDefaults() {
	if c.Site == "" {
		c.Site = meli.DefaultSite
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	if c.TracerProvider == nil {
		c.TracerProvider = tracenoop.NewTracerProvider()
	}
	if c.MeterProvider == nil {
		c.MeterProvider = metricnoop.NewMeterProvider()
	}
}

// Service exposes the catalog endpoints.
type Service struct {
	client      Getter
	endpoints   meli.Endpoints
	products    productBuilder
	currencies  *Currencies
	parallelism int

	lg      *zap.Logger
	tracer  trace.Tracer
	metrics pipelineMetrics
}

// NewService creates a Service. Product prices are rendered with prices.
func NewService(cfg Config, client Getter, prices PriceFormatter, lg *zap.Logger) (*Service, error) {
	cfg.setDefaults()

	m, err := newPipelineMetrics(cfg.MeterProvider.Meter("catalog"))
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}

	return &Service{
		client:      client,
		endpoints:   meli.Endpoints{Site: cfg.Site},
		products:    productBuilder{prices: prices},
		currencies:  NewCurrencies(client, lg),
		parallelism: cfg.Parallelism,
		lg:          lg,
		tracer:      cfg.TracerProvider.Tracer("catalog"),
		metrics:     m,
	}, nil
}

// Categories lists the site's top-level categories.
func (s *Service) Categories(ctx context.Context, acc []Category) (*Result[Category], error) {
	return collect(ctx, s, page[Category]{
		op:    "categories",
		path:  s.endpoints.Categories(),
		shape: meli.BareArray,
		build: buildCategory,
		dedup: DedupeByKey(categoryID),
	}, acc)
}

// SearchCategory fetches the next page of products in a category. The page
// offset is the size of acc.
func (s *Service) SearchCategory(ctx context.Context, categoryID string, acc []Product) (*Result[Product], error) {
	return collect(ctx, s, page[Product]{
		op:    "search_category",
		path:  s.endpoints.SearchCategory(categoryID, len(acc), PageSize),
		shape: meli.Field("results"),
		build: s.products.fromRaw,
		dedup: DedupeByKey(productID),
	}, acc)
}

// SearchQuery fetches the next page of products matching a free-text query.
// The page offset is the size of acc.
func (s *Service) SearchQuery(ctx context.Context, query string, acc []Product) (*Result[Product], error) {
	return collect(ctx, s, page[Product]{
		op:    "search_query",
		path:  s.endpoints.SearchQuery(query, len(acc), PageSize),
		shape: meli.Field("results"),
		build: s.products.fromRaw,
		dedup: DedupeByKey(productID),
	}, acc)
}

// Items fetches the next batch of at most BatchSize products from ids,
// starting at the size of acc. When acc already covers ids the batch is
// empty, and the request is still sent.
func (s *Service) Items(ctx context.Context, ids []string, acc []Product) (*Result[Product], error) {
	if len(ids) == 0 {
		return nil, ErrEmptyRequest
	}
	start := min(len(acc), len(ids))
	end := min(start+BatchSize, len(ids))

	return collect(ctx, s, page[Product]{
		op:    "items",
		path:  s.endpoints.Items(ids[start:end]),
		shape: meli.BareArray,
		build: s.products.fromEnvelope,
		dedup: DedupeByKey(productID),
	}, acc)
}

// Pictures lists the distinct picture URLs of an item.
func (s *Service) Pictures(ctx context.Context, itemID string) ([]string, error) {
	res, err := collect(ctx, s, page[string]{
		op:    "pictures",
		path:  s.endpoints.Item(itemID),
		shape: meli.Field("pictures"),
		build: buildPicture,
		dedup: DedupeByKey(identity),
	}, nil)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Description returns an item's description text, falling back to its plain
// text version when the rich one is empty.
func (s *Service) Description(ctx context.Context, itemID string) (string, error) {
	const op = "description"
	o, err := fetchObject(ctx, s.client, op, s.endpoints.Description(itemID))
	if err != nil {
		s.lg.Error("Could not obtain description", zap.String("item", itemID), zap.Error(err))
		return "", err
	}

	if text, err := o.str("text"); err == nil && text != "" {
		return text, nil
	}
	plain, err := o.str("plain_text")
	if err != nil {
		return "", &DecodeError{Op: op, Err: err}
	}
	return plain, nil
}

// Currency returns the display symbol of a currency.
func (s *Service) Currency(ctx context.Context, code string) (string, error) {
	return s.currencies.Symbol(ctx, code)
}

// Currencies looks up currency symbols. It only needs a transport, so a
// price formatter can be built on top of it before the Service exists.
type Currencies struct {
	client    Getter
	endpoints meli.Endpoints
	lg        *zap.Logger
}

// NewCurrencies creates a currency symbol lookup.
func NewCurrencies(client Getter, lg *zap.Logger) *Currencies {
	return &Currencies{client: client, lg: lg}
}

// Symbol fetches the display symbol of a currency code.
func (c *Currencies) Symbol(ctx context.Context, code string) (string, error) {
	const op = "currency"
	o, err := fetchObject(ctx, c.client, op, c.endpoints.Currency(code))
	if err != nil {
		c.lg.Warn("Could not obtain currency", zap.String("code", code), zap.Error(err))
		return "", err
	}
	symbol, err := o.str("symbol")
	if err != nil {
		return "", &DecodeError{Op: op, Err: err}
	}
	return symbol, nil
}

func fetchObject(ctx context.Context, client Getter, op, path string) (object, error) {
	body, err := client.Get(ctx, path)
	if err != nil {
		return nil, &TransportError{Op: op, Path: path, Err: err}
	}
	o, err := parseObject(body)
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return o, nil
}
