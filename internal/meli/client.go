// Package meli is the transport and wire layer for the Mercado Libre public
// API: it issues GET requests against a fixed base address, builds endpoint
// paths and extracts element arrays from response bodies.
package meli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/meli-catalog/pkg/roundtrip"
)

// DefaultBaseURL is the public Mercado Libre API address.
const DefaultBaseURL = "https://api.mercadolibre.com"

// StatusError is returned by Client.Get when the server answers with a
// non-2xx status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Config holds the transport configuration.
type Config struct {
	// BaseURL is prepended to every endpoint path. Defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration
	// UserAgent is sent on requests that do not set one explicitly.
	UserAgent string
	// Transport is the innermost round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Client performs GET requests against the catalog API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a Client. The round-trip chain is
// request id -> user agent -> logging -> otelhttp -> cfg.Transport.
func NewClient(cfg Config, lg *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	rt := roundtrip.Wrap(otelhttp.NewTransport(base, opts...),
		roundtrip.RequestID(),
		roundtrip.UserAgent(cfg.UserAgent),
		roundtrip.LogRequests(lg),
	)

	return &Client{
		http: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Get issues GET baseURL+path and returns the response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}
