package meli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/meli-catalog/pkg/roundtrip"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:   srv.URL + "/",
		Timeout:   5 * time.Second,
		UserAgent: "catalog-test",
		Transport: srv.Client().Transport,
	}, zap.NewNop())
}

func TestClient_Get(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"$"}`))
	})

	body, err := c.Get(context.Background(), "/currencies/ARS")
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"$"}`, string(body))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/currencies/ARS", got.URL.Path)
	assert.Equal(t, "catalog-test", got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get(roundtrip.HeaderRequestID))
}

func TestClient_Get_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	})

	_, err := c.Get(context.Background(), "/items/")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestClient_Get_Cancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/sites/MLA/categories")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Get_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	_, err := c.Get(context.Background(), "/sites/MLA/categories")
	require.Error(t, err)
}
