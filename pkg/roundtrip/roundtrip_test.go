package roundtrip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recorder captures the last request it was asked to send.
type recorder struct {
	last *http.Request
	err  error
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.last = req
	if r.err != nil {
		return nil, r.err
	}
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusOK)
	return rec.Result(), nil
}

func newRequest(t *testing.T, ctx context.Context) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.test/items/1", nil)
	require.NoError(t, err)
	return req
}

func TestWrap_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return Func(func(req *http.Request) (*http.Response, error) {
				calls = append(calls, name)
				return next.RoundTrip(req)
			})
		}
	}

	rt := Wrap(&recorder{}, mark("first"), mark("second"))
	_, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestRequestID_Generated(t *testing.T) {
	rec := &recorder{}
	rt := Wrap(rec, RequestID())

	_, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.NoError(t, err)

	id := rec.last.Header.Get(HeaderRequestID)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "generated id should be a UUID")
	assert.Equal(t, id, RequestIDFromContext(rec.last.Context()))
}

func TestRequestID_FromContext(t *testing.T) {
	rec := &recorder{}
	rt := Wrap(rec, RequestID())

	ctx := WithRequestID(context.Background(), "page-7")
	_, err := rt.RoundTrip(newRequest(t, ctx))
	require.NoError(t, err)
	assert.Equal(t, "page-7", rec.last.Header.Get(HeaderRequestID))
}

func TestRequestID_InvalidContextValueReplaced(t *testing.T) {
	rec := &recorder{}
	rt := Wrap(rec, RequestID())

	ctx := WithRequestID(context.Background(), strings.Repeat("x", 129))
	_, err := rt.RoundTrip(newRequest(t, ctx))
	require.NoError(t, err)

	_, err = uuid.Parse(rec.last.Header.Get(HeaderRequestID))
	assert.NoError(t, err)
}

func TestRequestID_DoesNotMutateCallerRequest(t *testing.T) {
	rt := Wrap(&recorder{}, RequestID())

	req := newRequest(t, context.Background())
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get(HeaderRequestID))
}

func TestUserAgent(t *testing.T) {
	rec := &recorder{}
	rt := Wrap(rec, UserAgent("catalog/1.0"))

	_, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.NoError(t, err)
	assert.Equal(t, "catalog/1.0", rec.last.Header.Get("User-Agent"))

	req := newRequest(t, context.Background())
	req.Header.Set("User-Agent", "custom")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "custom", rec.last.Header.Get("User-Agent"))
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := zap.New(core)

	rt := Wrap(&recorder{}, RequestID(), LogRequests(lg))
	_, err := rt.RoundTrip(newRequest(t, WithRequestID(context.Background(), "abc")))
	require.NoError(t, err)

	entries := logs.FilterMessage("Round trip").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestLogRequests_Failure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := zap.New(core)

	rt := Wrap(&recorder{err: errors.New("connection refused")}, LogRequests(lg))
	_, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.Error(t, err)

	entries := logs.FilterMessage("Round trip failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
