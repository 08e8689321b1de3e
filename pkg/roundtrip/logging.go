package roundtrip

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LogRequests returns a middleware that logs every round trip at debug level
// and failed ones at warn level.
func LogRequests(lg *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("url", req.URL.Redacted()),
				zap.Duration("duration", time.Since(start)),
			}
			if id := RequestIDFromContext(req.Context()); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}

			if err != nil {
				lg.Warn("Round trip failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			lg.Debug("Round trip", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
