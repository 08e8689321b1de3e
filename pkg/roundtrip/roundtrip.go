// Package roundtrip provides composable middleware for outgoing HTTP requests.
//
// Each Middleware wraps an http.RoundTripper and Wrap applies a chain in
// declaration order, so the first middleware sees the request first.
package roundtrip

import "net/http"

// Middleware decorates an http.RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// Func adapts an ordinary function to the http.RoundTripper interface.
type Func func(req *http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f Func) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Wrap applies middlewares to rt. The first middleware is the outermost one.
// A nil rt is replaced by http.DefaultTransport.
func Wrap(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// UserAgent returns a middleware that sets the User-Agent header on requests
// that do not already carry one.
func UserAgent(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(req *http.Request) (*http.Response, error) {
			if ua == "" || req.Header.Get("User-Agent") != "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set("User-Agent", ua)
			return next.RoundTrip(req)
		})
	}
}
