// Package health runs named dependency checks once, each under its own
// timeout, and reports their outcome.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CheckFunc is a health check function. It should return nil if the checked
// component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Result is the outcome of a single check.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Healthy reports whether the check passed.
func (r Result) Healthy() bool { return r.Err == nil }

// Checker holds a set of checks.
type Checker struct {
	mu     sync.Mutex
	checks []check
}

// New creates an empty Checker.
func New() *Checker {
	return &Checker{}
}

// Add registers a check. A check that does not return within timeout fails
// with the context error.
func (c *Checker) Add(name string, timeout time.Duration, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check{name: name, timeout: timeout, fn: fn})
}

// Run executes all checks concurrently and returns their results in
// registration order.
func (c *Checker) Run(ctx context.Context) []Result {
	c.mu.Lock()
	checks := make([]check, len(c.checks))
	copy(checks, c.checks)
	c.mu.Unlock()

	results := make([]Result, len(checks))
	var g errgroup.Group
	for i, ch := range checks {
		g.Go(func() error {
			results[i] = ch.run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (ch check) run(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, ch.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- ch.fn(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	return Result{Name: ch.name, Err: err, Duration: time.Since(start)}
}

// Healthy reports whether every result passed.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.Healthy() {
			return false
		}
	}
	return true
}
