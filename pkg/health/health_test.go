package health

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingCheck() CheckFunc {
	return func(_ context.Context) error {
		return nil
	}
}

func failingCheck(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

func TestChecker_AllPassing(t *testing.T) {
	c := New()
	c.Add("api", time.Second, passingCheck())
	c.Add("storage", time.Second, passingCheck())

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "api", results[0].Name)
	assert.Equal(t, "storage", results[1].Name)
	assert.True(t, Healthy(results))
}

func TestChecker_FailingCheck(t *testing.T) {
	c := New()
	c.Add("api", time.Second, passingCheck())
	c.Add("storage", time.Second, failingCheck("connection refused"))

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.True(t, results[0].Healthy())
	assert.False(t, results[1].Healthy())
	assert.EqualError(t, results[1].Err, "connection refused")
	assert.False(t, Healthy(results))
}

func TestChecker_Timeout(t *testing.T) {
	c := New()
	block := make(chan struct{})
	defer close(block)
	c.Add("slow", 20*time.Millisecond, func(_ context.Context) error {
		<-block
		return nil
	})

	results := c.Run(context.Background())
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, results[0].Duration, 20*time.Millisecond)
}

func TestChecker_ContextPassed(t *testing.T) {
	c := New()
	c.Add("deadline", time.Second, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	})

	results := c.Run(context.Background())
	assert.True(t, Healthy(results))
}

func TestChecker_Empty(t *testing.T) {
	results := New().Run(context.Background())
	assert.Empty(t, results)
	assert.True(t, Healthy(results))
}

func TestChecker_RunsConcurrently(t *testing.T) {
	c := New()
	ready := make(chan struct{})
	// Each check passes only if the other one is running at the same time.
	c.Add("first", time.Second, func(ctx context.Context) error {
		select {
		case ready <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	c.Add("second", time.Second, func(ctx context.Context) error {
		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.True(t, Healthy(results))
}
