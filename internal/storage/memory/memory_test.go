package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.Get(ctx, "Favorites")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(ctx, "Favorites", "MLA1 MLA2"))
	v, err = s.Get(ctx, "Favorites")
	require.NoError(t, err)
	assert.Equal(t, "MLA1 MLA2", v)

	require.NoError(t, s.Set(ctx, "Favorites", ""))
	v, err = s.Get(ctx, "Favorites")
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

func TestStore_Concurrent(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = s.Set(ctx, key, "v")
			_, _ = s.Get(ctx, key)
		}()
	}
	wg.Wait()

	v, err := s.Get(ctx, "k3")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
