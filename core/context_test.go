package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))

	_, ok := getRunID(ctx)
	assert.False(t, ok)
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	ctx = withRunID(ctx, 12345)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressHeader(ctx))
			id, ok := getRunID(ctx)
			assert.True(t, ok)
			assert.Equal(t, int64(12345), id)
		})
	}
	wg.Wait()
}
