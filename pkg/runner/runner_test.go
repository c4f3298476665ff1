package runner

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardSingleHolder(t *testing.T) {
	g := NewGuard(nil)

	require.True(t, g.TryAcquire("draft"))
	assert.False(t, g.TryAcquire("optimize"), "second acquire must fail fast")

	holder, held := g.Holder()
	assert.True(t, held)
	assert.Equal(t, "draft", holder)

	g.Release()
	assert.True(t, g.TryAcquire("optimize"), "released guard is reusable")
}

func TestGuardReleaseIdempotent(t *testing.T) {
	g := NewGuard(nil)

	g.Release() // unheld, must not panic
	require.True(t, g.TryAcquire("draft"))
	g.Release()
	g.Release()

	_, held := g.Holder()
	assert.False(t, held)
}

func TestGuardConcurrentAcquire(t *testing.T) {
	g := NewGuard(nil)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire("run") {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins, "exactly one goroutine may win the guard")
}
