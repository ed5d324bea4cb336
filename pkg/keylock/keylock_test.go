package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SerializesSameKey(t *testing.T) {
	reg := NewRegistry()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := reg.Acquire(context.Background(), "staff:1:2025-03-10")
			if !assert.NoError(t, err) {
				return
			}

			n := atomic.AddInt32(&inside, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)

			assert.NoError(t, release())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_DistinctKeysDoNotBlock(t *testing.T) {
	reg := NewRegistry()

	releaseA, err := reg.Acquire(context.Background(), "staff:1:2025-03-10")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	releaseB, err := reg.Acquire(ctx, "staff:2:2025-03-10")
	require.NoError(t, err)
	require.NoError(t, releaseB())

	releaseC, err := reg.Acquire(ctx, "staff:1:2025-03-11")
	require.NoError(t, err)
	require.NoError(t, releaseC())
}

func TestRegistry_TimeoutWhileHeld(t *testing.T) {
	reg := NewRegistry()

	release, err := reg.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = reg.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, release())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_CancelledContext(t *testing.T) {
	reg := NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ReleaseIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	release, err := reg.Acquire(context.Background(), "k")
	require.NoError(t, err)

	require.NoError(t, release())
	require.NoError(t, release())

	release2, err := reg.Acquire(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, release2())
}
