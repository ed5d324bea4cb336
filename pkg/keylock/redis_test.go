package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, WithRetryInterval(5*time.Millisecond))

	release, err := locker.Acquire(context.Background(), "staff:1:2025-03-10")
	require.NoError(t, err)
	assert.True(t, mr.Exists("salon:lock:staff:1:2025-03-10"))

	require.NoError(t, release())
	assert.False(t, mr.Exists("salon:lock:staff:1:2025-03-10"))

	// второй вызов ничего не делает
	require.NoError(t, release())
}

func TestRedisLocker_ConcurrentRelease(t *testing.T) {
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, WithRetryInterval(5*time.Millisecond))

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	const callers = 8
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = release()
		}(i)
	}
	wg.Wait()

	// Ключ удалён ровно одним вызовом, остальные не видят ErrLockLost
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.False(t, mr.Exists("salon:lock:k"))

	release2, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, release2())
}

func TestRedisLocker_WaitsForHolder(t *testing.T) {
	_, client := setupRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, WithRetryInterval(5*time.Millisecond))

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = release()
	}()

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()

	release2, err := locker.Acquire(ctx2, "k")
	require.NoError(t, err)
	require.NoError(t, release2())
}

func TestRedisLocker_ExpiredLockIsNotStolenBack(t *testing.T) {
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, time.Second, WithRetryInterval(5*time.Millisecond))

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	releaseOther, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	err = release()
	assert.ErrorIs(t, err, ErrLockLost)
	assert.True(t, mr.Exists("salon:lock:k"), "другой владелец сохраняет блокировку")

	require.NoError(t, releaseOther())
}

func TestRedisLocker_BackendDown(t *testing.T) {
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, time.Second, WithKeyPrefix("test:"))

	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrBackend)
}
