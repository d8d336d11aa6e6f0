package keyedmutex

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_MutualExclusionPerKey(t *testing.T) {
	arena := New()
	var counter int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := arena.Acquire(context.Background(), "prop-1")
			require.NoError(t, err)
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, arena.Len())
}

func TestArena_DistinctKeysDoNotContend(t *testing.T) {
	arena := New()

	releaseA, err := arena.Acquire(context.Background(), "prop-a")
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := arena.Acquire(context.Background(), "prop-b")
		require.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquisition of an unrelated key blocked")
	}
}

func TestArena_TryAcquire(t *testing.T) {
	arena := New()

	release, ok := arena.TryAcquire("prop-1")
	require.True(t, ok)

	_, ok = arena.TryAcquire("prop-1")
	assert.False(t, ok)

	release()

	release2, ok := arena.TryAcquire("prop-1")
	assert.True(t, ok)
	release2()
	assert.Equal(t, 0, arena.Len())
}

func TestArena_AcquireRespectsContext(t *testing.T) {
	arena := New()
	release, err := arena.Acquire(context.Background(), "prop-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = arena.Acquire(ctx, "prop-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	assert.Equal(t, 0, arena.Len())
}

func TestArena_EvictsIdleEntries(t *testing.T) {
	arena := New()

	for i := 0; i < 10; i++ {
		release, err := arena.Acquire(context.Background(), "prop-1")
		require.NoError(t, err)
		release()
	}

	assert.Equal(t, 0, arena.Len())
}
