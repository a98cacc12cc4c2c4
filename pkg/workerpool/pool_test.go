package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/workerpool"
)

func TestSubmitWaitRunsEveryTask(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	var (
		wg    sync.WaitGroup
		count atomic.Int64
	)
	wg.Add(50)
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.EqualValues(t, 50, count.Load())
}

func TestSubmitReportsBackpressure(t *testing.T) {
	pool := workerpool.New(1)
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)
	assert.Equal(t, 1, pool.Active())

	close(release)
	pool.Shutdown()
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	pool.Shutdown()
}

func TestDoCapsConcurrency(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var (
		running, peak atomic.Int64
		wg            sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pool.Do(context.Background(), func() error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return nil
			}))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestDoReturnsTaskError(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	errDecode := errors.New("corrupt jpeg")
	assert.ErrorIs(t, pool.Do(context.Background(), func() error { return errDecode }), errDecode)

	err := pool.Do(context.Background(), func() error { panic("encoder crashed") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoder crashed")

	// The worker survives the panic.
	assert.NoError(t, pool.Do(context.Background(), func() error { return nil }))
}

func TestDoHonoursContext(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	release := make(chan struct{})
	require.NoError(t, pool.Submit(func() { <-release }))
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	assert.ErrorIs(t, pool.Do(ctx, func() error { return nil }), context.Canceled)
	close(release)
}
