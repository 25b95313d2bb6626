package taskpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesOrderAndValues(t *testing.T) {
	pool := New[int](4)
	tasks := make([]Task[int], 20)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			return i * i, nil
		}
	}

	outcomes := pool.Run(context.Background(), tasks)
	require.Len(t, outcomes, 20)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.NoError(t, o.Err)
		assert.Equal(t, i*i, o.Value)
	}
}

func TestRunCollectsPerTaskErrors(t *testing.T) {
	pool := New[int](2)
	boom := errors.New("boom")
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) { return 3, nil },
	}

	outcomes := pool.Run(context.Background(), tasks)
	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, boom)
	assert.NoError(t, outcomes[2].Err)
}

func TestRunRunsConcurrently(t *testing.T) {
	pool := New[struct{}](8)
	var inFlight int32
	var maxSeen int32
	tasks := make([]Task[struct{}], 8)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return struct{}{}, nil
		}
	}

	pool.Run(context.Background(), tasks)
	assert.Greater(t, atomic.LoadInt32(&maxSeen), int32(1), "expected more than one task to overlap")
}

func TestRunHonorsCancellation(t *testing.T) {
	pool := New[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 2, nil },
	}
	outcomes := pool.Run(ctx, tasks)
	require.Len(t, outcomes, 2)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index, "cancelled outcomes must still carry their own index")
		assert.Error(t, o.Err)
	}
}

func TestNewClampsWorkersToOne(t *testing.T) {
	pool := New[int](0)
	outcomes := pool.Run(context.Background(), []Task[int]{
		func(ctx context.Context) (int, error) { return 42, nil },
	})
	require.Len(t, outcomes, 1)
	assert.Equal(t, 42, outcomes[0].Value)
}
