package plagiarism

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob func(ctx context.Context) error

func (f funcJob) Execute(ctx context.Context) error { return f(ctx) }

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	defer pool.Close()
	assert.Equal(t, 3, pool.Size())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(funcJob(func(ctx context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})))
	}
	wg.Wait()
	assert.EqualValues(t, 20, ran.Load())
}

func TestWorkerPoolDefaultSize(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	defer pool.Close()
	assert.GreaterOrEqual(t, pool.Size(), 1)
}

func TestWorkerPoolClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)

	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, pool.Submit(funcJob(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})))
	<-started

	pool.Close()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("running job was not cancelled")
	}

	assert.ErrorIs(t, pool.Submit(funcJob(func(context.Context) error { return nil })), ErrPoolClosed)
	pool.Close()
}
