package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_RunsEveryJob(t *testing.T) {
	ctx := context.Background()
	results := make([]int, 20)
	var calls atomic.Int32

	p := NewPool(ctx, func(_ context.Context, job Job) error {
		calls.Add(1)
		results[job.Index] = job.Index * 2
		return nil
	}, nil, WithWorkers(3), WithQueueSize(2))

	for i := range results {
		if err := p.Enqueue(ctx, Job{Index: i}); err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if calls.Load() != 20 {
		t.Errorf("handler called %d times, want 20", calls.Load())
	}
	for i, v := range results {
		if v != i*2 {
			t.Errorf("results[%d] = %d", i, v)
		}
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	p := NewPool(ctx, func(_ context.Context, job Job) error {
		if job.Index == 1 {
			return boom
		}
		return nil
	}, nil, WithWorkers(2))

	for i := 0; i < 3; i++ {
		_ = p.Enqueue(ctx, Job{Index: i})
	}
	if err := p.Shutdown(ctx); !errors.Is(err, boom) {
		t.Fatalf("Shutdown() error = %v, want boom", err)
	}
}

func TestPool_EnqueueAfterShutdown(t *testing.T) {
	ctx := context.Background()
	p := NewPool(ctx, func(context.Context, Job) error { return nil }, nil, WithWorkers(1))
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := p.Enqueue(ctx, Job{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	// second shutdown is a no-op
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}
