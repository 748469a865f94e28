package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/turbot/go-kit/helpers"
	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of CPU bound units of work running at once
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// NewPool creates a pool running at most size units at once. A size < 1 uses GOMAXPROCS.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

func (p *Pool) Size() int {
	return int(p.size)
}

type result[T any] struct {
	value T
	err   error
}

// Run executes fn on its own goroutine and blocks until it returns or ctx is cancelled.
// A panic in fn is returned as a Task error naming path; it never reaches the caller's goroutine.
// If ctx is cancelled while fn is running, Run returns ctx.Err() and fn's result is discarded.
func Run[T any](ctx context.Context, p *Pool, path string, fn func() (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	// buffered so the goroutine can always complete after the caller has gone
	resultChan := make(chan result[T], 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("worker panicked", "path", path, "error", r)
				resultChan <- result[T]{err: lander_error.Task(path, fmt.Errorf("%w: %w", lander_error.ErrWorkerPanic, helpers.ToError(r)))}
			}
		}()
		v, err := fn()
		resultChan <- result[T]{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-resultChan:
		return r.value, r.err
	}
}
