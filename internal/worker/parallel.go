package worker

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// TaskFunc is one unit of work addressed by its index in the batch.
type TaskFunc[T any] func(ctx context.Context, i int) (T, error)

// PanicError is returned in a task's error slot when the task panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RunBounded executes fn for every index in [0, n) and returns when all complete.
// At most limit tasks run at once; limit <= 1 runs them sequentially in index order.
// results[i] and errs[i] always belong to task i, whatever order tasks finish in.
// A failing or panicking task never stops its siblings.
func RunBounded[T any](ctx context.Context, limit, n int, fn TaskFunc[T]) ([]T, []error) {
	if n <= 0 {
		return nil, nil
	}

	results := make([]T, n)
	errs := make([]error, n)

	if limit <= 1 {
		for i := 0; i < n; i++ {
			results[i], errs[i] = runTask(ctx, i, fn)
		}
		return results, errs
	}

	// Plain group, not WithContext: one task failing must not cancel the rest.
	var g errgroup.Group
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			results[i], errs[i] = runTask(ctx, i, fn)
			return nil
		})
	}

	_ = g.Wait()

	return results, errs
}

func runTask[T any](ctx context.Context, i int, fn TaskFunc[T]) (result T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return fn(ctx, i)
}
