package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBounded_PreservesOrder(t *testing.T) {
	for _, limit := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			const n = 20
			results, errs := RunBounded(context.Background(), limit, n, func(ctx context.Context, i int) (int, error) {
				// later tasks finish first
				time.Sleep(time.Duration(n-i) * time.Millisecond)
				return i * i, nil
			})

			require.Len(t, results, n)
			require.Len(t, errs, n)
			for i := 0; i < n; i++ {
				assert.Equal(t, i*i, results[i])
				assert.NoError(t, errs[i])
			}
		})
	}
}

func TestRunBounded_RespectsLimit(t *testing.T) {
	const limit = 3
	var inFlight, peak atomic.Int32

	_, _ = RunBounded(context.Background(), limit, 12, func(ctx context.Context, i int) (struct{}, error) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Greater(t, peak.Load(), int32(1))
}

func TestRunBounded_SequentialOrder(t *testing.T) {
	var order []int
	_, _ = RunBounded(context.Background(), 1, 5, func(ctx context.Context, i int) (struct{}, error) {
		order = append(order, i)
		return struct{}{}, nil
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunBounded_ErrorsDoNotStopSiblings(t *testing.T) {
	var calls atomic.Int32
	_, errs := RunBounded(context.Background(), 4, 8, func(ctx context.Context, i int) (string, error) {
		calls.Add(1)
		if i%2 == 0 {
			return "", fmt.Errorf("task %d failed", i)
		}
		return "ok", nil
	})

	assert.Equal(t, int32(8), calls.Load())
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	assert.Equal(t, 4, failed)
	assert.EqualError(t, errs[2], "task 2 failed")
	assert.NoError(t, errs[3])
}

func TestRunBounded_RecoversPanics(t *testing.T) {
	for _, limit := range []int{1, 3} {
		results, errs := RunBounded(context.Background(), limit, 3, func(ctx context.Context, i int) (string, error) {
			if i == 1 {
				panic("boom")
			}
			return "ok", nil
		})

		assert.Equal(t, "ok", results[0])
		assert.Equal(t, "ok", results[2])

		var panicErr *PanicError
		require.True(t, errors.As(errs[1], &panicErr))
		assert.Equal(t, "boom", panicErr.Value)
		assert.NotEmpty(t, panicErr.Stack)
	}
}

func TestRunBounded_Empty(t *testing.T) {
	results, errs := RunBounded(context.Background(), 4, 0, func(ctx context.Context, i int) (int, error) {
		t.Fatal("should not be called")
		return 0, nil
	})
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestWorkerMetrics_NilSafe(t *testing.T) {
	var m *WorkerMetrics
	m.RecordJob(context.Background(), "transcribe_file", "success", 1)

	m, err := NewWorkerMetrics()
	require.NoError(t, err)
	m.RecordJob(context.Background(), "transcribe_file", "success", 1)
}
