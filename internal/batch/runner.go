package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/socialchef/yak/internal/worker"
)

// Runner drives an Invoker over every file with a fixed degree of parallelism.
type Runner struct {
	invoker  Invoker
	parallel int
	metrics  *worker.WorkerMetrics
}

// NewRunner creates a Runner. parallel <= 1 runs files sequentially.
// No upper bound is applied. m may be nil.
func NewRunner(invoker Invoker, parallel int, m *worker.WorkerMetrics) *Runner {
	return &Runner{
		invoker:  invoker,
		parallel: parallel,
		metrics:  m,
	}
}

// Run invokes every file exactly once and blocks until all are done.
// Outcome.Results[i] always belongs to files[i].
func (r *Runner) Run(ctx context.Context, files []AudioFile) Outcome {
	batchID := uuid.NewString()
	startTime := time.Now()

	ctx = WithBatchID(ctx, batchID)
	ctx, span := worker.StartJob(ctx, worker.TypeTranscribeBatch, batchID,
		attribute.Int("batch.files", len(files)),
		attribute.Int("batch.parallel", r.parallel),
	)

	log := slog.With("batch_id", batchID)
	log.InfoContext(ctx, "Starting batch", "files", len(files), "parallel", r.parallel)

	results, errs := worker.RunBounded(ctx, r.parallel, len(files), func(ctx context.Context, i int) (Result, error) {
		return r.invoker.Invoke(ctx, files[i]), nil
	})

	failed := 0
	for i := range results {
		// Only reachable if an Invoker broke its contract and panicked.
		if errs[i] != nil {
			results[i] = Failed(files[i], fmt.Errorf("invoker: %w", errs[i]))
		}
		if !results[i].OK() {
			failed++
		}
	}

	status := worker.StatusOf(len(files), failed)
	elapsed := time.Since(startTime)
	r.metrics.RecordJob(ctx, worker.TypeTranscribeBatch, status, elapsed.Seconds())
	span.SetAttributes(attribute.Int("batch.failed", failed))
	worker.EndJob(span, status, nil)

	log.InfoContext(ctx, "Batch finished",
		"files", len(files),
		"failed", failed,
		"status", status,
		"duration", elapsed)

	return Outcome{BatchID: batchID, Results: results}
}
