package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/socialchef/yak/internal/errors"
	"github.com/socialchef/yak/internal/logger"
	"github.com/socialchef/yak/internal/metrics"
	"github.com/socialchef/yak/internal/sentry"
	"github.com/socialchef/yak/internal/services/transcription"
	"github.com/socialchef/yak/internal/telemetry"
)

// Invoker transcribes exactly one file. Implementations must not return
// errors or panic; every problem becomes a Failure result.
type Invoker interface {
	Invoke(ctx context.Context, file AudioFile) Result
}

type InvokerOptions struct {
	Model          string
	ResponseFormat transcription.ResponseFormat
	// OutputDir receives every transcript. Empty means next to each audio file.
	OutputDir string
}

// TranscriptionInvoker sends one file to the provider and writes the transcript.
type TranscriptionInvoker struct {
	provider transcription.TranscriptionProvider
	opts     InvokerOptions
	reporter *Reporter
	tracer   trace.Tracer
}

func NewTranscriptionInvoker(provider transcription.TranscriptionProvider, opts InvokerOptions, reporter *Reporter) *TranscriptionInvoker {
	return &TranscriptionInvoker{
		provider: provider,
		opts:     opts,
		reporter: reporter,
		tracer:   telemetry.Tracer("yak/batch"),
	}
}

// OutputPath returns where the transcript for file is written.
func (inv *TranscriptionInvoker) OutputPath(file AudioFile) string {
	dir := inv.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(file.Path)
	}
	return filepath.Join(dir, file.Stem()+TranscriptSuffix)
}

func (inv *TranscriptionInvoker) Invoke(ctx context.Context, file AudioFile) (result Result) {
	startTime := time.Now()
	outputPath := inv.OutputPath(file)

	ctx, span := inv.tracer.Start(ctx, "batch.invoke", trace.WithAttributes(
		attribute.String("audio.path", file.Path),
		attribute.String("output.path", outputPath),
		attribute.String("model", inv.opts.Model),
		attribute.String("response_format", string(inv.opts.ResponseFormat)),
	))

	defer func() {
		if p := recover(); p != nil {
			result = Failed(file, fmt.Errorf("transcription panicked: %v", p))
		}
		inv.finish(ctx, span, result, time.Since(startTime))
	}()

	text, err := inv.provider.Transcribe(ctx, transcription.Request{
		AudioPath:      file.Path,
		Model:          inv.opts.Model,
		ResponseFormat: inv.opts.ResponseFormat,
	})
	if err != nil {
		return Failed(file, err)
	}

	if err := writeFileAtomic(outputPath, []byte(text)); err != nil {
		return Failed(file, apperrors.NewIOError(fmt.Sprintf("failed to write %s", outputPath), "OUTPUT_WRITE_ERROR", err))
	}

	return Succeeded(file, outputPath, text)
}

// finish reports the result on every channel: status line, log, span, metrics, Sentry.
func (inv *TranscriptionInvoker) finish(ctx context.Context, span trace.Span, result Result, elapsed time.Duration) {
	defer span.End()

	status := string(result.Status)
	metrics.FilesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	metrics.FileDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("status", status)))

	if result.OK() {
		inv.reporter.Transcribed(result.File, result.OutputPath)
		slog.DebugContext(ctx, "Transcribed file",
			"file", result.File.Path,
			"output", result.OutputPath,
			"bytes", len(result.Text),
			"duration", elapsed,
			logger.WithTraceContext(ctx))
		return
	}

	span.RecordError(result.Err)
	span.SetStatus(codes.Error, result.Err.Error())
	inv.reporter.Failed(result.File, result.Err)

	attrs := []any{"file", result.File.Path, "error", result.Err.Error(), "duration", elapsed}
	if appErr, ok := apperrors.As(result.Err); ok {
		attrs = append(attrs, "error_type", string(appErr.Type), "error_code", appErr.Code())
	}
	attrs = append(attrs, logger.WithTraceContext(ctx))
	slog.WarnContext(ctx, "Failed to transcribe file", attrs...)

	sentry.CaptureFileFailure(BatchIDFromContext(ctx), result.File.Path, result.Err)
}
