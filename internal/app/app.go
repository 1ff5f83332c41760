package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/socialchef/yak/internal/batch"
	"github.com/socialchef/yak/internal/config"
	apperrors "github.com/socialchef/yak/internal/errors"
	"github.com/socialchef/yak/internal/services/transcription"
	"github.com/socialchef/yak/internal/worker"
)

// Enumerator resolves the files of one batch.
type Enumerator interface {
	Discover(dir string, patterns []string) ([]batch.AudioFile, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(dir string, patterns []string) ([]batch.AudioFile, error)

func (f EnumeratorFunc) Discover(dir string, patterns []string) ([]batch.AudioFile, error) {
	return f(dir, patterns)
}

// App wires enumeration, the batch runner and aggregation for one run.
type App struct {
	cfg        *config.Config
	provider   transcription.TranscriptionProvider
	reporter   *batch.Reporter
	enumerator Enumerator
	metrics    *worker.WorkerMetrics
}

type Option func(*App)

// WithEnumerator replaces the filesystem enumerator.
func WithEnumerator(e Enumerator) Option {
	return func(a *App) { a.enumerator = e }
}

// WithMetrics records batch metrics through m.
func WithMetrics(m *worker.WorkerMetrics) Option {
	return func(a *App) { a.metrics = m }
}

func New(cfg *config.Config, provider transcription.TranscriptionProvider, out io.Writer, opts ...Option) *App {
	a := &App{
		cfg:        cfg,
		provider:   provider,
		reporter:   batch.NewReporter(out),
		enumerator: EnumeratorFunc(batch.Discover),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes one batch. It returns apperrors.ErrNothingToDo when no file
// matched. Per-file failures are reported in the Summary, never as an error.
func (a *App) Run(ctx context.Context) (*batch.Summary, error) {
	// Nothing below may touch the audio directory before this check.
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := transcription.ParseResponseFormat(a.cfg.Transcription.ResponseFormat)
	if err != nil {
		return nil, err
	}

	audioDir, err := filepath.Abs(a.cfg.Batch.Path)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to resolve %s", a.cfg.Batch.Path), "PATH_RESOLVE_ERROR", err)
	}

	var outputDir string
	if a.cfg.Batch.OutputDir != "" {
		outputDir, err = filepath.Abs(a.cfg.Batch.OutputDir)
		if err != nil {
			return nil, apperrors.NewIOError(fmt.Sprintf("failed to resolve %s", a.cfg.Batch.OutputDir), "PATH_RESOLVE_ERROR", err)
		}
	}

	files, err := a.enumerator.Discover(audioDir, a.cfg.Batch.Patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		a.reporter.NothingFound(audioDir, a.cfg.Batch.Patterns)
		return nil, apperrors.ErrNothingToDo
	}

	a.reporter.Found(files)

	invoker := batch.NewTranscriptionInvoker(a.provider, batch.InvokerOptions{
		Model:          a.cfg.Transcription.Model,
		ResponseFormat: format,
		OutputDir:      outputDir,
	}, a.reporter)

	outcome := batch.NewRunner(invoker, a.cfg.Batch.Parallel, a.metrics).Run(ctx, files)

	// Per-file transcripts default to each file's own directory; the combined
	// file defaults to the scanned directory.
	combineDir := outputDir
	if combineDir == "" {
		combineDir = audioDir
	}

	summary, err := batch.Aggregate(outcome, batch.AggregateOptions{
		Combine:    a.cfg.Batch.Combine,
		CombineDir: combineDir,
	})
	a.reporter.Summary(summary)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to write combined transcript", "error", err, "batch_id", outcome.BatchID)
		return &summary, err
	}

	return &summary, nil
}
