package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/socialchef/yak/internal/app"
	"github.com/socialchef/yak/internal/batch"
	"github.com/socialchef/yak/internal/config"
	apperrors "github.com/socialchef/yak/internal/errors"
	"github.com/socialchef/yak/internal/httpclient"
	"github.com/socialchef/yak/internal/logger"
	"github.com/socialchef/yak/internal/sentry"
	"github.com/socialchef/yak/internal/services/transcription"
	"github.com/socialchef/yak/internal/telemetry"
	"github.com/socialchef/yak/internal/worker"
)

type flags struct {
	configPath     string
	path           string
	patterns       string
	outputDir      string
	combine        bool
	parallel       int
	model          string
	responseFormat string
	provider       string
	fallback       bool
	timeout        time.Duration
	verbose        bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "yak",
		Short: "Transcribe a directory of audio files",
		Long: `yak finds audio files in a directory, sends each one to a Whisper-compatible
transcription API and writes <name>_transcript.txt next to it (or into
--output-dir). With --combine every successful transcript is also joined
into combined.txt.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", config.DefaultConfigFile, "YAML config file")
	fs.StringVar(&f.path, "path", ".", "directory to scan for audio files")
	fs.StringVar(&f.patterns, "patterns", "*.m4a,*.wav,*.mp3", "comma-separated glob patterns, ** matches nested directories")
	fs.StringVar(&f.outputDir, "output-dir", "", "write transcripts here instead of next to each audio file")
	fs.BoolVar(&f.combine, "combine", false, "also write every transcript into combined.txt")
	fs.IntVarP(&f.parallel, "parallel", "p", 1, "number of files transcribed at once")
	fs.StringVar(&f.model, "model", "whisper-1", "transcription model")
	fs.StringVar(&f.responseFormat, "response-format", "text", "text, json, verbose_json, srt or vtt")
	fs.StringVar(&f.provider, "provider", "openai", "transcription provider: openai or groq")
	fs.BoolVar(&f.fallback, "fallback", false, "try transcription.fallback_provider when the primary fails with 5xx or 429")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-request timeout, 0 waits indefinitely")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug output to stderr")
}

// apply copies explicitly set flags over the environment and YAML values.
func (f *flags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	changed := fs.Changed

	if changed("path") {
		cfg.Batch.Path = f.path
	}
	if changed("patterns") {
		cfg.Batch.Patterns = batch.ParsePatterns(f.patterns)
	}
	if changed("output-dir") {
		cfg.Batch.OutputDir = f.outputDir
	}
	if changed("combine") {
		cfg.Batch.Combine = f.combine
	}
	if changed("parallel") {
		cfg.Batch.Parallel = f.parallel
	}
	if changed("model") {
		cfg.Transcription.Model = f.model
	}
	if changed("response-format") {
		cfg.Transcription.ResponseFormat = f.responseFormat
	}
	if changed("provider") {
		cfg.Transcription.Provider = f.provider
	}
	if changed("fallback") {
		cfg.Transcription.FallbackEnabled = f.fallback
	}
	if changed("timeout") {
		cfg.Transcription.RequestTimeout = f.timeout
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	slog.SetDefault(logger.New(cfg.Env, stderr, cfg.Verbose))

	shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env,
		cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
	if err != nil {
		slog.Warn("Failed to init telemetry", "error", err)
	} else {
		defer func() {
			// The run context may already be cancelled by a signal.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				slog.Warn("Failed to flush telemetry", "error", err)
			}
		}()
	}

	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else {
		defer sentry.Flush(2 * time.Second)
	}
	defer sentry.Recover()

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	client := httpclient.NewInstrumentedClient(cfg.Transcription.RequestTimeout)
	provider := transcription.NewProvider(cfg, client)

	_, err = app.New(cfg, provider, stdout, app.WithMetrics(workerMetrics)).Run(ctx)
	return err
}

// exitCode maps a run error to the process exit status and prints it.
func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, apperrors.ErrNothingToDo) {
		return 0
	}
	if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeConfiguration && appErr.RecoverySuggestion() != "" {
		fmt.Fprintf(stderr, "yak: error: %s\n", appErr.RecoverySuggestion())
		return 1
	}
	fmt.Fprintf(stderr, "yak: error: %v\n", err)
	return 1
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return exitCode(cmd.ExecuteContext(ctx), stderr)
}
