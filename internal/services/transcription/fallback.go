package transcription

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/socialchef/yak/internal/errors"
	"github.com/socialchef/yak/internal/metrics"
)

// FallbackProvider implements the TranscriptionProvider interface with fallback logic
type FallbackProvider struct {
	primary   TranscriptionProvider
	secondary TranscriptionProvider
}

// NewFallbackProvider creates a new fallback provider
func NewFallbackProvider(primary, secondary TranscriptionProvider) *FallbackProvider {
	return &FallbackProvider{
		primary:   primary,
		secondary: secondary,
	}
}

// Transcribe tries the primary provider first, falls back to secondary on 5xx and rate-limit errors
func (f *FallbackProvider) Transcribe(ctx context.Context, req Request) (string, error) {
	result, err := f.primary.Transcribe(ctx, req)
	if err == nil {
		return result, nil
	}

	if !isRetryableError(err) {
		slog.Debug("Primary provider failed with non-retryable error, not attempting fallback",
			"error", err.Error(),
			"audio_path", req.AudioPath)
		return "", err
	}

	slog.Info("Primary provider failed with retryable error, attempting fallback",
		"primary_error", err.Error(),
		"audio_path", req.AudioPath)
	metrics.ProviderFallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("component", "transcription")))

	result, fallbackErr := f.secondary.Transcribe(ctx, req)
	if fallbackErr != nil {
		slog.Error("Both primary and secondary providers failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
			"audio_path", req.AudioPath)
		return "", errors.NewTranscriptionError(
			"both primary and secondary providers failed",
			"PROVIDER_FALLBACK_FAILED",
			0,
			fallbackErr,
		)
	}

	slog.Info("Fallback provider succeeded",
		"primary_error", err.Error(),
		"audio_path", req.AudioPath)
	return result, nil
}
