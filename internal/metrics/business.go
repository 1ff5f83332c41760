package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("yak/transcription")

	// Per-file metrics
	FilesTotal   metric.Int64Counter
	FileDuration metric.Float64Histogram

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// Provider fallback metrics
	ProviderFallbackTotal metric.Int64Counter
)

func init() {
	// The global meter forwards to whichever provider telemetry installs later.
	if err := Init(); err != nil {
		otel.Handle(err)
	}
}

func Init() error {
	var err error

	FilesTotal, err = meter.Int64Counter(
		"transcription.files.total",
		metric.WithDescription("Total number of audio files processed, by status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	FileDuration, err = meter.Float64Histogram(
		"transcription.file.duration",
		metric.WithDescription("Duration of one file transcription including the output write"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return err
	}

	ProviderFallbackTotal, err = meter.Int64Counter(
		"provider.fallback.total",
		metric.WithDescription("Total number of provider fallback events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
