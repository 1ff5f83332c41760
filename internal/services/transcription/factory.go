package transcription

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/socialchef/yak/internal/config"
	"github.com/socialchef/yak/internal/errors"
)

// NewProvider creates a new transcription provider based on the configuration.
// When fallback is enabled and the fallback provider has a key, the primary is
// wrapped in a FallbackProvider.
func NewProvider(cfg *config.Config, httpClient *http.Client) TranscriptionProvider {
	tc := cfg.Transcription
	primary := newProviderOfType(ProviderType(tc.Provider), cfg, httpClient)

	if !tc.FallbackEnabled {
		return primary
	}
	if tc.FallbackProvider == tc.Provider {
		slog.Warn("Fallback provider equals primary provider, fallback disabled", "provider", tc.Provider)
		return primary
	}
	if cfg.APIKey(tc.FallbackProvider) == "" {
		slog.Warn("Fallback provider has no API key, fallback disabled",
			"fallback_provider", tc.FallbackProvider,
			"env", config.CredentialEnv(tc.FallbackProvider))
		return primary
	}

	secondary := newProviderOfType(ProviderType(tc.FallbackProvider), cfg, httpClient)
	return NewFallbackProvider(primary, secondary)
}

func newProviderOfType(t ProviderType, cfg *config.Config, httpClient *http.Client) TranscriptionProvider {
	switch t {
	case ProviderGroq:
		return NewGroqProvider(cfg.GroqKey, httpClient)
	default:
		return NewOpenAIProvider(cfg.OpenAIKey, httpClient)
	}
}

// isRetryableError checks whether the secondary provider is worth trying (5xx, 429)
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if appErr, ok := errors.As(err); ok {
		return appErr.IsRetryable()
	}

	// Check for "status 5" in error message as fallback
	errorMsg := err.Error()
	return strings.Contains(errorMsg, "status 5") || strings.Contains(errorMsg, "HTTP 5")
}
