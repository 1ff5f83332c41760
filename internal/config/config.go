package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/socialchef/yak/internal/errors"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "yak.yaml"

// DefaultPatterns covers the audio extensions the tool scans for out of the box.
var DefaultPatterns = []string{"*.m4a", "*.wav", "*.mp3"}

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	OpenAIKey string
	GroqKey   string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Verbose bool

	Transcription TranscriptionConfig
	Batch         BatchConfig
}

type TranscriptionConfig struct {
	Provider         string        `yaml:"provider"`
	FallbackEnabled  bool          `yaml:"fallback_enabled"`
	FallbackProvider string        `yaml:"fallback_provider"`
	Model            string        `yaml:"model"`
	ResponseFormat   string        `yaml:"response_format"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

// BatchConfig describes one run: where to look, what to match and where to write.
type BatchConfig struct {
	Path      string   `yaml:"path"`
	Patterns  []string `yaml:"patterns"`
	OutputDir string   `yaml:"output_dir"`
	Combine   bool     `yaml:"combine"`
	Parallel  int      `yaml:"parallel"`
}

// Load builds a Config from the environment and the optional YAML file at path.
// It does not validate; call Validate once command-line overrides are applied.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("YAK_ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		GroqKey:                  os.Getenv("GROQ_API_KEY"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
	}

	if err := cfg.LoadFromYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "yak"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}

	cfg.SetTranscriptionDefaults()
	cfg.SetBatchDefaults()

	return cfg, nil
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Transcription TranscriptionConfig `yaml:"transcription"`
		Batch         BatchConfig         `yaml:"batch"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	t := yamlConfig.Transcription
	if t.Provider != "" {
		c.Transcription.Provider = t.Provider
	}
	if t.FallbackEnabled {
		c.Transcription.FallbackEnabled = true
	}
	if t.FallbackProvider != "" {
		c.Transcription.FallbackProvider = t.FallbackProvider
	}
	if t.Model != "" {
		c.Transcription.Model = t.Model
	}
	if t.ResponseFormat != "" {
		c.Transcription.ResponseFormat = t.ResponseFormat
	}
	if t.RequestTimeout > 0 {
		c.Transcription.RequestTimeout = t.RequestTimeout
	}

	b := yamlConfig.Batch
	if b.Path != "" {
		c.Batch.Path = b.Path
	}
	if len(b.Patterns) > 0 {
		c.Batch.Patterns = b.Patterns
	}
	if b.OutputDir != "" {
		c.Batch.OutputDir = b.OutputDir
	}
	if b.Combine {
		c.Batch.Combine = true
	}
	if b.Parallel != 0 {
		c.Batch.Parallel = b.Parallel
	}

	return nil
}

func (c *Config) SetTranscriptionDefaults() {
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "openai"
	}
	if c.Transcription.FallbackProvider == "" {
		c.Transcription.FallbackProvider = "groq"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Transcription.ResponseFormat == "" {
		c.Transcription.ResponseFormat = "text"
	}
}

func (c *Config) SetBatchDefaults() {
	if c.Batch.Path == "" {
		c.Batch.Path = "."
	}
	if len(c.Batch.Patterns) == 0 {
		c.Batch.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if c.Batch.Parallel == 0 {
		c.Batch.Parallel = 1
	}
}

// CredentialEnv returns the environment variable holding the key for provider.
func CredentialEnv(provider string) string {
	switch provider {
	case "groq":
		return "GROQ_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// APIKey returns the configured key for provider, or "" when unset.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "groq":
		return c.GroqKey
	default:
		return c.OpenAIKey
	}
}

// Validate reports the first fatal configuration problem. A missing credential
// for the selected provider is a CONFIGURATION_ERROR.
func (c *Config) Validate() error {
	switch c.Transcription.Provider {
	case "openai", "groq":
	default:
		return apperrors.NewValidationError(
			fmt.Sprintf("unknown transcription provider %q", c.Transcription.Provider),
			"UNKNOWN_PROVIDER",
			"Use one of: openai, groq.",
		)
	}
	if c.APIKey(c.Transcription.Provider) == "" {
		env := CredentialEnv(c.Transcription.Provider)
		return apperrors.NewConfigurationError(
			fmt.Sprintf("%s is required", env),
			"MISSING_CREDENTIAL",
			fmt.Sprintf("Set %s environment variable.", env),
		)
	}
	if c.Batch.Parallel < 1 {
		return apperrors.NewValidationError(
			fmt.Sprintf("parallel must be at least 1, got %d", c.Batch.Parallel),
			"INVALID_PARALLEL",
			"Pass --parallel 1 for sequential processing.",
		)
	}
	if len(c.Batch.Patterns) == 0 {
		return apperrors.NewValidationError("at least one glob pattern is required", "NO_PATTERNS", "")
	}
	return nil
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers
}
