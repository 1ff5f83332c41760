package transcription

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/socialchef/yak/internal/errors"
)

type ProviderType string

const (
	ProviderGroq   ProviderType = "groq"
	ProviderOpenAI ProviderType = "openai"
)

// ResponseFormat is the transcript encoding requested from the API.
type ResponseFormat string

const (
	FormatText        ResponseFormat = "text"
	FormatJSON        ResponseFormat = "json"
	FormatVerboseJSON ResponseFormat = "verbose_json"
	FormatSRT         ResponseFormat = "srt"
	FormatVTT         ResponseFormat = "vtt"
)

// ResponseFormats lists every accepted format in help-text order.
var ResponseFormats = []ResponseFormat{FormatText, FormatJSON, FormatVerboseJSON, FormatSRT, FormatVTT}

// ParseResponseFormat validates s against ResponseFormats.
func ParseResponseFormat(s string) (ResponseFormat, error) {
	f := ResponseFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ResponseFormats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(ResponseFormats))
	for i, known := range ResponseFormats {
		names[i] = string(known)
	}
	return "", apperrors.NewValidationError(
		fmt.Sprintf("unknown response format %q", s),
		"UNKNOWN_RESPONSE_FORMAT",
		"Use one of: "+strings.Join(names, ", ")+".",
	)
}

// IsJSON reports whether the API answers this format with a JSON document.
func (f ResponseFormat) IsJSON() bool {
	return f == FormatJSON || f == FormatVerboseJSON
}

// Request describes one transcription call.
type Request struct {
	AudioPath      string
	Model          string
	ResponseFormat ResponseFormat
}

// TranscriptionProvider turns one audio file into transcript text in the
// requested format.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
