package transcription

import (
	"context"
	"net/http"
)

// OpenAIProvider implements the TranscriptionProvider interface for OpenAI
type OpenAIProvider struct {
	whisperClient
}

// NewOpenAIProvider creates a new OpenAI transcription provider
func NewOpenAIProvider(apiKey string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{whisperClient{
		name:       "OpenAI",
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    "https://api.openai.com/v1",
	}}
}

// Transcribe transcribes an audio file using OpenAI's transcription API
func (p *OpenAIProvider) Transcribe(ctx context.Context, req Request) (string, error) {
	return p.transcribe(ctx, req)
}
