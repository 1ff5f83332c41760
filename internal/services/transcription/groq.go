package transcription

import (
	"context"
	"net/http"
)

// GroqProvider implements the TranscriptionProvider interface for Groq
type GroqProvider struct {
	whisperClient
}

// NewGroqProvider creates a new Groq transcription provider
func NewGroqProvider(apiKey string, httpClient *http.Client) *GroqProvider {
	return &GroqProvider{whisperClient{
		name:       "Groq",
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    "https://api.groq.com/openai/v1",
	}}
}

// Transcribe transcribes an audio file using Groq's transcription API
func (p *GroqProvider) Transcribe(ctx context.Context, req Request) (string, error) {
	return p.transcribe(ctx, req)
}
