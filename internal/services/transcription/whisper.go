package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/socialchef/yak/internal/errors"
	"github.com/socialchef/yak/internal/httpclient"
	"github.com/socialchef/yak/internal/metrics"
)

// transcriptionResponse is the JSON body returned for the json and verbose_json formats.
type transcriptionResponse struct {
	Text *string `json:"text"`
}

// whisperClient speaks the OpenAI-compatible /audio/transcriptions endpoint.
// OpenAI and Groq only differ in base URL and key.
type whisperClient struct {
	name       string
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func (c *whisperClient) transcribe(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()
	attrs := metric.WithAttributes(attribute.String("provider", strings.ToLower(c.name)))
	defer func() {
		metrics.ExternalAPIDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
		metrics.ExternalAPICallsTotal.Add(ctx, 1, attrs)
	}()

	// 1. Open audio file
	audioFile, err := os.Open(req.AudioPath)
	if err != nil {
		return "", apperrors.NewIOError("failed to open audio file", "AUDIO_FILE_ERROR", err)
	}
	defer audioFile.Close()

	// 2. Prepare multipart form via pipe to avoid buffering in memory
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, audioFile); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("model", req.Model); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("response_format", string(req.ResponseFormat)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	// 3. Send to the API
	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, c.name), http.MethodPost, c.baseURL+"/audio/transcriptions", pr)
	if err != nil {
		pr.Close()
		return "", apperrors.NewTranscriptionError(fmt.Sprintf("failed to create %s request", c.name), "REQUEST_ERROR", 0, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		pr.Close()
		return "", apperrors.NewTranscriptionError(fmt.Sprintf("failed to call %s transcription API", c.name), "API_ERROR", 0, err)
	}
	defer resp.Body.Close()

	// 4. Parse response
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewTranscriptionError(fmt.Sprintf("failed to read %s response", c.name), "READ_RESPONSE_ERROR", resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", apperrors.NewRateLimitError(fmt.Sprintf("%s API error (status %d): %s", c.name, resp.StatusCode, strings.TrimSpace(string(respBody))), "API_RATE_LIMITED", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewTranscriptionError(fmt.Sprintf("%s API error (status %d): %s", c.name, resp.StatusCode, strings.TrimSpace(string(respBody))), "API_HTTP_ERROR", resp.StatusCode, nil)
	}

	if req.ResponseFormat.IsJSON() {
		var transResp transcriptionResponse
		if err := json.Unmarshal(respBody, &transResp); err != nil {
			return "", apperrors.NewTranscriptionError(fmt.Sprintf("failed to parse %s response", c.name), "PARSE_RESPONSE_ERROR", resp.StatusCode, err)
		}
		if transResp.Text == nil {
			return "", apperrors.NewTranscriptionError(fmt.Sprintf("%s response has no text field", c.name), "PARSE_RESPONSE_ERROR", resp.StatusCode, nil)
		}
	}

	return string(respBody), nil
}
