package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/socialchef/yak/internal/services/transcription"
)

// MockProvider is a testify mock of transcription.TranscriptionProvider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Transcribe(ctx context.Context, req transcription.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// funcProvider answers with fn; safe for concurrent use when fn is.
type funcProvider func(req transcription.Request) (string, error)

func (f funcProvider) Transcribe(ctx context.Context, req transcription.Request) (string, error) {
	return f(req)
}

// syncBuffer is a bytes.Buffer-like writer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("audio:"+name), 0o644))
	}
}

func names(files []AudioFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name()
	}
	return out
}
