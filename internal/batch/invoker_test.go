package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/socialchef/yak/internal/errors"
	"github.com/socialchef/yak/internal/services/transcription"
)

func newTestInvoker(provider transcription.TranscriptionProvider, outputDir string, out *syncBuffer) *TranscriptionInvoker {
	return NewTranscriptionInvoker(provider, InvokerOptions{
		Model:          "whisper-1",
		ResponseFormat: transcription.FormatText,
		OutputDir:      outputDir,
	}, NewReporter(out))
}

func TestInvoke_Success(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "lecture.m4a")
	file := AudioFile{Path: filepath.Join(dir, "lecture.m4a")}

	provider := new(MockProvider)
	provider.On("Transcribe", mock.Anything, transcription.Request{
		AudioPath:      file.Path,
		Model:          "whisper-1",
		ResponseFormat: transcription.FormatText,
	}).Return("  Hello there.\n", nil).Once()

	out := &syncBuffer{}
	result := newTestInvoker(provider, "", out).Invoke(context.Background(), file)

	require.True(t, result.OK(), "unexpected failure: %v", result.Err)
	assert.Equal(t, filepath.Join(dir, "lecture_transcript.txt"), result.OutputPath)
	assert.Equal(t, "  Hello there.\n", result.Text)

	written, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "  Hello there.\n", string(written), "transcript must be written verbatim")

	assert.Equal(t, "yak: transcribed lecture.m4a → lecture_transcript.txt\n", out.String())
	provider.AssertExpectations(t)
}

func TestInvoke_OutputDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")
	outDir := filepath.Join(t.TempDir(), "transcripts", "nested")

	inv := newTestInvoker(funcProvider(func(req transcription.Request) (string, error) {
		return "text", nil
	}), outDir, &syncBuffer{})

	result := inv.Invoke(context.Background(), AudioFile{Path: filepath.Join(dir, "a.mp3")})
	require.True(t, result.OK(), "unexpected failure: %v", result.Err)
	assert.Equal(t, filepath.Join(outDir, "a_transcript.txt"), result.OutputPath)
	assert.FileExists(t, result.OutputPath)
	assert.NoFileExists(t, filepath.Join(dir, "a_transcript.txt"))
}

func TestInvoke_RemoteFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")
	file := AudioFile{Path: filepath.Join(dir, "a.mp3")}

	remoteErr := apperrors.NewTranscriptionError("OpenAI API error (status 401): bad key", "API_HTTP_ERROR", 401, nil)
	provider := new(MockProvider)
	provider.On("Transcribe", mock.Anything, mock.Anything).Return("", remoteErr)

	out := &syncBuffer{}
	result := newTestInvoker(provider, "", out).Invoke(context.Background(), file)

	assert.False(t, result.OK())
	assert.Equal(t, StatusFailure, result.Status)
	assert.ErrorIs(t, result.Err, remoteErr)
	assert.NoFileExists(t, filepath.Join(dir, "a_transcript.txt"))
	assert.Equal(t, "yak: ERROR: a.mp3: OpenAI API error (status 401): bad key\n", out.String())
}

func TestInvoke_UnreadableInput(t *testing.T) {
	dir := t.TempDir()
	file := AudioFile{Path: filepath.Join(dir, "removed.mp3")}

	inv := newTestInvoker(transcription.NewOpenAIProvider("sk-test", nil), "", &syncBuffer{})
	result := inv.Invoke(context.Background(), file)

	assert.False(t, result.OK())
	assert.True(t, apperrors.IsType(result.Err, apperrors.ErrorTypeIO), "got %v", result.Err)
}

func TestInvoke_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	inv := newTestInvoker(funcProvider(func(req transcription.Request) (string, error) {
		return "transcript", nil
	}), blocker, &syncBuffer{})

	result := inv.Invoke(context.Background(), AudioFile{Path: filepath.Join(dir, "a.mp3")})

	assert.False(t, result.OK())
	appErr, ok := apperrors.As(result.Err)
	require.True(t, ok)
	assert.Equal(t, "OUTPUT_WRITE_ERROR", appErr.Code())
	assert.Empty(t, result.Text)
}

func TestInvoke_ProviderPanics(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")

	inv := newTestInvoker(funcProvider(func(req transcription.Request) (string, error) {
		panic("decoder exploded")
	}), "", &syncBuffer{})

	result := inv.Invoke(context.Background(), AudioFile{Path: filepath.Join(dir, "a.mp3")})
	assert.False(t, result.OK())
	assert.Contains(t, result.Err.Error(), "decoder exploded")
}

func TestInvoke_EmptyTranscriptIsSuccess(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "silence.wav")

	inv := newTestInvoker(funcProvider(func(req transcription.Request) (string, error) {
		return "", nil
	}), "", &syncBuffer{})

	result := inv.Invoke(context.Background(), AudioFile{Path: filepath.Join(dir, "silence.wav")})
	require.True(t, result.OK())
	assert.Empty(t, result.Text)

	written, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestInvoke_OverwritesPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")
	stale := filepath.Join(dir, "a_transcript.txt")
	require.NoError(t, os.WriteFile(stale, []byte("an older, much longer transcript"), 0o644))

	inv := newTestInvoker(funcProvider(func(req transcription.Request) (string, error) {
		return "fresh", nil
	}), "", &syncBuffer{})

	for i := 0; i < 2; i++ {
		result := inv.Invoke(context.Background(), AudioFile{Path: filepath.Join(dir, "a.mp3")})
		require.True(t, result.OK())
	}

	written, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(written))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files may be left behind")
}

func TestOutputPath(t *testing.T) {
	inv := newTestInvoker(nil, "", &syncBuffer{})
	assert.Equal(t, filepath.Join("/rec", "talk.final_transcript.txt"), inv.OutputPath(AudioFile{Path: "/rec/talk.final.mp3"}))

	inv = newTestInvoker(nil, "/out", &syncBuffer{})
	assert.Equal(t, filepath.Join("/out", "talk_transcript.txt"), inv.OutputPath(AudioFile{Path: "/rec/talk.wav"}))
	assert.Equal(t, filepath.Join("/out", ".mp3_transcript.txt"), inv.OutputPath(AudioFile{Path: "/rec/.mp3"}))
}

func TestAudioFile_Stem(t *testing.T) {
	assert.Equal(t, "a", AudioFile{Path: "/x/a.mp3"}.Stem())
	assert.Equal(t, "noext", AudioFile{Path: "/x/noext"}.Stem())
	assert.Equal(t, "a.b", AudioFile{Path: "/x/a.b.c"}.Stem())
	assert.Equal(t, ".mp3", AudioFile{Path: "/x/.mp3"}.Stem())
	assert.Equal(t, ".hidden", AudioFile{Path: "/x/.hidden.wav"}.Stem())
}

func TestFailedResultKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	r := Failed(AudioFile{Path: "/a.mp3"}, cause)
	assert.Equal(t, StatusFailure, r.Status)
	assert.ErrorIs(t, r.Err, cause)
}
