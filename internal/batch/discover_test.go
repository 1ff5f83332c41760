package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/socialchef/yak/internal/errors"
)

func TestDiscover_FiltersByPattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.wav", "c.txt", "a.mp3")

	files, err := Discover(dir, []string{"*.mp3", "*.wav"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.mp3", "b.wav"}, names(files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path), "expected absolute path, got %s", f.Path)
	}
}

func TestDiscover_DeduplicatesOverlappingPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "memo.m4a", "notes.txt")

	files, err := Discover(dir, []string{"*.m4a", "*.*"})
	require.NoError(t, err)

	assert.Equal(t, []string{"memo.m4a", "notes.txt"}, names(files))
}

func TestDiscover_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.mp3", "day1/a.mp3", "day1/deep/b.mp3", "day2/c.wav")

	files, err := Discover(dir, []string{"**/*.mp3"})
	require.NoError(t, err)

	rel := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f.Path)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	assert.Equal(t, []string{"day1/a.mp3", "day1/deep/b.mp3", "top.mp3"}, rel)
}

func TestDiscover_NonRecursiveByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.mp3", "sub/nested.mp3")

	files, err := Discover(dir, []string{"*.mp3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"top.mp3"}, names(files))
}

func TestDiscover_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "album.mp3"), 0o755))
	writeFiles(t, dir, "song.mp3")

	files, err := Discover(dir, []string{"*.mp3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"song.mp3"}, names(files))
}

func TestDiscover_NothingMatched(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "readme.md")

	files, err := Discover(dir, []string{"*.mp3"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "z.mp3", "m.wav", "a.m4a", "B.mp3")

	first, err := Discover(dir, []string{"*.mp3", "*.wav", "*.m4a"})
	require.NoError(t, err)
	second, err := Discover(dir, []string{"*.m4a", "*.wav", "*.mp3"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"B.mp3", "a.m4a", "m.wav", "z.mp3"}, names(first))
}

func TestDiscover_InvalidPattern(t *testing.T) {
	dir := t.TempDir()

	_, err := Discover(dir, []string{"[unclosed"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)

	_, err = Discover(dir, []string{"../*.mp3"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)

	_, err = Discover(dir, []string{"/etc/*.conf"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)
}

func TestDiscover_MissingDirectoryMatchesNothing(t *testing.T) {
	files, err := Discover(filepath.Join(t.TempDir(), "nope"), []string{"*.mp3"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParsePatterns(t *testing.T) {
	assert.Equal(t, []string{"*.m4a", "*.wav", "*.mp3"}, ParsePatterns("*.m4a,*.wav,*.mp3"))
	assert.Equal(t, []string{"*.mp3", "**/*.ogg"}, ParsePatterns(" *.mp3 , ,**/*.ogg,"))
	assert.Empty(t, ParsePatterns(""))
}
