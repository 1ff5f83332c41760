package batch

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// Reporter prints the human-readable status lines. Workers call it
// concurrently; each line is written whole.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) NothingFound(dir string, patterns []string) {
	r.printf("yak: no files found in %s with patterns: %s\n", dir, patternList(patterns))
}

// patternList renders patterns as ['a', 'b'].
func patternList(patterns []string) string {
	quoted := make([]string, len(patterns))
	for i, p := range patterns {
		quoted[i] = "'" + p + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (r *Reporter) Found(files []AudioFile) {
	r.printf("yak: found %d file(s):\n", len(files))
	for _, f := range files {
		r.printf("  - %s\n", f.Name())
	}
}

func (r *Reporter) Transcribed(file AudioFile, outputPath string) {
	r.printf("yak: transcribed %s → %s\n", file.Name(), filepath.Base(outputPath))
}

func (r *Reporter) Failed(file AudioFile, err error) {
	r.printf("yak: ERROR: %s: %v\n", file.Name(), err)
}

// Summary prints the combined file location, the failure list and a count line.
func (r *Reporter) Summary(s Summary) {
	if s.CombinedPath != "" {
		r.printf("\nyak: all transcripts combined into %s\n", s.CombinedPath)
	}
	if len(s.Failures) > 0 {
		r.printf("\nyak: failed to transcribe:\n")
		for _, f := range s.Failures {
			r.printf("  - %s\n", f.File.Path)
		}
	}
	r.printf("\nyak: done: %d of %d file(s) transcribed, %d failed\n", s.Succeeded, s.Total, len(s.Failures))
}
