package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/socialchef/yak/internal/errors"
)

type AggregateOptions struct {
	Combine bool
	// CombineDir holds combined.txt: the output directory when one was given,
	// otherwise the scanned input directory.
	CombineDir string
}

// Failure identifies one file that produced no transcript.
type Failure struct {
	File AudioFile
	Err  error
}

type Summary struct {
	BatchID      string
	Total        int
	Succeeded    int
	Texts        []string
	Failures     []Failure
	CombinedPath string
}

// Aggregate partitions outcome into successes and failures, preserving order,
// and writes the combined transcript when asked and at least one file succeeded.
// The returned Summary is valid even when the combined write fails.
func Aggregate(outcome Outcome, opts AggregateOptions) (Summary, error) {
	s := Summary{
		BatchID: outcome.BatchID,
		Total:   len(outcome.Results),
	}

	for _, r := range outcome.Results {
		if r.OK() {
			s.Succeeded++
			s.Texts = append(s.Texts, r.Text)
			continue
		}
		s.Failures = append(s.Failures, Failure{File: r.File, Err: r.Err})
	}

	if !opts.Combine || len(s.Texts) == 0 {
		return s, nil
	}

	combinedPath := filepath.Join(opts.CombineDir, CombinedFileName)
	if err := writeFileAtomic(combinedPath, []byte(CombineTexts(s.Texts))); err != nil {
		return s, apperrors.NewIOError(fmt.Sprintf("failed to write %s", combinedPath), "COMBINED_WRITE_ERROR", err)
	}
	s.CombinedPath = combinedPath

	return s, nil
}

// CombineTexts trims each text and follows it with a blank line.
func CombineTexts(texts []string) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(strings.TrimSpace(t))
		b.WriteString("\n\n")
	}
	return b.String()
}
