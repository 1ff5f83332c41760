package batch

import (
	"context"
	"path/filepath"
	"strings"
)

const (
	// TranscriptSuffix replaces the audio file's extension in its output name.
	TranscriptSuffix = "_transcript.txt"
	// CombinedFileName is written when combination is requested.
	CombinedFileName = "combined.txt"
)

// AudioFile is an absolute path to a readable audio source.
type AudioFile struct {
	Path string
}

// Name returns the file's base name.
func (f AudioFile) Name() string {
	return filepath.Base(f.Path)
}

// Stem returns the base name without its extension. A name that is only a
// leading dot and a suffix, such as ".mp3", has no extension.
func (f AudioFile) Stem() string {
	name := f.Name()
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the outcome of transcribing one AudioFile. Status is the
// discriminant: a Success may carry empty Text, a Failure always carries Err.
type Result struct {
	Status     Status
	File       AudioFile
	OutputPath string
	Text       string
	Err        error
}

func Succeeded(file AudioFile, outputPath, text string) Result {
	return Result{Status: StatusSuccess, File: file, OutputPath: outputPath, Text: text}
}

func Failed(file AudioFile, err error) Result {
	return Result{Status: StatusFailure, File: file, Err: err}
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Outcome holds one Result per input file, in enumeration order.
type Outcome struct {
	BatchID string
	Results []Result
}

type batchIDKey struct{}

// WithBatchID tags ctx with the running batch's id.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey{}, id)
}

// BatchIDFromContext returns the id set by WithBatchID, or "".
func BatchIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(batchIDKey{}).(string)
	return id
}
