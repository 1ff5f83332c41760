// Package batch transcribes a fixed set of audio files.
//
// Discover resolves glob patterns into an ordered file list, the Runner drives
// one TranscriptionInvoker call per file over a bounded worker pool, and
// Aggregate turns the ordered Outcome into a Summary, optionally writing the
// combined transcript. Per-file errors never escape a Result.
package batch
