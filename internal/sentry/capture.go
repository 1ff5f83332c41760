package sentry

import (
	"github.com/getsentry/sentry-go"
)

// CaptureFileFailure reports one file's transcription failure, tagged with the
// batch it belongs to. It is a no-op when Sentry was not initialised.
func CaptureFileFailure(batchID, file string, err error) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	if hub.Client() == nil {
		return
	}
	hub.Scope().SetTag("batch_id", batchID)
	hub.Scope().SetTag("file", file)
	hub.CaptureException(err)
}
