package worker

// Job type constants
const (
	TypeTranscribeBatch = "transcribe_batch"
)

// JobStatus is the terminal state of a job as recorded in metrics and spans.
type JobStatus string

const (
	JobSuccess JobStatus = "success"
	// JobPartial means some items of the job failed.
	JobPartial JobStatus = "partial"
	JobFailure JobStatus = "failure"
)

// StatusOf classifies a job from its item counts.
func StatusOf(total, failed int) JobStatus {
	switch {
	case failed > 0 && failed == total:
		return JobFailure
	case failed > 0:
		return JobPartial
	default:
		return JobSuccess
	}
}
