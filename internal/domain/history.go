package domain

import "time"

// HistoryEntry is a read-only record of a past processing run, as reported by
// the processing service.
type HistoryEntry struct {
	Filename          string
	MarksheetType     string
	RecordsExtracted  int
	FileSize          int64
	Date              time.Time
	ProcessedFilename string // empty when no artifact is downloadable
}

// Downloadable reports whether the entry carries a download key.
func (h HistoryEntry) Downloadable() bool {
	return h.ProcessedFilename != ""
}

// SubmissionOutcome records how a submission attempt ended.
type SubmissionOutcome string

const (
	OutcomeSucceeded SubmissionOutcome = "succeeded"
	OutcomeFailed    SubmissionOutcome = "failed"
)

// SubmissionAttempt is the local log of one Submit call.
type SubmissionAttempt struct {
	ID             string
	MarksheetType  MarksheetType
	Filename       string
	FileSize       int64
	Pages          int
	Outcome        SubmissionOutcome
	RecordsCount   int
	DownloadHandle string
	Message        string
	StartedAt      time.Time
	FinishedAt     time.Time
}
