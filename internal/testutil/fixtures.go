package testutil

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/google/uuid"
)

var fixtureCounter atomic.Int64

// AttemptOption customizes a fixture attempt.
type AttemptOption func(*domain.SubmissionAttempt)

func WithAttemptType(t domain.MarksheetType) AttemptOption {
	return func(a *domain.SubmissionAttempt) { a.MarksheetType = t }
}

func WithAttemptFailed(msg string) AttemptOption {
	return func(a *domain.SubmissionAttempt) {
		a.Outcome = domain.OutcomeFailed
		a.Message = msg
		a.RecordsCount = 0
		a.DownloadHandle = ""
	}
}

func WithAttemptStartedAt(ts time.Time) AttemptOption {
	return func(a *domain.SubmissionAttempt) {
		a.StartedAt = ts
		a.FinishedAt = ts.Add(2 * time.Second)
	}
}

// NewTestAttempt returns a successful 10th-grade attempt.
func NewTestAttempt(filename string, opts ...AttemptOption) *domain.SubmissionAttempt {
	now := time.Now().UTC()
	a := &domain.SubmissionAttempt{
		ID:             uuid.New().String(),
		MarksheetType:  domain.MarksheetTenth,
		Filename:       filename,
		FileSize:       2048,
		Outcome:        domain.OutcomeSucceeded,
		RecordsCount:   12,
		DownloadHandle: "/download/" + filename + ".xlsx",
		StartedAt:      now,
		FinishedAt:     now.Add(time.Second),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HistoryOption customizes a fixture history entry.
type HistoryOption func(*domain.HistoryEntry)

func WithHistoryType(t string) HistoryOption {
	return func(h *domain.HistoryEntry) { h.MarksheetType = t }
}

func WithoutArtifact() HistoryOption {
	return func(h *domain.HistoryEntry) { h.ProcessedFilename = "" }
}

// NewTestHistoryEntry returns a downloadable entry dated now.
func NewTestHistoryEntry(filename string, opts ...HistoryOption) domain.HistoryEntry {
	n := fixtureCounter.Add(1)
	h := domain.HistoryEntry{
		Filename:          filename,
		MarksheetType:     string(domain.MarksheetTenth),
		RecordsExtracted:  int(n),
		FileSize:          1024 * n,
		Date:              time.Now().UTC().Truncate(time.Second),
		ProcessedFilename: fmt.Sprintf("processed_%d_%s.xlsx", n, filename),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// NewTestPDF returns an in-memory PDF handle of the given size.
func NewTestPDF(name string, size int) *domain.FileHandle {
	data := bytes.Repeat([]byte("%"), size)
	return domain.NewMemoryFile(name, "application/pdf", data)
}
