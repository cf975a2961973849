package repository

import (
	"context"
	"net/http"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
)

// HistoryCacheRepo stores the last history listing fetched from the service.
type HistoryCacheRepo interface {
	ReplaceAll(ctx context.Context, entries []domain.HistoryEntry, fetchedAt time.Time) error
	List(ctx context.Context) ([]domain.HistoryEntry, error)
	LastFetched(ctx context.Context) (*time.Time, error)
}

// CookieRepo persists the service session cookies per host between runs.
type CookieRepo interface {
	Save(ctx context.Context, host string, cookies []*http.Cookie) error
	Load(ctx context.Context, host string) ([]*http.Cookie, error)
	Clear(ctx context.Context, host string) error
}

// AttemptRepo is the local log of submissions.
type AttemptRepo interface {
	Create(ctx context.Context, a *domain.SubmissionAttempt) error
	GetByID(ctx context.Context, id string) (*domain.SubmissionAttempt, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.SubmissionAttempt, error)
}
