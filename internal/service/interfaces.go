package service

import (
	"context"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
)

// AccountService manages the user's session with the processing service.
// It also satisfies session.Authenticator.
type AccountService interface {
	Restore(ctx context.Context) error
	CurrentUser(ctx context.Context) (processing.UserResult, error)
	Authenticated(ctx context.Context) bool
	Login(ctx context.Context, username, password string) (processing.LoginResult, error)
	Register(ctx context.Context, username, email, password string) (processing.RegisterResult, error)
	Logout(ctx context.Context) error
}

// HistoryService reads the remote processing history and mirrors it locally.
// It satisfies session.HistoryRefresher.
type HistoryService interface {
	Refresh(ctx context.Context) ([]domain.HistoryEntry, error)
	Cached(ctx context.Context) ([]domain.HistoryEntry, *time.Time, error)
}

// AttemptService is the local submission log. It satisfies
// session.AttemptRecorder.
type AttemptService interface {
	RecordAttempt(ctx context.Context, a *domain.SubmissionAttempt) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SubmissionAttempt, error)
}
