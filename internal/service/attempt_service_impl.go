package service

import (
	"context"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/repository"
	"github.com/google/uuid"
)

type attemptService struct {
	attempts repository.AttemptRepo
}

func NewAttemptService(attempts repository.AttemptRepo) AttemptService {
	return &attemptService{attempts: attempts}
}

func (s *attemptService) RecordAttempt(ctx context.Context, a *domain.SubmissionAttempt) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.FinishedAt.Before(a.StartedAt) {
		a.FinishedAt = a.StartedAt
	}
	return s.attempts.Create(ctx, a)
}

func (s *attemptService) ListRecent(ctx context.Context, limit int) ([]*domain.SubmissionAttempt, error) {
	return s.attempts.ListRecent(ctx, limit)
}
