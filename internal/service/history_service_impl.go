package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/repository"
)

// HistoryClient fetches the remote processing history.
type HistoryClient interface {
	History(ctx context.Context) ([]domain.HistoryEntry, error)
}

type historyService struct {
	client   HistoryClient
	cache    repository.HistoryCacheRepo
	uow      db.UnitOfWork
	now      func() time.Time
	observer UseCaseObserver
}

func NewHistoryService(client HistoryClient, cache repository.HistoryCacheRepo, uow db.UnitOfWork, observers ...UseCaseObserver) HistoryService {
	return &historyService{
		client:   client,
		cache:    cache,
		uow:      uow,
		now:      time.Now,
		observer: combineObservers(observers),
	}
}

// Refresh fetches the remote listing and replaces the local cache with it in
// one transaction. When the cache write fails the fetched entries are still
// returned alongside the error.
func (s *historyService) Refresh(ctx context.Context) (entries []domain.HistoryEntry, err error) {
	fields := map[string]any{}
	done := track(ctx, s.observer, "refresh-history", fields)
	defer func() { done(err) }()

	entries, err = s.client.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	fields["entries"] = len(entries)

	fetchedAt := s.now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteHistoryCacheRepo(tx).ReplaceAll(ctx, entries, fetchedAt)
	})
	if err != nil {
		return entries, fmt.Errorf("caching history: %w", err)
	}
	return entries, nil
}

// Cached returns the last stored listing and when it was fetched.
func (s *historyService) Cached(ctx context.Context) ([]domain.HistoryEntry, *time.Time, error) {
	entries, err := s.cache.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	fetched, err := s.cache.LastFetched(ctx)
	if err != nil {
		return nil, nil, err
	}
	return entries, fetched, nil
}
