package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/repository"
	"github.com/JeevithaAnandhan/marksheetpro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistoryClient struct {
	entries []domain.HistoryEntry
	err     error
}

func (s stubHistoryClient) History(context.Context) ([]domain.HistoryEntry, error) {
	return s.entries, s.err
}

func TestHistoryService_RefreshReplacesCache(t *testing.T) {
	svc := testutil.NewFakeService(t)
	svc.AddHistory(map[string]any{
		"filename": "a.pdf", "marksheet_type": "10th", "records_extracted": 7,
		"file_size": 1024, "date": "2024-03-01 10:15:00", "processed_filename": "10th_a.xlsx",
	})
	svc.AddHistory(map[string]any{"filename": "b.png", "marksheet_type": "12th"})

	client := newClient(t, svc)
	client.SetCookies([]*http.Cookie{svc.Login("asha")})

	database := testutil.NewTestDB(t)
	cache := repository.NewSQLiteHistoryCacheRepo(database)
	history := NewHistoryService(client, cache, testutil.NewTestUoW(database))
	ctx := context.Background()

	entries, err := history.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Downloadable())
	assert.False(t, entries[1].Downloadable())

	cached, fetched, err := history.Cached(ctx)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, entries, cached)
}

func TestHistoryService_RefreshFailureKeepsCache(t *testing.T) {
	database := testutil.NewTestDB(t)
	cache := repository.NewSQLiteHistoryCacheRepo(database)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	seed := []domain.HistoryEntry{testutil.NewTestHistoryEntry("old.pdf")}
	_, err := NewHistoryService(stubHistoryClient{entries: seed}, cache, uow).Refresh(ctx)
	require.NoError(t, err)

	boom := errors.New("service down")
	_, err = NewHistoryService(stubHistoryClient{err: boom}, cache, uow).Refresh(ctx)
	assert.ErrorIs(t, err, boom)

	cached, _, err := NewHistoryService(nil, cache, uow).Cached(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "old.pdf", cached[0].Filename)
}

func TestHistoryService_PartialWriteRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	cache := repository.NewSQLiteHistoryCacheRepo(database)
	ctx := context.Background()

	seed := []domain.HistoryEntry{testutil.NewTestHistoryEntry("keep.pdf")}
	_, err := NewHistoryService(stubHistoryClient{entries: seed}, cache, testutil.NewTestUoW(database)).Refresh(ctx)
	require.NoError(t, err)

	// Exec 1 clears the table, exec 2 inserts the first row, exec 3 fails.
	boom := errors.New("disk full")
	failing := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: boom}
	next := []domain.HistoryEntry{
		testutil.NewTestHistoryEntry("new1.pdf"),
		testutil.NewTestHistoryEntry("new2.pdf"),
	}
	entries, err := NewHistoryService(stubHistoryClient{entries: next}, cache, failing).Refresh(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, entries, 2, "fetched entries are still returned")

	cached, err := cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "keep.pdf", cached[0].Filename)
}

func TestHistoryService_RejectedRefreshKeepsCache(t *testing.T) {
	database := testutil.NewTestDB(t)
	cache := repository.NewSQLiteHistoryCacheRepo(database)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	seed := []domain.HistoryEntry{testutil.NewTestHistoryEntry("old.pdf")}
	_, err := NewHistoryService(stubHistoryClient{entries: seed}, cache, uow).Refresh(ctx)
	require.NoError(t, err)

	// No session cookie, so the service answers 401.
	svc := testutil.NewFakeService(t)
	entries, err := NewHistoryService(newClient(t, svc), cache, uow).Refresh(ctx)
	assert.ErrorIs(t, err, processing.ErrServiceFailure)
	assert.Nil(t, entries)

	cached, fetched, err := NewHistoryService(nil, cache, uow).Cached(ctx)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Len(t, cached, 1)
	assert.Equal(t, "old.pdf", cached[0].Filename)
}
