package repository

import (
	"context"
	"testing"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCacheRepo_ReplaceAllAndList(t *testing.T) {
	repo := NewSQLiteHistoryCacheRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	fetched, err := repo.LastFetched(ctx)
	require.NoError(t, err)
	assert.Nil(t, fetched)

	first := testutil.NewTestHistoryEntry("a.pdf")
	second := testutil.NewTestHistoryEntry("b.png", testutil.WithHistoryType("12th"), testutil.WithoutArtifact())
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.ReplaceAll(ctx, []domain.HistoryEntry{first, second}, at))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.pdf", entries[0].Filename)
	assert.True(t, entries[0].Date.Equal(first.Date))
	assert.Equal(t, "12th", entries[1].MarksheetType)
	assert.False(t, entries[1].Downloadable())

	fetched, err = repo.LastFetched(ctx)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.True(t, fetched.Equal(at))
}

func TestHistoryCacheRepo_ReplaceAllDropsPreviousRows(t *testing.T) {
	repo := NewSQLiteHistoryCacheRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []domain.HistoryEntry{
		testutil.NewTestHistoryEntry("old1.pdf"),
		testutil.NewTestHistoryEntry("old2.pdf"),
	}, time.Now()))
	require.NoError(t, repo.ReplaceAll(ctx, []domain.HistoryEntry{testutil.NewTestHistoryEntry("new.pdf")}, time.Now()))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.pdf", entries[0].Filename)

	require.NoError(t, repo.ReplaceAll(ctx, nil, time.Now()))
	entries, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryCacheRepo_ZeroDateStoredAsNull(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteHistoryCacheRepo(database)
	ctx := context.Background()

	entry := testutil.NewTestHistoryEntry("undated.pdf")
	entry.Date = time.Time{}
	require.NoError(t, repo.ReplaceAll(ctx, []domain.HistoryEntry{entry}, time.Now()))

	var isNull bool
	require.NoError(t, database.QueryRow(`SELECT processed_at IS NULL FROM history_cache`).Scan(&isNull))
	assert.True(t, isNull)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, entries[0].Date.IsZero())
}
