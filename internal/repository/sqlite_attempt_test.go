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

func TestAttemptRepo_CreateAndGetByID(t *testing.T) {
	repo := NewSQLiteAttemptRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	a := testutil.NewTestAttempt("grade10.pdf", testutil.WithAttemptType(domain.MarksheetTenth))
	a.Pages = 2
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, domain.MarksheetTenth, got.MarksheetType)
	assert.Equal(t, domain.OutcomeSucceeded, got.Outcome)
	assert.Equal(t, a.RecordsCount, got.RecordsCount)
	assert.Equal(t, a.DownloadHandle, got.DownloadHandle)
	assert.Equal(t, 2, got.Pages)
	assert.True(t, got.StartedAt.Equal(a.StartedAt))
	assert.True(t, got.FinishedAt.Equal(a.FinishedAt))
}

func TestAttemptRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteAttemptRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttemptRepo_ListRecentNewestFirst(t *testing.T) {
	repo := NewSQLiteAttemptRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	older := testutil.NewTestAttempt("old.pdf", testutil.WithAttemptStartedAt(base))
	// Sub-second gap: ordering must not depend on trailing-zero trimming.
	newer := testutil.NewTestAttempt("new.pdf", testutil.WithAttemptStartedAt(base.Add(500*time.Millisecond)),
		testutil.WithAttemptFailed("OCR failed"))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	all, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new.pdf", all[0].Filename)
	assert.Equal(t, domain.OutcomeFailed, all[0].Outcome)
	assert.Equal(t, "OCR failed", all[0].Message)

	limited, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new.pdf", limited[0].Filename)
}

func TestAttemptRepo_RejectsUnknownType(t *testing.T) {
	repo := NewSQLiteAttemptRepo(testutil.NewTestDB(t))

	a := testutil.NewTestAttempt("x.pdf", testutil.WithAttemptType(domain.MarksheetType("11th")))
	assert.Error(t, repo.Create(context.Background(), a))
}
