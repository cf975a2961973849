package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
)

// SQLiteAttemptRepo implements AttemptRepo.
type SQLiteAttemptRepo struct {
	db db.DBTX
}

func NewSQLiteAttemptRepo(conn db.DBTX) *SQLiteAttemptRepo {
	return &SQLiteAttemptRepo{db: conn}
}

// attemptTimeLayout is fixed-width so started_at sorts lexically.
const attemptTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const attemptColumns = `id, marksheet_type, filename, file_size, pages, outcome, records_count,
	download_handle, message, started_at, finished_at`

func (r *SQLiteAttemptRepo) Create(ctx context.Context, a *domain.SubmissionAttempt) error {
	query := `INSERT INTO submission_attempts (` + attemptColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		string(a.MarksheetType),
		a.Filename,
		a.FileSize,
		a.Pages,
		string(a.Outcome),
		a.RecordsCount,
		a.DownloadHandle,
		a.Message,
		a.StartedAt.UTC().Format(attemptTimeLayout),
		a.FinishedAt.UTC().Format(attemptTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting submission attempt: %w", err)
	}
	return nil
}

func (r *SQLiteAttemptRepo) GetByID(ctx context.Context, id string) (*domain.SubmissionAttempt, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM submission_attempts WHERE id = ?`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission attempt: %w", ErrNotFound)
	}
	return a, err
}

// ListRecent returns up to limit attempts, newest first. A non-positive limit
// returns all of them.
func (r *SQLiteAttemptRepo) ListRecent(ctx context.Context, limit int) ([]*domain.SubmissionAttempt, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+attemptColumns+`
		FROM submission_attempts ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing submission attempts: %w", err)
	}
	defer rows.Close()

	var out []*domain.SubmissionAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s rowScanner) (*domain.SubmissionAttempt, error) {
	var a domain.SubmissionAttempt
	var mt, outcome, startedAt, finishedAt string
	err := s.Scan(&a.ID, &mt, &a.Filename, &a.FileSize, &a.Pages, &outcome, &a.RecordsCount,
		&a.DownloadHandle, &a.Message, &startedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning submission attempt: %w", err)
	}
	a.MarksheetType = domain.MarksheetType(mt)
	a.Outcome = domain.SubmissionOutcome(outcome)
	if a.StartedAt, err = time.Parse(attemptTimeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if a.FinishedAt, err = time.Parse(attemptTimeLayout, finishedAt); err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	return &a, nil
}
