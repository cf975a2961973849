package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
)

// SQLiteHistoryCacheRepo implements HistoryCacheRepo. ReplaceAll issues
// several statements; run it through a UnitOfWork so readers never observe a
// half-written listing.
type SQLiteHistoryCacheRepo struct {
	db db.DBTX
}

func NewSQLiteHistoryCacheRepo(conn db.DBTX) *SQLiteHistoryCacheRepo {
	return &SQLiteHistoryCacheRepo{db: conn}
}

func (r *SQLiteHistoryCacheRepo) ReplaceAll(ctx context.Context, entries []domain.HistoryEntry, fetchedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history_cache`); err != nil {
		return fmt.Errorf("clearing history cache: %w", err)
	}

	fetched := fetchedAt.UTC().Format(time.RFC3339)
	query := `INSERT INTO history_cache
		(position, filename, marksheet_type, records_extracted, file_size, processed_at, processed_filename, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, e := range entries {
		_, err := r.db.ExecContext(ctx, query,
			i,
			e.Filename,
			e.MarksheetType,
			e.RecordsExtracted,
			e.FileSize,
			nullableTimeToString(&e.Date, time.RFC3339),
			e.ProcessedFilename,
			fetched,
		)
		if err != nil {
			return fmt.Errorf("inserting history entry %q: %w", e.Filename, err)
		}
	}
	return nil
}

// List returns the cached entries in the order the service reported them.
func (r *SQLiteHistoryCacheRepo) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT filename, marksheet_type, records_extracted, file_size,
		processed_at, processed_filename
		FROM history_cache ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing history cache: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		var processedAt sql.NullString
		if err := rows.Scan(&e.Filename, &e.MarksheetType, &e.RecordsExtracted, &e.FileSize,
			&processedAt, &e.ProcessedFilename); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if t := parseNullableTime(processedAt, time.RFC3339); t != nil {
			e.Date = *t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastFetched reports when the cache was last replaced, or nil if it is empty.
func (r *SQLiteHistoryCacheRepo) LastFetched(ctx context.Context) (*time.Time, error) {
	var s sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(fetched_at) FROM history_cache`).Scan(&s); err != nil {
		return nil, fmt.Errorf("reading history fetch time: %w", err)
	}
	return parseNullableTime(s, time.RFC3339), nil
}
