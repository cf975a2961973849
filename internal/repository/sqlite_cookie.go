package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
)

// SQLiteCookieRepo implements CookieRepo.
type SQLiteCookieRepo struct {
	db db.DBTX
}

func NewSQLiteCookieRepo(conn db.DBTX) *SQLiteCookieRepo {
	return &SQLiteCookieRepo{db: conn}
}

// Save upserts cookies for host. A cookie with MaxAge < 0 deletes its row.
func (r *SQLiteCookieRepo) Save(ctx context.Context, host string, cookies []*http.Cookie) error {
	now := nowUTC()
	for _, c := range cookies {
		if c.MaxAge < 0 {
			if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND name = ?`, host, c.Name); err != nil {
				return fmt.Errorf("deleting cookie %s: %w", c.Name, err)
			}
			continue
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		_, err := r.db.ExecContext(ctx, `INSERT INTO cookies
			(host, name, value, path, expires_at, secure, http_only, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(host, name) DO UPDATE SET
				value = excluded.value,
				path = excluded.path,
				expires_at = excluded.expires_at,
				secure = excluded.secure,
				http_only = excluded.http_only,
				updated_at = excluded.updated_at`,
			host, c.Name, c.Value, path,
			nullableTimeToString(&c.Expires, time.RFC3339),
			boolToInt(c.Secure), boolToInt(c.HttpOnly), now,
		)
		if err != nil {
			return fmt.Errorf("saving cookie %s: %w", c.Name, err)
		}
	}
	return nil
}

// Load returns the unexpired cookies stored for host.
func (r *SQLiteCookieRepo) Load(ctx context.Context, host string) ([]*http.Cookie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, value, path, expires_at, secure, http_only
		FROM cookies WHERE host = ? ORDER BY name`, host)
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var out []*http.Cookie
	for rows.Next() {
		var c http.Cookie
		var expires sql.NullString
		var secure, httpOnly int
		if err := rows.Scan(&c.Name, &c.Value, &c.Path, &expires, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("scanning cookie: %w", err)
		}
		if t := parseNullableTime(expires, time.RFC3339); t != nil {
			if t.Before(now) {
				continue
			}
			c.Expires = *t
		}
		c.Secure = intToBool(secure)
		c.HttpOnly = intToBool(httpOnly)
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *SQLiteCookieRepo) Clear(ctx context.Context, host string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ?`, host); err != nil {
		return fmt.Errorf("clearing cookies: %w", err)
	}
	return nil
}
