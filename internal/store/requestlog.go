package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jfmyers9/crates/pkg/discogs"
	_ "modernc.org/sqlite"
)

// RequestLog persists one row per API attempt, with the rate limit state the
// server reported, using SQLite
type RequestLog struct {
	db *sql.DB
}

// Entry is one recorded API attempt
type Entry struct {
	ID         int64
	Method     string
	URL        string
	StatusCode int
	Attempt    int
	Duration   time.Duration
	RateLimit  *discogs.RateLimit // nil when the response carried no rate limit headers
	Timestamp  time.Time
}

// EntryFromResponse builds an entry from a client response hook
func EntryFromResponse(info discogs.ResponseInfo, at time.Time) Entry {
	return Entry{
		Method:     info.Method,
		URL:        info.URL,
		StatusCode: info.StatusCode,
		Attempt:    info.Attempt,
		Duration:   info.Duration,
		RateLimit:  info.RateLimit,
		Timestamp:  at,
	}
}

// Summary aggregates the entries recorded since a point in time
type Summary struct {
	Requests    int
	RateLimited int // responses with status 429
	Failed      int // responses with any other status above 399
}

// NewRequestLog opens (or creates) a request log backed by SQLite
func NewRequestLog(dbPath string) (*RequestLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent and
	// serializes writes from concurrent commands
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			attempt INTEGER NOT NULL DEFAULT 1,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			rate_limit INTEGER,
			rate_limit_used INTEGER,
			rate_limit_remaining INTEGER,
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &RequestLog{db: db}, nil
}

// Close closes the database connection
func (l *RequestLog) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Record adds an entry to the log
func (l *RequestLog) Record(ctx context.Context, e Entry) (int64, error) {
	query := `
		INSERT INTO requests (method, url, status_code, attempt, duration_ms,
			rate_limit, rate_limit_used, rate_limit_remaining, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var limit, used, remaining sql.NullInt64
	if e.RateLimit != nil {
		limit = sql.NullInt64{Int64: int64(e.RateLimit.Limit), Valid: true}
		used = sql.NullInt64{Int64: int64(e.RateLimit.Used), Valid: true}
		remaining = sql.NullInt64{Int64: int64(e.RateLimit.Remaining), Valid: true}
	}

	result, err := l.db.ExecContext(ctx, query,
		e.Method,
		e.URL,
		e.StatusCode,
		e.Attempt,
		e.Duration.Milliseconds(),
		limit,
		used,
		remaining,
		e.Timestamp.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

const selectEntries = `
	SELECT id, method, url, status_code, attempt, duration_ms,
		rate_limit, rate_limit_used, rate_limit_remaining, timestamp
	FROM requests
`

// Latest returns the most recent entry that carried rate limit state, or
// nil when there is none
func (l *RequestLog) Latest(ctx context.Context) (*Entry, error) {
	row := l.db.QueryRowContext(ctx, selectEntries+`
		WHERE rate_limit IS NOT NULL
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest request: %w", err)
	}
	return &e, nil
}

// Recent returns up to limit entries, newest first
func (l *RequestLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := selectEntries + " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return entries, nil
}

// Summarize counts the entries recorded at or after since
func (l *RequestLog) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status_code = 429 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status_code > 399 AND status_code <> 429 THEN 1 ELSE 0 END), 0)
		FROM requests
		WHERE timestamp >= ?
	`

	var s Summary
	err := l.db.QueryRowContext(ctx, query, since.UnixMilli()).Scan(&s.Requests, &s.RateLimited, &s.Failed)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize requests: %w", err)
	}
	return s, nil
}

// Cleanup removes entries older than maxAge to prevent unbounded growth.
// A maxAge <= 0 keeps every entry.
func (l *RequestLog) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-maxAge).UnixMilli()

	result, err := l.db.ExecContext(ctx, "DELETE FROM requests WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old requests: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Count returns the number of entries in the log
func (l *RequestLog) Count(ctx context.Context) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var durationMs, timestampMs int64
	var limit, used, remaining sql.NullInt64

	err := s.Scan(
		&e.ID,
		&e.Method,
		&e.URL,
		&e.StatusCode,
		&e.Attempt,
		&durationMs,
		&limit,
		&used,
		&remaining,
		&timestampMs,
	)
	if err != nil {
		return Entry{}, err
	}

	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.Timestamp = time.UnixMilli(timestampMs)
	if limit.Valid && used.Valid && remaining.Valid {
		e.RateLimit = &discogs.RateLimit{
			Limit:     int(limit.Int64),
			Used:      int(used.Int64),
			Remaining: int(remaining.Int64),
		}
	}
	return e, nil
}
