// Package store implements the durable job application record store on top
// of an embedded SQLite database. It owns url normalization, deduplication
// and the status write rules; the HTTP layer holds no state of its own.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/jobpilot/jobstore/app/enums"
)

// ErrNotFound indicates a requested entry doesn't exist
var ErrNotFound = errors.New("not found")

// JobEntry represents one tracked job application record, keyed by its
// normalized url.
type JobEntry struct {
	URL       string       `json:"url"`
	Status    enums.Status `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// UpsertResult reports the per-url outcome of a batch upsert. Every input
// url lands in exactly one of the four lists; rejected entries carry the
// validation reason.
type UpsertResult struct {
	Added    []string      `json:"added"`
	Updated  []string      `json:"updated"`
	Skipped  []string      `json:"skipped"`
	Rejected []RejectedURL `json:"rejected"`
}

// RejectedURL is a batch item that failed url validation
type RejectedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Store provides access to the persisted job entries. All mutating
// operations are serialized by a single mutex, so concurrent writers to the
// same url never interleave and the last writer to complete wins. Reads go
// straight to SQLite and observe a consistent snapshot.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex // serializes Upsert/Refresh/Next/Truncate/MarkAllNew
}

// jobRow is the database representation, timestamps as unix seconds
type jobRow struct {
	Seq       int64        `db:"seq"`
	URL       string       `db:"url"`
	Status    enums.Status `db:"status"`
	CreatedAt int64        `db:"created_at"`
	UpdatedAt int64        `db:"updated_at"`
}

func (r jobRow) entry() JobEntry {
	return JobEntry{
		URL:       r.URL,
		Status:    r.Status,
		CreatedAt: time.Unix(r.CreatedAt, 0),
		UpdatedAt: time.Unix(r.UpdatedAt, 0),
	}
}

// New creates a store backed by the SQLite database at dbPath, creating the
// schema if needed.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set busy timeout: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS jobs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to create schema: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Upsert applies the conditional create-or-update to each url in the batch.
// Absent urls are inserted with the given status; present urls are updated
// only if updateIfExists is set, otherwise left untouched and reported as
// skipped. Urls failing validation are rejected individually and never
// abort their siblings. A storage failure aborts the remainder of the batch
// but already applied urls stay applied.
func (s *Store) Upsert(ctx context.Context, urls []string, status enums.Status, updateIfExists bool) (UpsertResult, error) {
	res := UpsertResult{Added: []string{}, Updated: []string{}, Skipped: []string{}, Rejected: []RejectedURL{}}
	if len(urls) == 0 {
		return res, fmt.Errorf("no urls provided")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, raw := range urls {
		norm, err := NormalizeURL(raw)
		if err != nil {
			res.Rejected = append(res.Rejected, RejectedURL{URL: raw, Reason: err.Error()})
			continue
		}

		var exists bool
		if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM jobs WHERE url = ?)", norm); err != nil {
			return res, fmt.Errorf("failed to check job %s: %w", norm, err)
		}

		now := time.Now().Unix()
		switch {
		case !exists:
			_, err := s.db.ExecContext(ctx,
				"INSERT INTO jobs (url, status, created_at, updated_at) VALUES (?, ?, ?, ?)",
				norm, status, now, now)
			if err != nil {
				return res, fmt.Errorf("failed to insert job %s: %w", norm, err)
			}
			res.Added = append(res.Added, norm)
		case updateIfExists:
			_, err := s.db.ExecContext(ctx,
				"UPDATE jobs SET status = ?, updated_at = ? WHERE url = ?", status, now, norm)
			if err != nil {
				return res, fmt.Errorf("failed to update job %s: %w", norm, err)
			}
			res.Updated = append(res.Updated, norm)
		default:
			res.Skipped = append(res.Skipped, norm)
		}
	}

	return res, nil
}

// Refresh unconditionally upserts the entry for url: creates it with the
// given status if absent, overwrites the status if present. created_at is
// set on first insert and never changes afterwards. Returns the resulting
// entry.
func (s *Store) Refresh(ctx context.Context, rawURL string, status enums.Status) (JobEntry, error) {
	norm, err := NormalizeURL(rawURL)
	if err != nil {
		return JobEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	updated, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, updated_at = ? WHERE url = ?", status, now, norm)
	if err != nil {
		return JobEntry{}, fmt.Errorf("failed to refresh job %s: %w", norm, err)
	}
	if n, err := updated.RowsAffected(); err == nil && n == 0 {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO jobs (url, status, created_at, updated_at) VALUES (?, ?, ?, ?)",
			norm, status, now, now)
		if err != nil {
			return JobEntry{}, fmt.Errorf("failed to insert job %s: %w", norm, err)
		}
	}

	return s.get(ctx, norm)
}

// Next claims work for the automation worker: atomically picks the oldest
// entry with status "new", flips it to "active" and returns it. Returns
// ErrNotFound when no new entries are available.
func (s *Store) Next(ctx context.Context) (JobEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row jobRow
	err := s.db.GetContext(ctx, &row,
		"SELECT seq, url, status, created_at, updated_at FROM jobs WHERE status = ? ORDER BY seq LIMIT 1",
		enums.StatusNew)
	if errors.Is(err, sql.ErrNoRows) {
		return JobEntry{}, ErrNotFound
	}
	if err != nil {
		return JobEntry{}, fmt.Errorf("failed to query next job: %w", err)
	}

	now := time.Now().Unix()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, updated_at = ? WHERE url = ?",
		enums.StatusActive, now, row.URL); err != nil {
		return JobEntry{}, fmt.Errorf("failed to claim job %s: %w", row.URL, err)
	}

	row.Status = enums.StatusActive
	row.UpdatedAt = now
	return row.entry(), nil
}

// GetAll returns every stored entry in insertion order
func (s *Store) GetAll(ctx context.Context) ([]JobEntry, error) {
	var rows []jobRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT seq, url, status, created_at, updated_at FROM jobs ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}

	entries := make([]JobEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// GetByStatus returns the entries matching status exactly, in insertion
// order. An empty result is not an error.
func (s *Store) GetByStatus(ctx context.Context, status enums.Status) ([]JobEntry, error) {
	var rows []jobRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT seq, url, status, created_at, updated_at FROM jobs WHERE status = ? ORDER BY seq", status)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs by status %s: %w", status, err)
	}

	entries := make([]JobEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// Truncate deletes all entries, returns the number removed. Admin-only
// maintenance, not reachable from the normal lifecycle.
func (s *Store) Truncate(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs")
	if err != nil {
		return 0, fmt.Errorf("failed to truncate jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count truncated jobs: %w", err)
	}
	return n, nil
}

// MarkAllNew resets every entry's status to "new", returns the number of
// affected entries.
func (s *Store) MarkAllNew(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, updated_at = ? WHERE status != ?",
		enums.StatusNew, time.Now().Unix(), enums.StatusNew)
	if err != nil {
		return 0, fmt.Errorf("failed to reset jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reset jobs: %w", err)
	}
	return n, nil
}

// get retrieves a single entry by its normalized url
func (s *Store) get(ctx context.Context, norm string) (JobEntry, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row,
		"SELECT seq, url, status, created_at, updated_at FROM jobs WHERE url = ?", norm)
	if errors.Is(err, sql.ErrNoRows) {
		return JobEntry{}, ErrNotFound
	}
	if err != nil {
		return JobEntry{}, fmt.Errorf("failed to get job %s: %w", norm, err)
	}
	return row.entry(), nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
