// Package history records search and refresh activity in a local SQLite
// database. The log is operational convenience, not part of the index; loss
// or absence never affects search results.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/sakuin/internal/models"
)

// Store is the SQLite-backed activity log.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		results INTEGER NOT NULL,
		top_score REAL NOT NULL,
		took_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);

	CREATE TABLE IF NOT EXISTS refreshes (
		id TEXT PRIMARY KEY,
		discovered INTEGER NOT NULL,
		reused INTEGER NOT NULL,
		changed INTEGER NOT NULL,
		removed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		rebuilt INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		took_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_refreshes_created_at ON refreshes(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordSearch logs one served search.
func (s *Store) RecordSearch(ctx context.Context, resp *models.SearchResponse) error {
	var topScore float64
	if len(resp.Items) > 0 {
		topScore = resp.Items[0].Score
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, query, results, top_score, took_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), resp.Query, resp.Total, topScore, resp.QueryTime, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// RecentSearches returns the newest entries, most recent first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]*models.SearchEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, results, top_score, took_ms, created_at
		 FROM searches ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.SearchEntry, 0, limit)
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.Results, &e.TopScore, &e.TookMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// RecordRefresh logs one refresh run under its run id.
func (s *Store) RecordRefresh(ctx context.Context, stats *models.RefreshStats) error {
	id := stats.RunID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refreshes (id, discovered, reused, changed, removed, failed, rebuilt, documents, took_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, stats.Discovered, stats.Reused, stats.Changed, stats.Removed,
		stats.Failed, stats.Rebuilt, stats.Documents, stats.TookMS, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record refresh: %w", err)
	}
	return nil
}

// Totals returns lifetime counts of logged searches and refreshes.
func (s *Store) Totals(ctx context.Context) (searches, refreshes int64, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM searches`).Scan(&searches); err != nil {
		return 0, 0, fmt.Errorf("failed to count searches: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM refreshes`).Scan(&refreshes); err != nil {
		return 0, 0, fmt.Errorf("failed to count refreshes: %w", err)
	}
	return searches, refreshes, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
