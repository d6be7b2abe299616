package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// SQLiteStore keeps snapshots in a single SQLite table, one JSON document per row.
// Safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens or creates the database at path. ":memory:" gives a
// private in-process database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, persistErr("open", fmt.Errorf("open database: %w", err))
	}

	if path == ":memory:" {
		// Each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, persistErr("open", fmt.Errorf("ping database: %w", err))
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, persistErr("open", fmt.Errorf("enable WAL mode: %w", err))
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, persistErr("open", fmt.Errorf("create tables: %w", err))
	}

	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		results TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(date DESC, seq DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Save appends a snapshot
func (s *SQLiteStore) Save(ctx context.Context, results *model.AnalysisResults, date string) error {
	doc, err := json.Marshal(results)
	if err != nil {
		return persistErr("save", fmt.Errorf("marshal results: %w", err))
	}

	snap := newSnapshot(results, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, date, created_at, results) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Date, snap.CreatedAt.Format(time.RFC3339Nano), string(doc),
	)
	if err != nil {
		return persistErr("save", fmt.Errorf("insert snapshot: %w", err))
	}
	return nil
}

// LoadLatest returns the most recently dated snapshot
func (s *SQLiteStore) LoadLatest(ctx context.Context) (*model.AnalysisResults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT results FROM snapshots ORDER BY date DESC, seq DESC LIMIT 1`,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr("load", fmt.Errorf("query latest: %w", err))
	}

	var results model.AnalysisResults
	if err := json.Unmarshal([]byte(doc), &results); err != nil {
		return nil, persistErr("load", fmt.Errorf("decode results: %w", err))
	}
	return &results, nil
}

// List returns all snapshots ordered by date, then write order
func (s *SQLiteStore) List(ctx context.Context) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, created_at, results FROM snapshots ORDER BY date ASC, seq ASC`,
	)
	if err != nil {
		return nil, persistErr("list", fmt.Errorf("query snapshots: %w", err))
	}
	defer func() { _ = rows.Close() }()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		var (
			snap      model.Snapshot
			createdAt string
			doc       string
		)
		if err := rows.Scan(&snap.ID, &snap.Date, &createdAt, &doc); err != nil {
			return nil, persistErr("list", fmt.Errorf("scan snapshot: %w", err))
		}
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, persistErr("list", fmt.Errorf("parse created_at: %w", err))
		}
		if err := json.Unmarshal([]byte(doc), &snap.Results); err != nil {
			return nil, persistErr("list", fmt.Errorf("decode results: %w", err))
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list", err)
	}

	return snapshots, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
