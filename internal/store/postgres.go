package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// PostgresStore keeps snapshots as JSONB documents
type PostgresStore struct {
	db *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and creates the snapshots table if needed
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, persistErr("open", fmt.Errorf("create pool: %w", err))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, persistErr("open", fmt.Errorf("ping database: %w", err))
	}

	s := &PostgresStore{db: pool}
	if err := s.createTables(ctx); err != nil {
		pool.Close()
		return nil, persistErr("open", fmt.Errorf("create tables: %w", err))
	}

	return s, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS ecfr_snapshots (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			date DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			results JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_ecfr_snapshots_date ON ecfr_snapshots (date DESC, seq DESC);`

	_, err := s.db.Exec(ctx, schema)
	return err
}

// Save appends a snapshot
func (s *PostgresStore) Save(ctx context.Context, results *model.AnalysisResults, date string) error {
	doc, err := json.Marshal(results)
	if err != nil {
		return persistErr("save", fmt.Errorf("marshal results: %w", err))
	}

	snap := newSnapshot(results, date)

	query := `
		INSERT INTO ecfr_snapshots (id, date, created_at, results)
		VALUES ($1, $2::date, $3, $4)`

	if _, err := s.db.Exec(ctx, query, snap.ID, snap.Date, snap.CreatedAt, doc); err != nil {
		return persistErr("save", fmt.Errorf("insert snapshot: %w", err))
	}
	return nil
}

// LoadLatest returns the most recently dated snapshot
func (s *PostgresStore) LoadLatest(ctx context.Context) (*model.AnalysisResults, error) {
	query := `
		SELECT results
		FROM ecfr_snapshots
		ORDER BY date DESC, seq DESC
		LIMIT 1`

	var doc []byte
	err := s.db.QueryRow(ctx, query).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr("load", fmt.Errorf("query latest: %w", err))
	}

	var results model.AnalysisResults
	if err := json.Unmarshal(doc, &results); err != nil {
		return nil, persistErr("load", fmt.Errorf("decode results: %w", err))
	}
	return &results, nil
}

// List returns all snapshots ordered by date, then write order
func (s *PostgresStore) List(ctx context.Context) ([]model.Snapshot, error) {
	query := `
		SELECT id::text, to_char(date, 'YYYY-MM-DD'), created_at, results
		FROM ecfr_snapshots
		ORDER BY date ASC, seq ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, persistErr("list", fmt.Errorf("query snapshots: %w", err))
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		var (
			snap model.Snapshot
			doc  []byte
		)
		if err := rows.Scan(&snap.ID, &snap.Date, &snap.CreatedAt, &doc); err != nil {
			return nil, persistErr("list", fmt.Errorf("scan snapshot: %w", err))
		}
		if err := json.Unmarshal(doc, &snap.Results); err != nil {
			return nil, persistErr("list", fmt.Errorf("decode results: %w", err))
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list", err)
	}

	return snapshots, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
