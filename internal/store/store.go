// Package store persists analysis runs as dated, append-only snapshots.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// ErrNotFound is returned by LoadLatest when nothing has been stored yet
var ErrNotFound = errors.New("no analysis results stored")

// Store is an append-only sink of analysis snapshots.
// Every failure other than ErrNotFound is a *model.PersistenceError.
type Store interface {
	// Save appends one snapshot of results for the requested date
	Save(ctx context.Context, results *model.AnalysisResults, date string) error

	// LoadLatest returns the snapshot with the greatest date.
	// Among snapshots of the same date the most recently written wins.
	LoadLatest(ctx context.Context) (*model.AnalysisResults, error)

	// List returns every snapshot ordered by date, then by write order
	List(ctx context.Context) ([]model.Snapshot, error)

	Close() error
}

// New opens the store selected by cfg
func New(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch cfg.Type {
	case model.StoreSQLite, "":
		return OpenSQLite(cfg.SQLitePath)
	case model.StorePostgres:
		return OpenPostgres(ctx, cfg.PostgresURL)
	case model.StoreS3:
		return OpenS3(ctx, cfg)
	case model.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

// newSnapshot stamps results with an identity and write time
func newSnapshot(results *model.AnalysisResults, date string) model.Snapshot {
	return model.Snapshot{
		ID:        uuid.NewString(),
		Date:      date,
		CreatedAt: time.Now().UTC(),
		Results:   *results,
	}
}

func persistErr(op string, err error) error {
	return &model.PersistenceError{Op: op, Err: err}
}
