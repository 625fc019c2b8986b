// Package store persists a log of processed archives: one row per pipeline
// run. Recording is best-effort from the caller's point of view, but the
// store itself reports every failure.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hugo98-py/KMZtoJSON/internal/config"
)

// RunStatus is the terminal state of one processing run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run describes one processed archive.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // uploaded file name or CLI path
	Points     int       `json:"points"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence interface for the run log.
type Store interface {
	RecordRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "none":
		return NopStore{}, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// NopStore discards every write. Used when run logging is disabled.
type NopStore struct{}

func (NopStore) RecordRun(context.Context, *Run) error        { return nil }
func (NopStore) ListRuns(context.Context, int) ([]Run, error) { return nil, nil }
func (NopStore) Migrate(context.Context) error                { return nil }
func (NopStore) Close() error                                 { return nil }
