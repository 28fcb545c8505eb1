package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statements-cli/internal/model"
)

// ErrNotFound is returned when an update or lookup targets a missing row.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Ticker string          `json:"ticker,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for extraction runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, company model.Company, startYear, endYear int) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Filing outcomes
	RecordFiling(ctx context.Context, runID string, outcome model.FilingOutcome) error
	ListFilingOutcomes(ctx context.Context, runID string) ([]model.FilingOutcome, error)

	// Document cache
	GetCachedDocument(ctx context.Context, accession string) (*model.CachedDocument, error)
	SetCachedDocument(ctx context.Context, doc model.CachedDocument, ttl time.Duration) error
	DeleteExpiredDocuments(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	Driver      string
	DatabaseURL string
	Pool        *PoolConfig
}

// Open connects to the configured backend and applies migrations.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		st  Store
		err error
	)
	switch opts.Driver {
	case "", "sqlite":
		st, err = NewSQLite(opts.DatabaseURL)
	case "postgres":
		st, err = NewPostgres(ctx, opts.DatabaseURL, opts.Pool)
	default:
		return nil, eris.Errorf("store: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
