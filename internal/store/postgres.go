package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/statements-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"update_run_status":   `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_cached_document": `SELECT accession, url, content_type, body, fetched_at, expires_at FROM document_cache WHERE accession = $1 AND expires_at > now()`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = min(minConns, maxConns)
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company    JSONB NOT NULL,
	ticker     TEXT NOT NULL,
	start_year INTEGER NOT NULL,
	end_year   INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS filing_outcomes (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	accession   TEXT NOT NULL,
	form_type   TEXT NOT NULL,
	report_date TEXT NOT NULL,
	period      TEXT,
	statements  JSONB,
	skip_reason TEXT,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, accession)
);

CREATE TABLE IF NOT EXISTS document_cache (
	accession    TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	content_type TEXT,
	body         BYTEA NOT NULL,
	fetched_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker);
CREATE INDEX IF NOT EXISTS idx_document_cache_expires_at ON document_cache(expires_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, company model.Company, startYear, endYear int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	companyJSON, err := json.Marshal(company)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal company")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, company, ticker, start_year, end_year, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, companyJSON, company.Ticker, startYear, endYear, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Company:   company,
		StartYear: startYear,
		EndYear:   endYear,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, result)
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, result *model.RunResult) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, result)
}

func (s *PostgresStore) finishRun(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run result %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = $1`, runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Ticker != "" {
		query += fmt.Sprintf(` AND ticker = $%d`, argIdx)
		args = append(args, filter.Ticker)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) RecordFiling(ctx context.Context, runID string, outcome model.FilingOutcome) error {
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now().UTC()
	}
	statementsJSON, err := json.Marshal(outcome.Statements)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal statements")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO filing_outcomes (run_id, accession, form_type, report_date, period, statements, skip_reason, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (run_id, accession) DO UPDATE SET
		   form_type = EXCLUDED.form_type,
		   report_date = EXCLUDED.report_date,
		   period = EXCLUDED.period,
		   statements = EXCLUDED.statements,
		   skip_reason = EXCLUDED.skip_reason,
		   recorded_at = EXCLUDED.recorded_at`,
		runID, outcome.AccessionNumber, outcome.FormType, outcome.ReportDate,
		outcome.Period, statementsJSON, outcome.SkipReason, outcome.RecordedAt,
	)
	return eris.Wrapf(err, "postgres: record filing %s", outcome.AccessionNumber)
}

func (s *PostgresStore) ListFilingOutcomes(ctx context.Context, runID string) ([]model.FilingOutcome, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT accession, form_type, report_date, period, statements, skip_reason, recorded_at
		 FROM filing_outcomes WHERE run_id = $1 ORDER BY report_date, accession`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list filing outcomes %s", runID)
	}
	defer rows.Close()

	var out []model.FilingOutcome
	for rows.Next() {
		var o model.FilingOutcome
		var period, skip *string
		var statementsJSON []byte
		if err := rows.Scan(&o.AccessionNumber, &o.FormType, &o.ReportDate, &period, &statementsJSON, &skip, &o.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan filing outcome")
		}
		if period != nil {
			o.Period = *period
		}
		if skip != nil {
			o.SkipReason = *skip
		}
		if len(statementsJSON) > 0 {
			if err := json.Unmarshal(statementsJSON, &o.Statements); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal statements")
			}
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate filing outcomes")
}

func (s *PostgresStore) GetCachedDocument(ctx context.Context, accession string) (*model.CachedDocument, error) {
	var doc model.CachedDocument
	var contentType *string
	err := s.pool.QueryRow(ctx,
		`SELECT accession, url, content_type, body, fetched_at, expires_at FROM document_cache
		 WHERE accession = $1 AND expires_at > now()`,
		accession,
	).Scan(&doc.AccessionNumber, &doc.URL, &contentType, &doc.Body, &doc.FetchedAt, &doc.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached document")
	}
	if contentType != nil {
		doc.ContentType = *contentType
	}
	return &doc, nil
}

func (s *PostgresStore) SetCachedDocument(ctx context.Context, doc model.CachedDocument, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO document_cache (accession, url, content_type, body, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (accession) DO UPDATE SET
		   url = EXCLUDED.url,
		   content_type = EXCLUDED.content_type,
		   body = EXCLUDED.body,
		   fetched_at = EXCLUDED.fetched_at,
		   expires_at = EXCLUDED.expires_at`,
		doc.AccessionNumber, doc.URL, doc.ContentType, doc.Body, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached document")
}

func (s *PostgresStore) DeleteExpiredDocuments(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM document_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired documents")
	}
	return int(tag.RowsAffected()), nil
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var companyJSON []byte
	var resultNull *[]byte

	if err := row.Scan(&r.ID, &companyJSON, &r.StartYear, &r.EndYear, &r.Status, &resultNull, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(companyJSON, &r.Company); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal company")
	}
	if resultNull != nil {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal(*resultNull, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}
