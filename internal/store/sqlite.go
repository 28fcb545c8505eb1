package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/statements-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	company    TEXT NOT NULL,
	ticker     TEXT NOT NULL,
	start_year INTEGER NOT NULL,
	end_year   INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS filing_outcomes (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	accession   TEXT NOT NULL,
	form_type   TEXT NOT NULL,
	report_date TEXT NOT NULL,
	period      TEXT,
	statements  TEXT,
	skip_reason TEXT,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, accession)
);

CREATE TABLE IF NOT EXISTS document_cache (
	accession    TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	content_type TEXT,
	body         BLOB NOT NULL,
	fetched_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker);
CREATE INDEX IF NOT EXISTS idx_document_cache_expires_at ON document_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, company model.Company, startYear, endYear int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	companyJSON, err := json.Marshal(company)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal company")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, company, ticker, start_year, end_year, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(companyJSON), company.Ticker, startYear, endYear, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, result)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, result *model.RunResult) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, result)
}

func (s *SQLiteStore) finishRun(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run result %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

const runColumns = `id, company, start_year, end_year, status, result, created_at, updated_at`

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, ErrNotFound) {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, filter.Ticker)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) RecordFiling(ctx context.Context, runID string, outcome model.FilingOutcome) error {
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now().UTC()
	}
	statementsJSON, err := json.Marshal(outcome.Statements)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal statements")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filing_outcomes (run_id, accession, form_type, report_date, period, statements, skip_reason, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, accession) DO UPDATE SET
		   form_type = excluded.form_type,
		   report_date = excluded.report_date,
		   period = excluded.period,
		   statements = excluded.statements,
		   skip_reason = excluded.skip_reason,
		   recorded_at = excluded.recorded_at`,
		runID, outcome.AccessionNumber, outcome.FormType, outcome.ReportDate,
		outcome.Period, string(statementsJSON), outcome.SkipReason, outcome.RecordedAt,
	)
	return eris.Wrapf(err, "sqlite: record filing %s", outcome.AccessionNumber)
}

func (s *SQLiteStore) ListFilingOutcomes(ctx context.Context, runID string) ([]model.FilingOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT accession, form_type, report_date, period, statements, skip_reason, recorded_at
		 FROM filing_outcomes WHERE run_id = ? ORDER BY report_date, accession`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list filing outcomes %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.FilingOutcome
	for rows.Next() {
		var o model.FilingOutcome
		var period, statementsJSON, skip sql.NullString
		if err := rows.Scan(&o.AccessionNumber, &o.FormType, &o.ReportDate, &period, &statementsJSON, &skip, &o.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan filing outcome")
		}
		o.Period = period.String
		o.SkipReason = skip.String
		if statementsJSON.Valid && statementsJSON.String != "" {
			if err := json.Unmarshal([]byte(statementsJSON.String), &o.Statements); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal statements")
			}
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate filing outcomes")
}

func (s *SQLiteStore) GetCachedDocument(ctx context.Context, accession string) (*model.CachedDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT accession, url, content_type, body, fetched_at, expires_at FROM document_cache
		 WHERE accession = ? AND expires_at > ?`,
		accession, time.Now().UTC(),
	)

	var doc model.CachedDocument
	var contentType sql.NullString
	err := row.Scan(&doc.AccessionNumber, &doc.URL, &contentType, &doc.Body, &doc.FetchedAt, &doc.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached document")
	}
	doc.ContentType = contentType.String
	return &doc, nil
}

func (s *SQLiteStore) SetCachedDocument(ctx context.Context, doc model.CachedDocument, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO document_cache (accession, url, content_type, body, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (accession) DO UPDATE SET
		   url = excluded.url,
		   content_type = excluded.content_type,
		   body = excluded.body,
		   fetched_at = excluded.fetched_at,
		   expires_at = excluded.expires_at`,
		doc.AccessionNumber, doc.URL, doc.ContentType, doc.Body, now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached document")
}

func (s *SQLiteStore) DeleteExpiredDocuments(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired documents")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var companyJSON string
	var resultJSON sql.NullString

	err := row.Scan(&r.ID, &companyJSON, &r.StartYear, &r.EndYear, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(companyJSON), &r.Company); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	if resultJSON.Valid {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &r, nil
}
