// Package pipeline runs an extraction for one company: it discovers filings,
// retrieves and parses their documents, extracts statements in parallel,
// merges them in filing order and writes the workbook.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statements-cli/internal/config"
	"github.com/sells-group/statements-cli/internal/edgar"
	"github.com/sells-group/statements-cli/internal/export"
	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/statement"
	"github.com/sells-group/statements-cli/internal/store"
)

// FilingSource lists a company's filings and retrieves their documents.
// *edgar.Client implements it.
type FilingSource interface {
	ListFilings(ctx context.Context, company model.Company, q edgar.FilingQuery) (model.Company, []model.Filing, error)
	Document(ctx context.Context, company model.Company, f model.Filing) (*fetcher.Payload, error)
}

// Request describes one extraction.
type Request struct {
	Ticker     string // ticker or CIK
	StartYear  int
	EndYear    int
	OutputPath string // defaults to export.dir/<ticker>_quarterly_<start>_<end>.xlsx
}

// Result is everything a run produced.
type Result struct {
	RunID      string
	Company    model.Company
	Calendar   statement.Calendar
	Outcomes   []model.FilingOutcome
	Statements map[statement.Type]*statement.MergedStatement
	Summary    model.RunResult
}

// Pipeline orchestrates an extraction run.
type Pipeline struct {
	cfg    *config.Config
	store  store.Store
	source FilingSource
	lookup edgar.TickerLookup
	engine *statement.Engine
	now    func() time.Time
}

// New creates a Pipeline. st may be nil, in which case runs are not recorded
// and documents are not cached.
func New(cfg *config.Config, st store.Store, source FilingSource, lookup edgar.TickerLookup) (*Pipeline, error) {
	keywords, err := cfg.StatementKeywords()
	if err != nil {
		return nil, err
	}
	classifier := statement.NewKeywordClassifier(keywords)
	classifier.UseCaption = cfg.Extract.MatchCaption

	return &Pipeline{
		cfg:    cfg,
		store:  st,
		source: source,
		lookup: lookup,
		engine: statement.NewEngine(classifier, statement.FirstNumericColumn{}),
		now:    time.Now,
	}, nil
}

// Run executes the full extraction for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.StartYear <= 0 || req.EndYear < req.StartYear {
		return nil, eris.Errorf("pipeline: invalid year range %d-%d", req.StartYear, req.EndYear)
	}

	company, err := edgar.Resolve(ctx, p.lookup, req.Ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: resolve %s", req.Ticker)
	}

	log := zap.L().With(zap.String("ticker", company.Ticker), zap.String("cik", company.CIK))
	log.Info("pipeline: starting extraction",
		zap.Int("start_year", req.StartYear),
		zap.Int("end_year", req.EndYear),
	)

	result := &Result{Company: company}
	r := &run{p: p, log: log, result: result}

	if p.store != nil {
		rec, err := p.store.CreateRun(ctx, company, req.StartYear, req.EndYear)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		result.RunID = rec.ID
		log = log.With(zap.String("run_id", rec.ID))
		r.log = log
	}

	if err := r.execute(ctx, req); err != nil {
		r.fail(ctx, err)
		return result, err
	}
	r.complete(ctx)
	return result, nil
}

// run carries the state of one Pipeline.Run call.
type run struct {
	p      *Pipeline
	log    *zap.Logger
	result *Result
}

func (r *run) execute(ctx context.Context, req Request) error {
	p := r.p
	r.setStatus(ctx, model.RunStatusFetching)

	query := edgar.FilingQuery{
		Forms:             p.cfg.Extract.Forms,
		StartYear:         req.StartYear,
		EndYear:           req.EndYear,
		IncludeAmendments: p.cfg.Extract.IncludeAmendments,
	}
	company, filings, err := p.source.ListFilings(ctx, r.result.Company, query)
	if err != nil {
		return eris.Wrap(err, "pipeline: list filings")
	}
	r.result.Company = company
	r.result.Calendar = ResolveCalendar(p.cfg, company)
	r.result.Summary.FilingsTotal = len(filings)
	r.log.Info("pipeline: filings selected",
		zap.String("company", company.DisplayName()),
		zap.Int("filings", len(filings)),
		zap.Int("fiscal_year_end_month", r.result.Calendar.YearEndMonth),
	)
	if len(filings) == 0 {
		r.log.Warn("pipeline: no filings in range")
	}

	docs, err := r.retrieve(ctx, company, filings)
	if err != nil {
		return err
	}

	r.setStatus(ctx, model.RunStatusExtracting)
	extractions, err := r.extractAll(ctx, docs)
	if err != nil {
		return err
	}

	acc := statement.NewAccumulator()
	outcomes := make([]model.FilingOutcome, len(filings))
	for i, f := range filings {
		outcomes[i] = outcomeFor(f, extractions[i], p.now().UTC())
		if extractions[i].x != nil && len(extractions[i].x.Tables) > 0 {
			acc.Add(extractions[i].x)
		}
	}
	r.result.Outcomes = outcomes
	r.recordOutcomes(ctx, outcomes)

	r.result.Statements = acc.Merge()
	r.result.Summary.Periods = make(map[string]int)
	for _, t := range statement.Types {
		m, ok := r.result.Statements[t]
		if !ok {
			r.log.Warn("pipeline: no periods extracted", zap.String("statement", t.String()))
			continue
		}
		r.result.Summary.Periods[t.String()] = len(m.Periods)
	}
	for _, o := range outcomes {
		if IsSkipped(o) {
			r.result.Summary.FilingsSkipped++
		} else {
			r.result.Summary.FilingsExtracted++
		}
	}

	return r.write(req)
}

func (r *run) write(req Request) error {
	path := req.OutputPath
	if path == "" {
		path = filepath.Join(r.p.cfg.Export.Dir,
			export.DefaultFilename(r.result.Company.Ticker, req.StartYear, req.EndYear))
	}
	err := export.Write(path, export.Workbook{
		Company:     r.result.Company,
		Statements:  r.result.Statements,
		ExtractedAt: r.p.now(),
	})
	if err != nil {
		return eris.Wrap(err, "pipeline: write workbook")
	}
	r.result.Summary.OutputPath = path
	r.log.Info("pipeline: extraction complete",
		zap.String("output", path),
		zap.Int("filings_extracted", r.result.Summary.FilingsExtracted),
		zap.Int("filings_skipped", r.result.Summary.FilingsSkipped),
	)
	return nil
}

func (r *run) setStatus(ctx context.Context, status model.RunStatus) {
	if r.p.store == nil || r.result.RunID == "" {
		return
	}
	if err := r.p.store.UpdateRunStatus(ctx, r.result.RunID, status); err != nil {
		r.log.Warn("pipeline: failed to update status", zap.Error(err))
	}
}

func (r *run) complete(ctx context.Context) {
	if r.p.store == nil || r.result.RunID == "" {
		return
	}
	if err := r.p.store.CompleteRun(ctx, r.result.RunID, &r.result.Summary); err != nil {
		r.log.Warn("pipeline: failed to complete run", zap.Error(err))
	}
}

func (r *run) fail(ctx context.Context, cause error) {
	r.result.Summary.Error = cause.Error()
	level := r.log.Error
	if errors.Is(cause, export.ErrNoStatements) {
		level = r.log.Warn
	}
	level("pipeline: extraction failed", zap.Error(cause))

	if r.p.store == nil || r.result.RunID == "" {
		return
	}
	if err := r.p.store.FailRun(context.WithoutCancel(ctx), r.result.RunID, &r.result.Summary); err != nil {
		r.log.Warn("pipeline: failed to mark run failed", zap.Error(err))
	}
}

func (r *run) recordOutcomes(ctx context.Context, outcomes []model.FilingOutcome) {
	if r.p.store == nil || r.result.RunID == "" {
		return
	}
	for _, o := range outcomes {
		if err := r.p.store.RecordFiling(ctx, r.result.RunID, o); err != nil {
			r.log.Warn("pipeline: failed to record filing",
				zap.String("accession", o.AccessionNumber),
				zap.Error(err),
			)
		}
	}
}

// ResolveCalendar picks the fiscal calendar for company: a configured
// calendar first (by ticker, then by padded CIK), then the fiscal year end
// EDGAR reports, then the default.
func ResolveCalendar(cfg *config.Config, company model.Company) statement.Calendar {
	if cal, ok := cfg.Calendar(company.Ticker); ok && company.Ticker != "" {
		return cal
	}
	if cal, ok := cfg.Calendar(company.PaddedCIK()); ok && company.CIK != "" {
		return cal
	}
	if company.FiscalYearEnd != "" {
		cal, err := statement.ParseFiscalYearEnd(company.FiscalYearEnd)
		if err == nil {
			return cal
		}
		zap.L().Warn("pipeline: ignoring fiscal year end",
			zap.String("ticker", company.Ticker),
			zap.String("fiscal_year_end", company.FiscalYearEnd),
			zap.Error(err),
		)
	}
	zap.L().Warn("pipeline: no fiscal calendar, using default",
		zap.String("ticker", company.Ticker),
	)
	return statement.DefaultCalendar()
}
