package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/statements-cli/internal/document"
	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/statement"
)

// extraction is one filing's engine output, or the reason there is none.
type extraction struct {
	x    *statement.Extraction
	skip string
}

// extractAll parses and extracts every retrieved document on a bounded
// worker pool. Results keep filing order regardless of completion order.
func (r *run) extractAll(ctx context.Context, docs []retrieved) ([]extraction, error) {
	out := make([]extraction, len(docs))
	workers := max(r.p.cfg.Extract.Workers, 1)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range docs {
		if docs[i].payload == nil {
			out[i].skip = docs[i].skip
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out[i] = r.extractOne(docs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: extract")
	}
	return out, nil
}

func (r *run) extractOne(doc retrieved) extraction {
	log := r.log.With(
		zap.String("accession", doc.filing.AccessionNumber),
		zap.String("report_date", doc.filing.ReportDate),
	)

	tables, err := document.Parse(doc.payload.Body, doc.payload.ContentType)
	if err != nil {
		log.Warn("pipeline: document unparseable", zap.Error(err))
		return extraction{skip: model.SkipUnparseable}
	}

	x, err := r.p.engine.Extract(r.result.Calendar, doc.filing, tables)
	if err != nil {
		log.Warn("pipeline: skipping filing", zap.Error(err))
		return extraction{skip: model.SkipInvalidFiling}
	}

	for t, reason := range x.Misses {
		log.Debug("pipeline: statement not found",
			zap.String("period", string(x.Label)),
			zap.String("statement", t.String()),
			zap.String("reason", string(reason)),
		)
	}
	if len(x.Tables) == 0 {
		log.Warn("pipeline: no statements in filing",
			zap.String("period", string(x.Label)),
			zap.Int("tables", len(tables)),
		)
		return extraction{x: x, skip: model.SkipNoStatements}
	}
	log.Info("pipeline: filing extracted",
		zap.String("period", string(x.Label)),
		zap.Int("statements", len(x.Tables)),
	)
	return extraction{x: x}
}

// outcomeFor summarizes what filing f contributed.
func outcomeFor(f model.Filing, e extraction, at time.Time) model.FilingOutcome {
	o := model.FilingOutcome{
		AccessionNumber: f.AccessionNumber,
		FormType:        f.FormType,
		ReportDate:      f.ReportDate,
		SkipReason:      e.skip,
		RecordedAt:      at,
	}
	if e.x == nil {
		return o
	}
	o.Period = string(e.x.Label)
	for _, t := range e.x.Found() {
		o.Statements = append(o.Statements, t.String())
	}
	return o
}

// IsSkipped reports whether an outcome contributed nothing.
func IsSkipped(o model.FilingOutcome) bool {
	return o.SkipReason != ""
}
