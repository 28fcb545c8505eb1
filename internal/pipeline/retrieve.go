package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/model"
)

// retrieved is one filing's document, or the reason there is none.
type retrieved struct {
	filing    model.Filing
	payload   *fetcher.Payload
	fromCache bool
	skip      string
}

// retrieve downloads documents sequentially in batches, pausing between
// batches and after each download. Cached documents skip both the download
// and the delay. Only cancellation is returned as an error.
func (r *run) retrieve(ctx context.Context, company model.Company, filings []model.Filing) ([]retrieved, error) {
	cfg := r.p.cfg.Extract
	batch := max(cfg.BatchSize, 1)
	out := make([]retrieved, len(filings))

	for start := 0; start < len(filings); start += batch {
		end := min(start+batch, len(filings))
		r.log.Info("pipeline: retrieving batch",
			zap.Int("from", start+1),
			zap.Int("to", end),
			zap.Int("of", len(filings)),
		)
		for i := start; i < end; i++ {
			out[i] = r.retrieveOne(ctx, company, filings[i])
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "pipeline: retrieve")
			}
			if out[i].payload != nil && !out[i].fromCache {
				if err := sleep(ctx, cfg.DocumentDelay); err != nil {
					return nil, eris.Wrap(err, "pipeline: retrieve")
				}
			}
		}
		if end < len(filings) {
			if err := sleep(ctx, cfg.BatchPause); err != nil {
				return nil, eris.Wrap(err, "pipeline: retrieve")
			}
		}
	}
	return out, nil
}

func (r *run) retrieveOne(ctx context.Context, company model.Company, f model.Filing) retrieved {
	doc := retrieved{filing: f}
	log := r.log.With(
		zap.String("accession", f.AccessionNumber),
		zap.String("report_date", f.ReportDate),
	)

	if err := f.Validate(); err != nil {
		log.Warn("pipeline: skipping invalid filing", zap.Error(err))
		doc.skip = model.SkipInvalidFiling
		return doc
	}

	if cached := r.cachedDocument(ctx, f); cached != nil {
		log.Debug("pipeline: document cache hit")
		doc.payload = cached
		doc.fromCache = true
		return doc
	}

	payload, err := r.p.source.Document(ctx, company, f)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("pipeline: document not retrievable", zap.Error(err))
		}
		doc.skip = model.SkipNotRetrievable
		return doc
	}
	log.Debug("pipeline: document retrieved", zap.Int("bytes", len(payload.Body)))
	doc.payload = payload
	r.cacheDocument(ctx, f, payload)
	return doc
}

func (r *run) cacheTTL() time.Duration {
	return time.Duration(r.p.cfg.Extract.CacheTTLHours) * time.Hour
}

func (r *run) cachedDocument(ctx context.Context, f model.Filing) *fetcher.Payload {
	if r.p.store == nil || r.cacheTTL() <= 0 {
		return nil
	}
	cached, err := r.p.store.GetCachedDocument(ctx, f.AccessionNumber)
	if err != nil {
		r.log.Warn("pipeline: document cache lookup failed",
			zap.String("accession", f.AccessionNumber),
			zap.Error(err),
		)
		return nil
	}
	if cached == nil {
		return nil
	}
	return &fetcher.Payload{URL: cached.URL, ContentType: cached.ContentType, Body: cached.Body}
}

func (r *run) cacheDocument(ctx context.Context, f model.Filing, p *fetcher.Payload) {
	if r.p.store == nil || r.cacheTTL() <= 0 {
		return
	}
	err := r.p.store.SetCachedDocument(ctx, model.CachedDocument{
		AccessionNumber: f.AccessionNumber,
		URL:             p.URL,
		ContentType:     p.ContentType,
		Body:            p.Body,
	}, r.cacheTTL())
	if err != nil {
		r.log.Warn("pipeline: document cache write failed",
			zap.String("accession", f.AccessionNumber),
			zap.Error(err),
		)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
