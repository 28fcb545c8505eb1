package edgar

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/model"
)

// ErrTickerNotFound is returned when no lookup knows the ticker.
var ErrTickerNotFound = eris.New("edgar: ticker not found")

// DefaultTickersURL is SEC's ticker to CIK map.
const DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"

// TickerLookup resolves a ticker symbol to a company.
type TickerLookup interface {
	Lookup(ctx context.Context, ticker string) (model.Company, error)
}

// NormalizeTicker upper-cases a ticker and uses EDGAR's class separator
// ("BRK.B" becomes "BRK-B").
func NormalizeTicker(ticker string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ticker)), ".", "-")
}

// IsCIK reports whether s is a bare numeric CIK rather than a ticker.
func IsCIK(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 10 {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// StaticLookup resolves tickers from a fixed ticker → CIK map.
type StaticLookup map[string]string

// Lookup implements TickerLookup.
func (s StaticLookup) Lookup(_ context.Context, ticker string) (model.Company, error) {
	t := NormalizeTicker(ticker)
	for k, cik := range s {
		if NormalizeTicker(k) == t {
			return model.Company{Ticker: t, CIK: model.PadCIK(cik)}, nil
		}
	}
	return model.Company{}, eris.Wrapf(ErrTickerNotFound, "%s", t)
}

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// SECLookup resolves tickers from SEC's company_tickers.json, downloaded
// once on first use. A failed download is retried on the next lookup.
type SECLookup struct {
	f   fetcher.Fetcher
	url string

	mu       sync.Mutex
	byTicker map[string]model.Company
}

// NewSECLookup creates an SECLookup. An empty url uses DefaultTickersURL.
func NewSECLookup(f fetcher.Fetcher, url string) *SECLookup {
	if url == "" {
		url = DefaultTickersURL
	}
	return &SECLookup{f: f, url: url}
}

func (s *SECLookup) load(ctx context.Context) (map[string]model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byTicker != nil {
		return s.byTicker, nil
	}

	entries, err := fetcher.FetchJSON[map[string]tickerEntry](ctx, s.f, s.url)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: load ticker map")
	}
	m := make(map[string]model.Company, len(*entries))
	for _, e := range *entries {
		t := NormalizeTicker(e.Ticker)
		if t == "" || e.CIK <= 0 {
			continue
		}
		m[t] = model.Company{
			Ticker: t,
			CIK:    model.PadCIK(strconv.FormatInt(e.CIK, 10)),
			Name:   e.Title,
		}
	}
	s.byTicker = m
	return m, nil
}

// Lookup implements TickerLookup.
func (s *SECLookup) Lookup(ctx context.Context, ticker string) (model.Company, error) {
	m, err := s.load(ctx)
	if err != nil {
		return model.Company{}, err
	}
	t := NormalizeTicker(ticker)
	if c, ok := m[t]; ok {
		return c, nil
	}
	return model.Company{}, eris.Wrapf(ErrTickerNotFound, "%s", t)
}

// ChainLookup tries each lookup in order and returns the first hit. A
// lookup that fails for any reason other than ErrTickerNotFound stops the
// chain only when no later lookup succeeds.
type ChainLookup []TickerLookup

// Lookup implements TickerLookup.
func (c ChainLookup) Lookup(ctx context.Context, ticker string) (model.Company, error) {
	var firstErr error
	for _, l := range c {
		company, err := l.Lookup(ctx, ticker)
		if err == nil {
			return company, nil
		}
		if !errors.Is(err, ErrTickerNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return model.Company{}, firstErr
	}
	return model.Company{}, eris.Wrapf(ErrTickerNotFound, "%s", NormalizeTicker(ticker))
}

// Resolve turns a ticker or bare CIK into a company. A CIK bypasses lookup.
func Resolve(ctx context.Context, lookup TickerLookup, tickerOrCIK string) (model.Company, error) {
	if IsCIK(tickerOrCIK) {
		return model.Company{CIK: model.PadCIK(tickerOrCIK)}, nil
	}
	return lookup.Lookup(ctx, tickerOrCIK)
}
