// Package edgar lists a filer's periodic reports and retrieves their primary
// documents from SEC EDGAR.
package edgar

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/model"
)

// ErrNotRetrievable marks a filing whose primary document could not be
// downloaded. The filing is skipped, not the run.
var ErrNotRetrievable = eris.New("edgar: document not retrievable")

// Default EDGAR endpoints.
const (
	DefaultSubmissionsURL = "https://data.sec.gov/submissions"
	DefaultArchivesURL    = "https://www.sec.gov/Archives/edgar/data"
)

// ClientOptions overrides EDGAR endpoints.
type ClientOptions struct {
	SubmissionsURL string
	ArchivesURL    string
}

// Client reads EDGAR submissions and archives through a Fetcher.
type Client struct {
	f    fetcher.Fetcher
	opts ClientOptions
}

// NewClient creates a Client. Empty options use the public EDGAR hosts.
func NewClient(f fetcher.Fetcher, opts ClientOptions) *Client {
	if opts.SubmissionsURL == "" {
		opts.SubmissionsURL = DefaultSubmissionsURL
	}
	if opts.ArchivesURL == "" {
		opts.ArchivesURL = DefaultArchivesURL
	}
	opts.SubmissionsURL = strings.TrimRight(opts.SubmissionsURL, "/")
	opts.ArchivesURL = strings.TrimRight(opts.ArchivesURL, "/")
	return &Client{f: f, opts: opts}
}

// submissionsJSON is data.sec.gov/submissions/CIK##########.json.
type submissionsJSON struct {
	CIK           string   `json:"cik"`
	Name          string   `json:"name"`
	Tickers       []string `json:"tickers"`
	FiscalYearEnd string   `json:"fiscalYearEnd"`
	Filings       struct {
		Recent filingColumns  `json:"recent"`
		Files  []filingsShard `json:"files"`
	} `json:"filings"`
}

// filingColumns holds filings as parallel arrays, one entry per filing.
type filingColumns struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// filingsShard points at an older page of filings.
type filingsShard struct {
	Name        string `json:"name"`
	FilingCount int    `json:"filingCount"`
	FilingFrom  string `json:"filingFrom"`
	FilingTo    string `json:"filingTo"`
}

func (c filingColumns) filings() []model.Filing {
	out := make([]model.Filing, 0, len(c.AccessionNumber))
	for i, acc := range c.AccessionNumber {
		out = append(out, model.Filing{
			AccessionNumber: acc,
			FilingDate:      safeIndex(c.FilingDate, i),
			ReportDate:      safeIndex(c.ReportDate, i),
			FormType:        safeIndex(c.Form, i),
			PrimaryDocument: safeIndex(c.PrimaryDocument, i),
		})
	}
	return out
}

// safeIndex returns the string at index i, or "" if out of bounds.
func safeIndex(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

// FilingQuery selects filings by form and filing year.
type FilingQuery struct {
	Forms             []string
	StartYear         int
	EndYear           int
	IncludeAmendments bool
}

// Matches reports whether f satisfies the query.
func (q FilingQuery) Matches(f model.Filing) bool {
	form := f.FormType
	if f.IsAmendment() {
		if !q.IncludeAmendments {
			return false
		}
		form = strings.TrimSuffix(form, "/A")
	}
	if len(q.Forms) > 0 && !slices.Contains(q.Forms, form) {
		return false
	}
	year := f.FilingYear()
	if year == 0 {
		return false
	}
	if q.StartYear > 0 && year < q.StartYear {
		return false
	}
	if q.EndYear > 0 && year > q.EndYear {
		return false
	}
	return true
}

// SelectFilings filters filings by q and orders them by report date, oldest
// first. Filings with equal report dates keep filing-date order so a later
// amendment replaces its original downstream.
func SelectFilings(filings []model.Filing, q FilingQuery) []model.Filing {
	var out []model.Filing
	seen := make(map[string]bool)
	for _, f := range filings {
		if !q.Matches(f) || seen[f.AccessionNumber] {
			continue
		}
		seen[f.AccessionNumber] = true
		out = append(out, f)
	}
	slices.SortStableFunc(out, func(a, b model.Filing) int {
		if c := cmp.Compare(a.ReportDate, b.ReportDate); c != 0 {
			return c
		}
		return cmp.Compare(a.FilingDate, b.FilingDate)
	})
	return out
}

// Submissions fetches the filer's metadata and every filing EDGAR lists for
// it. Older pages are fetched only when they may hold filings from
// sinceYear onward; sinceYear 0 fetches none.
func (c *Client) Submissions(ctx context.Context, cik string, sinceYear int) (model.Company, []model.Filing, error) {
	padded := model.PadCIK(cik)
	url := fmt.Sprintf("%s/CIK%s.json", c.opts.SubmissionsURL, padded)

	sub, err := fetcher.FetchJSON[submissionsJSON](ctx, c.f, url)
	if err != nil {
		return model.Company{}, nil, eris.Wrapf(err, "edgar: submissions for CIK %s", padded)
	}

	company := model.Company{
		CIK:           padded,
		Name:          sub.Name,
		FiscalYearEnd: sub.FiscalYearEnd,
	}
	if len(sub.Tickers) > 0 {
		company.Ticker = sub.Tickers[0]
	}

	filings := sub.Filings.Recent.filings()
	for _, shard := range sub.Filings.Files {
		if sinceYear == 0 || !shardReaches(shard, sinceYear) {
			continue
		}
		older, err := fetcher.FetchJSON[filingColumns](ctx, c.f, c.opts.SubmissionsURL+"/"+shard.Name)
		if err != nil {
			return company, nil, eris.Wrapf(err, "edgar: submissions page %s", shard.Name)
		}
		zap.L().Debug("edgar: read older filings page",
			zap.String("cik", padded),
			zap.String("page", shard.Name),
			zap.Int("filings", len(older.AccessionNumber)),
		)
		filings = append(filings, older.filings()...)
	}
	return company, filings, nil
}

// shardReaches reports whether a page's filing range ends in or after year.
func shardReaches(s filingsShard, year int) bool {
	if len(s.FilingTo) < 4 {
		return true
	}
	var to int
	if _, err := fmt.Sscanf(s.FilingTo[:4], "%d", &to); err != nil {
		return true
	}
	return to >= year
}

// ListFilings returns the company, completed with EDGAR's name and fiscal
// year end, and its filings matching q in report-date order.
func (c *Client) ListFilings(ctx context.Context, company model.Company, q FilingQuery) (model.Company, []model.Filing, error) {
	meta, all, err := c.Submissions(ctx, company.CIK, q.StartYear)
	if err != nil {
		return company, nil, err
	}
	if company.Name == "" {
		company.Name = meta.Name
	}
	if company.FiscalYearEnd == "" {
		company.FiscalYearEnd = meta.FiscalYearEnd
	}
	if company.Ticker == "" {
		company.Ticker = meta.Ticker
	}
	company.CIK = meta.CIK
	return company, SelectFilings(all, q), nil
}

// DocumentURL is the archive location of a filing's primary document.
func (c *Client) DocumentURL(company model.Company, f model.Filing) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		c.opts.ArchivesURL,
		company.ArchiveCIK(),
		strings.ReplaceAll(f.AccessionNumber, "-", ""),
		f.PrimaryDocument,
	)
}

// Document downloads a filing's primary document. Any failure other than
// cancellation is reported as ErrNotRetrievable.
func (c *Client) Document(ctx context.Context, company model.Company, f model.Filing) (*fetcher.Payload, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	url := c.DocumentURL(company, f)
	p, err := c.f.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "edgar: document")
		}
		reason := "download failed"
		if errors.Is(err, fetcher.ErrNotFound) {
			reason = "not found"
		}
		return nil, eris.Wrapf(ErrNotRetrievable, "%s %s: %s: %v", f.AccessionNumber, url, reason, err)
	}
	return p, nil
}
