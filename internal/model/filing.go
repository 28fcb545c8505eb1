package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Form types extracted by default.
const (
	FormQuarterly = "10-Q"
	FormAnnual    = "10-K"
)

// ErrInvalidFiling marks a filing whose metadata is missing required fields.
var ErrInvalidFiling = eris.New("model: invalid filing")

// Filing is one periodic report as listed in EDGAR submissions. ReportDate is
// the fiscal period end date (YYYY-MM-DD).
type Filing struct {
	FormType        string `json:"form_type"`
	FilingDate      string `json:"filing_date"`
	ReportDate      string `json:"report_date"`
	AccessionNumber string `json:"accession_number"`
	PrimaryDocument string `json:"primary_document"`
}

// Validate reports missing required fields.
func (f Filing) Validate() error {
	var missing []string
	if strings.TrimSpace(f.ReportDate) == "" {
		missing = append(missing, "report_date")
	}
	if strings.TrimSpace(f.AccessionNumber) == "" {
		missing = append(missing, "accession_number")
	}
	if strings.TrimSpace(f.PrimaryDocument) == "" {
		missing = append(missing, "primary_document")
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrInvalidFiling, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// FilingYear returns the calendar year of the filing date, or 0 if the date
// does not parse.
func (f Filing) FilingYear() int {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(f.FilingDate))
	if err != nil {
		return 0
	}
	return d.Year()
}

// IsAmendment reports whether the form is an amended report (e.g. "10-Q/A").
func (f Filing) IsAmendment() bool {
	return strings.HasSuffix(f.FormType, "/A")
}

// FilingOutcome records what one filing contributed to a run.
type FilingOutcome struct {
	AccessionNumber string    `json:"accession_number"`
	FormType        string    `json:"form_type"`
	ReportDate      string    `json:"report_date"`
	Period          string    `json:"period,omitempty"`
	Statements      []string  `json:"statements,omitempty"` // statement types extracted
	SkipReason      string    `json:"skip_reason,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// Skip reasons recorded on FilingOutcome.
const (
	SkipInvalidFiling  = "invalid_filing"
	SkipNotRetrievable = "not_retrievable"
	SkipUnparseable    = "unparseable_document"
	SkipNoStatements   = "no_statements"
)

// CachedDocument is a retrieved filing document kept in the store so repeat
// runs over the same range do not download it again.
type CachedDocument struct {
	AccessionNumber string    `json:"accession_number"`
	URL             string    `json:"url"`
	ContentType     string    `json:"content_type"`
	Body            []byte    `json:"-"`
	FetchedAt       time.Time `json:"fetched_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}
