package model

import (
	"strings"
	"time"
)

// RunStatus represents the current state of an extraction run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusFetching   RunStatus = "fetching"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Company identifies the filer whose statements are extracted.
type Company struct {
	Ticker        string `json:"ticker"`
	CIK           string `json:"cik"`
	Name          string `json:"name,omitempty"`
	FiscalYearEnd string `json:"fiscal_year_end,omitempty"` // EDGAR "MMDD", e.g. "0131"
}

// PaddedCIK returns the CIK zero-padded to 10 digits as EDGAR JSON APIs expect.
func (c Company) PaddedCIK() string {
	return PadCIK(c.CIK)
}

// ArchiveCIK returns the CIK without leading zeros as used in archive paths.
func (c Company) ArchiveCIK() string {
	trimmed := strings.TrimLeft(strings.TrimSpace(c.CIK), "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// PadCIK zero-pads a CIK to 10 characters.
func PadCIK(cik string) string {
	cik = strings.TrimLeft(strings.TrimSpace(cik), "0")
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}

// DisplayName returns the company name, falling back to the ticker.
func (c Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Ticker
}

// Run represents a single extraction run for a company and year range.
type Run struct {
	ID        string     `json:"id"`
	Company   Company    `json:"company"`
	StartYear int        `json:"start_year"`
	EndYear   int        `json:"end_year"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult summarizes a finished run.
type RunResult struct {
	FilingsTotal     int            `json:"filings_total"`
	FilingsExtracted int            `json:"filings_extracted"`
	FilingsSkipped   int            `json:"filings_skipped"`
	Periods          map[string]int `json:"periods"` // statement type -> merged period count
	OutputPath       string         `json:"output_path,omitempty"`
	Error            string         `json:"error,omitempty"`
}
