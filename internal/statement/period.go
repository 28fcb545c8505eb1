package statement

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrMalformedDate reports a report date that cannot be labeled. It is fatal
// for the filing that carries it and nothing else.
var ErrMalformedDate = eris.New("statement: malformed report date")

// PeriodLabel is a fiscal quarter code such as "3Q24".
type PeriodLabel string

var periodLabelRe = regexp.MustCompile(`^([1-4])Q(\d{2})$`)

// NewPeriodLabel formats a quarter and fiscal year as a label. Only the last
// two digits of the year are kept.
func NewPeriodLabel(quarter, fiscalYear int) PeriodLabel {
	return PeriodLabel(fmt.Sprintf("%dQ%02d", quarter, ((fiscalYear%100)+100)%100))
}

// ParsePeriodLabel splits a label into its two-digit fiscal year and quarter.
func ParsePeriodLabel(label PeriodLabel) (year, quarter int, err error) {
	m := periodLabelRe.FindStringSubmatch(string(label))
	if m == nil {
		return 0, 0, eris.Errorf("statement: invalid period label %q", label)
	}
	quarter, _ = strconv.Atoi(m[1])
	year, _ = strconv.Atoi(m[2])
	return year, quarter, nil
}

// ComparePeriods orders labels by (fiscal year, quarter). Labels that do not
// parse sort after every valid label, then lexically.
func ComparePeriods(a, b PeriodLabel) int {
	ay, aq, aerr := ParsePeriodLabel(a)
	by, bq, berr := ParsePeriodLabel(b)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(string(a), string(b))
	case aerr != nil:
		return 1
	case berr != nil:
		return -1
	}
	if c := cmp.Compare(ay, by); c != 0 {
		return c
	}
	return cmp.Compare(aq, bq)
}

// SortPeriods returns the labels in chronological order without modifying
// the input.
func SortPeriods(labels []PeriodLabel) []PeriodLabel {
	out := slices.Clone(labels)
	slices.SortStableFunc(out, ComparePeriods)
	return out
}

// Calendar maps report-date months onto fiscal quarters for one company.
// Quarters are centered on the nominal quarter-end month with one month of
// tolerance either side, which absorbs 52/53-week fiscal years.
//
// The fiscal year in a label is the calendar year in which that fiscal year
// began, so labels from one company always sort chronologically.
type Calendar struct {
	// YearEndMonth is the month (1-12) the fiscal year ends in.
	YearEndMonth int `yaml:"year_end_month" mapstructure:"year_end_month"`
}

// DefaultCalendar is a fiscal year ending in January. It yields the quarter
// table {1:4, 2:4, 3:1, 4:1, 5:1, 6:2, 7:2, 8:2, 9:3, 10:3, 11:3, 12:4} and
// rolls January and February report dates back one fiscal year.
func DefaultCalendar() Calendar {
	return Calendar{YearEndMonth: 1}
}

// CalendarForYearEnd returns the calendar for a fiscal year ending in month.
func CalendarForYearEnd(month int) (Calendar, error) {
	if month < 1 || month > 12 {
		return Calendar{}, eris.Errorf("statement: fiscal year end month %d out of range", month)
	}
	return Calendar{YearEndMonth: month}, nil
}

// ParseFiscalYearEnd reads EDGAR's "MMDD" fiscalYearEnd field (e.g. "0131").
func ParseFiscalYearEnd(mmdd string) (Calendar, error) {
	mmdd = strings.TrimSpace(mmdd)
	if len(mmdd) != 4 {
		return Calendar{}, eris.Errorf("statement: invalid fiscal year end %q", mmdd)
	}
	month, err := strconv.Atoi(mmdd[:2])
	if err != nil {
		return Calendar{}, eris.Wrapf(err, "statement: invalid fiscal year end %q", mmdd)
	}
	return CalendarForYearEnd(month)
}

func (c Calendar) yearEnd() int {
	if c.YearEndMonth < 1 || c.YearEndMonth > 12 {
		return DefaultCalendar().YearEndMonth
	}
	return c.YearEndMonth
}

// offset is the number of months since the fiscal year-end month, 0..11.
func (c Calendar) offset(month int) int {
	return (month - c.yearEnd() + 12) % 12
}

// Quarter returns the fiscal quarter (1-4) for a report-date month.
func (c Calendar) Quarter(month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, eris.Wrapf(ErrMalformedDate, "month %d", month)
	}
	q := (c.offset(month) + 1) / 3
	if q == 0 {
		q = 4
	}
	return q, nil
}

// FiscalYear returns the fiscal year a report date in (year, month) belongs to.
func (c Calendar) FiscalYear(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, eris.Wrapf(ErrMalformedDate, "month %d", month)
	}
	off := c.offset(month)
	sinceStart := off - 1
	if off < 2 {
		// Year-end month and the month after it close the previous fiscal year.
		sinceStart = off + 11
	}
	abs := year*12 + (month - 1) - sinceStart
	return abs / 12, nil
}

// LabelFor labels a report period ending in (year, month).
func (c Calendar) LabelFor(year, month int) (PeriodLabel, error) {
	q, err := c.Quarter(month)
	if err != nil {
		return "", err
	}
	fy, err := c.FiscalYear(year, month)
	if err != nil {
		return "", err
	}
	return NewPeriodLabel(q, fy), nil
}

// Label labels an ISO report date ("2023-01-28" → "4Q22" on the default
// calendar).
func (c Calendar) Label(reportDate string) (PeriodLabel, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(reportDate))
	if err != nil {
		return "", eris.Wrapf(ErrMalformedDate, "%q", reportDate)
	}
	return c.LabelFor(d.Year(), int(d.Month()))
}
