package statement

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/statements-cli/internal/model"
)

// MissReason explains why a statement type produced no PeriodTable for a
// filing. Misses are expected and never errors.
type MissReason string

const (
	MissNoTable         MissReason = "no_table"
	MissNoNumericColumn MissReason = "no_numeric_column"
)

// Extraction is everything one filing contributes: one period label and date
// shared by every statement found in it.
type Extraction struct {
	Filing model.Filing
	Label  PeriodLabel
	Date   string
	Tables map[Type]*PeriodTable
	Misses map[Type]MissReason
}

// Found lists the statement types extracted, in output order.
func (x *Extraction) Found() []Type {
	var out []Type
	for _, t := range Types {
		if _, ok := x.Tables[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Engine runs classification and column selection for a filing's tables.
// It holds no per-filing state and is safe for concurrent use as long as its
// Classifier and ColumnSelector are.
type Engine struct {
	classifier Classifier
	selector   ColumnSelector
}

// NewEngine creates an Engine. Nil arguments use KeywordClassifier with
// DefaultKeywords and FirstNumericColumn.
func NewEngine(classifier Classifier, selector ColumnSelector) *Engine {
	if classifier == nil {
		classifier = NewKeywordClassifier(nil)
	}
	if selector == nil {
		selector = FirstNumericColumn{}
	}
	return &Engine{classifier: classifier, selector: selector}
}

// Extract labels the filing with cal and pulls every statement type out of
// tables. An invalid filing or malformed report date is returned as an
// error; statement misses are recorded on the Extraction.
func (e *Engine) Extract(cal Calendar, filing model.Filing, tables []RawTable) (*Extraction, error) {
	if err := filing.Validate(); err != nil {
		return nil, err
	}
	label, err := cal.Label(filing.ReportDate)
	if err != nil {
		return nil, eris.Wrapf(err, "statement: label filing %s", filing.AccessionNumber)
	}

	x := &Extraction{
		Filing: filing,
		Label:  label,
		Date:   filing.ReportDate,
		Tables: make(map[Type]*PeriodTable),
		Misses: make(map[Type]MissReason),
	}
	for _, t := range Types {
		table, ok := e.classifier.Classify(tables, t)
		if !ok {
			x.Misses[t] = MissNoTable
			continue
		}
		items, ok := e.selector.Select(table)
		if !ok {
			x.Misses[t] = MissNoNumericColumn
			continue
		}
		x.Tables[t] = &PeriodTable{Label: label, Date: filing.ReportDate, Rows: items}
	}
	return x, nil
}

// Accumulator collects PeriodTables per statement type across filings. A
// later table for the same period replaces the earlier one. It is not safe
// for concurrent use.
type Accumulator struct {
	tables map[Type]map[PeriodLabel]*PeriodTable
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{tables: make(map[Type]map[PeriodLabel]*PeriodTable)}
}

// Add records every table in x.
func (a *Accumulator) Add(x *Extraction) {
	if x == nil {
		return
	}
	for t, pt := range x.Tables {
		a.Put(t, pt)
	}
}

// Put records a single table under its period label.
func (a *Accumulator) Put(t Type, pt *PeriodTable) {
	if pt == nil {
		return
	}
	m, ok := a.tables[t]
	if !ok {
		m = make(map[PeriodLabel]*PeriodTable)
		a.tables[t] = m
	}
	m[pt.Label] = pt
}

// Periods returns how many periods have been collected for t.
func (a *Accumulator) Periods(t Type) int {
	return len(a.tables[t])
}

// Merge merges each statement type. Types with no periods are absent from
// the result.
func (a *Accumulator) Merge() map[Type]*MergedStatement {
	out := make(map[Type]*MergedStatement)
	for _, t := range Types {
		if merged, ok := Merge(t, a.tables[t]); ok {
			out[t] = merged
		}
	}
	return out
}
