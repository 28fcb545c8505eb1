// Package statement classifies financial statement tables inside filing
// documents, selects their current-period value column, labels them with a
// fiscal quarter and merges many quarters into one wide table per statement.
package statement

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Type identifies one of the three primary financial statements.
type Type string

const (
	Income   Type = "income"
	Balance  Type = "balance"
	CashFlow Type = "cashflow"
)

// Types lists the statement types in output order.
var Types = []Type{Income, Balance, CashFlow}

// String returns the type's identifier.
func (t Type) String() string { return string(t) }

// Title returns the human-readable statement name used for sheet titles.
func (t Type) Title() string {
	switch t {
	case Income:
		return "Income Statement"
	case Balance:
		return "Balance Sheet"
	case CashFlow:
		return "Cash Flow Statement"
	default:
		return string(t)
	}
}

// ParseType converts "income", "balance" or "cashflow" into a Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Income, Balance, CashFlow:
		return Type(s), nil
	default:
		return "", eris.Errorf("statement: unknown type %q (valid: income, balance, cashflow)", s)
	}
}

// RawTable is a parsed document table: ordered rows of ordered cell text.
// Rows may be ragged. Caption is the heading text immediately preceding the
// table in the document, if any.
type RawTable struct {
	Caption string
	Rows    [][]string
}

// NumCols returns the width of the widest row.
func (t RawTable) NumCols() int {
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Cell returns the cell at (row, col), or "" when the row is shorter.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// LineItem is one labeled value in a PeriodTable.
type LineItem struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// PeriodTable is one statement extracted from one filing: line items for a
// single fiscal quarter.
type PeriodTable struct {
	Label PeriodLabel `json:"label"`
	Date  string      `json:"date"`
	Rows  []LineItem  `json:"rows"`
}

// Value looks up a line item by normalized label.
func (p *PeriodTable) Value(label string) (decimal.Decimal, bool) {
	key := NormalizeLabel(label)
	for _, item := range p.Rows {
		if NormalizeLabel(item.Label) == key {
			return item.Value, true
		}
	}
	return decimal.Decimal{}, false
}

// Header returns the column header used for this period in output,
// e.g. "1Q22 (2022-04-30)".
func (p *PeriodTable) Header() string {
	return ColumnHeader(p.Label, p.Date)
}

// ColumnHeader formats a period label with its period end date.
func ColumnHeader(label PeriodLabel, date string) string {
	if date == "" {
		return string(label)
	}
	return string(label) + " (" + date + ")"
}

// MergedRow is one line item across all merged periods. Values is sparse: a
// period absent from the map has no value for that quarter.
type MergedRow struct {
	Label  string                          `json:"label"`
	Values map[PeriodLabel]decimal.Decimal `json:"values"`
}

// MergedStatement is the wide line item × quarter table for one statement type.
type MergedStatement struct {
	Type        Type                   `json:"type"`
	Periods     []PeriodLabel          `json:"periods"`
	PeriodDates map[PeriodLabel]string `json:"period_dates"`
	Rows        []MergedRow            `json:"rows"`
}

// Row returns the merged row whose label matches after normalization.
func (m *MergedStatement) Row(label string) (*MergedRow, bool) {
	key := NormalizeLabel(label)
	for i := range m.Rows {
		if NormalizeLabel(m.Rows[i].Label) == key {
			return &m.Rows[i], true
		}
	}
	return nil, false
}
