package statement

import (
	"strings"
	"unicode"
)

// ColumnSelector turns a classified table into labeled values for one period.
type ColumnSelector interface {
	Select(table RawTable) ([]LineItem, bool)
}

// FirstNumericColumn reads labels from column 0 and values from the leftmost
// column that is mostly numeric. Filings list the most recent period first,
// and column order is inferred from parseability rather than position.
type FirstNumericColumn struct{}

// Select implements ColumnSelector.
func (FirstNumericColumn) Select(table RawTable) ([]LineItem, bool) {
	col, ok := ValueColumn(table)
	if !ok {
		return nil, false
	}
	items := LineItems(table, col)
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// ValueColumn returns the leftmost column after the label column in which
// parseable amounts are a strict majority of the non-blank cells.
func ValueColumn(table RawTable) (int, bool) {
	width := table.NumCols()
	for col := 1; col < width; col++ {
		var nonBlank, numeric int
		for row := range table.Rows {
			_, kind := parseCell(table.Cell(row, col))
			switch kind {
			case cellNumber:
				numeric++
				nonBlank++
			case cellText:
				nonBlank++
			}
		}
		if numeric > 0 && numeric*2 > nonBlank {
			return col, true
		}
	}
	return 0, false
}

// LineItems pairs column 0 labels with parsed values from col. Rows with a
// blank label or a missing value are skipped; a label repeated within the
// table keeps its first value.
func LineItems(table RawTable, col int) []LineItem {
	var items []LineItem
	seen := make(map[string]bool)
	for row := range table.Rows {
		label := strings.TrimFunc(table.Cell(row, 0), unicode.IsSpace)
		if label == "" {
			continue
		}
		v, ok := ParseAmount(table.Cell(row, col))
		if !ok {
			continue
		}
		key := NormalizeLabel(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, LineItem{Label: label, Value: v})
	}
	return items
}
