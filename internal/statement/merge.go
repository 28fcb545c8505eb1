package statement

import "github.com/shopspring/decimal"

// Merge full-outer-joins per-period tables of one statement type into a wide
// table. Periods are ordered chronologically by label, not by insertion.
// Rows start with the earliest period's line items; labels first seen in a
// later period are appended. A label missing from a period has no value for
// it. Empty input returns ok=false.
func Merge(t Type, tables map[PeriodLabel]*PeriodTable) (*MergedStatement, bool) {
	if len(tables) == 0 {
		return nil, false
	}

	labels := make([]PeriodLabel, 0, len(tables))
	for label := range tables {
		labels = append(labels, label)
	}

	out := &MergedStatement{
		Type:        t,
		Periods:     SortPeriods(labels),
		PeriodDates: make(map[PeriodLabel]string, len(tables)),
	}

	index := make(map[string]int)
	for _, period := range out.Periods {
		pt := tables[period]
		if pt == nil {
			continue
		}
		out.PeriodDates[period] = pt.Date
		for _, item := range pt.Rows {
			key := NormalizeLabel(item.Label)
			i, ok := index[key]
			if !ok {
				i = len(out.Rows)
				index[key] = i
				out.Rows = append(out.Rows, MergedRow{
					Label:  item.Label,
					Values: make(map[PeriodLabel]decimal.Decimal),
				})
			}
			if _, dup := out.Rows[i].Values[period]; dup {
				continue
			}
			out.Rows[i].Values[period] = item.Value
		}
	}
	return out, true
}
