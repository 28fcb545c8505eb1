package statement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(label string, v int64) LineItem {
	return LineItem{Label: label, Value: decimal.NewFromInt(v)}
}

func rowLabels(m *MergedStatement) []string {
	out := make([]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		out = append(out, r.Label)
	}
	return out
}

func TestMerge_OuterJoin(t *testing.T) {
	tables := map[PeriodLabel]*PeriodTable{
		"2Q23": {Label: "2Q23", Date: "2023-07-31", Rows: []LineItem{item("Revenue", 200), item("Cost of sales", 80)}},
		"1Q23": {Label: "1Q23", Date: "2023-04-30", Rows: []LineItem{item("Revenue", 100), item("Income taxes", 10)}},
	}

	m, ok := Merge(Income, tables)
	require.True(t, ok)

	assert.Equal(t, Income, m.Type)
	assert.Equal(t, []PeriodLabel{"1Q23", "2Q23"}, m.Periods)
	assert.Equal(t, "2023-04-30", m.PeriodDates["1Q23"])
	assert.Equal(t, []string{"Revenue", "Income taxes", "Cost of sales"}, rowLabels(m))

	rev, ok := m.Row("revenue")
	require.True(t, ok)
	assert.Equal(t, "100", rev.Values["1Q23"].String())
	assert.Equal(t, "200", rev.Values["2Q23"].String())

	tax, ok := m.Row("Income taxes")
	require.True(t, ok)
	_, has := tax.Values["2Q23"]
	assert.False(t, has, "label absent from a period has no value")

	cogs, ok := m.Row("Cost of sales")
	require.True(t, ok)
	_, has = cogs.Values["1Q23"]
	assert.False(t, has)
}

func TestMerge_ChronologicalAcrossYearBoundary(t *testing.T) {
	tables := map[PeriodLabel]*PeriodTable{
		"1Q24": {Label: "1Q24", Rows: []LineItem{item("Only in 1Q24", 3)}},
		"4Q23": {Label: "4Q23", Rows: []LineItem{item("Only in 4Q23", 2)}},
		"2Q23": {Label: "2Q23", Rows: []LineItem{item("Only in 2Q23", 1)}},
	}

	m, ok := Merge(Balance, tables)
	require.True(t, ok)
	assert.Equal(t, []PeriodLabel{"2Q23", "4Q23", "1Q24"}, m.Periods)
	assert.Equal(t, []string{"Only in 2Q23", "Only in 4Q23", "Only in 1Q24"}, rowLabels(m))
}

func TestMerge_MatchesNormalizedLabels(t *testing.T) {
	tables := map[PeriodLabel]*PeriodTable{
		"1Q23": {Label: "1Q23", Rows: []LineItem{item("Total  revenues", 10)}},
		"2Q23": {Label: "2Q23", Rows: []LineItem{item("TOTAL REVENUES", 20)}},
	}

	m, ok := Merge(Income, tables)
	require.True(t, ok)
	require.Len(t, m.Rows, 1)
	assert.Equal(t, "Total  revenues", m.Rows[0].Label)
	assert.Len(t, m.Rows[0].Values, 2)
}

func TestMerge_DuplicateLabelWithinPeriodKeepsFirst(t *testing.T) {
	tables := map[PeriodLabel]*PeriodTable{
		"1Q23": {Label: "1Q23", Rows: []LineItem{item("Other", 1), item("other", 2)}},
	}

	m, ok := Merge(CashFlow, tables)
	require.True(t, ok)
	require.Len(t, m.Rows, 1)
	assert.Equal(t, "1", m.Rows[0].Values["1Q23"].String())
}

func TestMerge_Empty(t *testing.T) {
	m, ok := Merge(Income, nil)
	assert.False(t, ok)
	assert.Nil(t, m)

	m, ok = Merge(Income, map[PeriodLabel]*PeriodTable{})
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestMerge_EveryValueComesFromItsPeriod(t *testing.T) {
	tables := map[PeriodLabel]*PeriodTable{
		"1Q23": {Label: "1Q23", Rows: []LineItem{item("A", 1), item("B", 2)}},
		"2Q23": {Label: "2Q23", Rows: []LineItem{item("B", 3), item("C", 4)}},
		"3Q23": {Label: "3Q23", Rows: []LineItem{item("A", 5)}},
	}

	m, ok := Merge(Income, tables)
	require.True(t, ok)

	for _, row := range m.Rows {
		for period, v := range row.Values {
			src, found := tables[period].Value(row.Label)
			require.True(t, found, "%s/%s", row.Label, period)
			assert.True(t, src.Equal(v))
		}
	}
	for period, pt := range tables {
		for _, it := range pt.Rows {
			row, ok := m.Row(it.Label)
			require.True(t, ok)
			assert.Contains(t, row.Values, period)
		}
	}
}
