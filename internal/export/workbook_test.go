package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/statement"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func testIncome() *statement.MergedStatement {
	return &statement.MergedStatement{
		Type:    statement.Income,
		Periods: []statement.PeriodLabel{"4Q22", "1Q23"},
		PeriodDates: map[statement.PeriodLabel]string{
			"4Q22": "2023-01-31",
			"1Q23": "2023-04-30",
		},
		Rows: []statement.MergedRow{
			{Label: "Net sales", Values: map[statement.PeriodLabel]decimal.Decimal{
				"4Q22": decimal.NewFromInt(1421413),
				"1Q23": decimal.NewFromInt(1107000),
			}},
			{Label: "Cost of sales", Values: map[statement.PeriodLabel]decimal.Decimal{
				"4Q22": decimal.NewFromInt(-1007853),
				"1Q23": decimal.NewFromInt(-745217),
			}},
			{Label: "Gain on sale", Values: map[statement.PeriodLabel]decimal.Decimal{
				"1Q23": decimal.NewFromInt(5000),
			}},
		},
	}
}

func testWorkbook() Workbook {
	return Workbook{
		Company: model.Company{Ticker: "URBN", CIK: "912615", Name: "Urban Outfitters Inc"},
		Statements: map[statement.Type]*statement.MergedStatement{
			statement.Income: testIncome(),
		},
		ExtractedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "urbn_quarterly_2022_2024.xlsx", DefaultFilename("URBN", 2022, 2024))
}

func TestWrite_StatementAndSummarySheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DefaultFilename("URBN", 2022, 2023))
	require.NoError(t, Write(path, testWorkbook()))

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Income Statement", SummarySheet}, names)

	rows, err := ReadSheet(path, ReadOptions{SheetName: "Income Statement"})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Line Item", "4Q22 (2023-01-31)", "1Q23 (2023-04-30)"}, rows[0])
	assert.Equal(t, "Net sales", cellAt(rows, 1, 0))
	assert.Equal(t, "1421413", cellAt(rows, 1, 1))
	assert.Equal(t, "-745217", cellAt(rows, 2, 2))
	assert.Equal(t, "Gain on sale", cellAt(rows, 3, 0))
	assert.Equal(t, "", cellAt(rows, 3, 1))
	assert.Equal(t, "5000", cellAt(rows, 3, 2))
}

func TestWrite_Summary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, Write(path, testWorkbook()))

	rows, err := ReadSheet(path, ReadOptions{SheetName: SummarySheet, SkipRows: 1})
	require.NoError(t, err)

	got := make(map[string]string)
	for _, r := range rows {
		got[r[0]] = r[1]
	}
	assert.Equal(t, "Urban Outfitters Inc", got["Company"])
	assert.Equal(t, "URBN", got["Ticker"])
	assert.Equal(t, "912615", got["CIK"])
	assert.Equal(t, "SEC EDGAR API", got["Data Source"])
	assert.Equal(t, "2024-05-01 09:30:00", got["Extract Date"])
	assert.Equal(t, "USD", got["Currency"])
	assert.Contains(t, got["Format"], "Quarters as columns")
}

func TestBuild_StatementOrder(t *testing.T) {
	wb := testWorkbook()
	cash := testIncome()
	cash.Type = statement.CashFlow
	bal := testIncome()
	bal.Type = statement.Balance
	wb.Statements[statement.CashFlow] = cash
	wb.Statements[statement.Balance] = bal

	f, err := Build(wb)
	require.NoError(t, err)
	var names []string
	for _, s := range f.Sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Income Statement", "Balance Sheet", "Cash Flow Statement", "Summary"}, names)
}

func TestBuild_OmitsEmptyStatements(t *testing.T) {
	wb := testWorkbook()
	wb.Statements[statement.Balance] = &statement.MergedStatement{Type: statement.Balance}

	f, err := Build(wb)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 2)
}

func TestBuild_NoStatements(t *testing.T) {
	_, err := Build(Workbook{Company: model.Company{Ticker: "X"}})
	assert.True(t, errors.Is(err, ErrNoStatements))

	err = Write(filepath.Join(t.TempDir(), "none.xlsx"), Workbook{})
	assert.True(t, errors.Is(err, ErrNoStatements))
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testWorkbook()))
	assert.Greater(t, buf.Len(), 0)
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])
}

func TestSummary_FallsBackToTicker(t *testing.T) {
	wb := testWorkbook()
	wb.Company.Name = ""
	path := filepath.Join(t.TempDir(), "ticker.xlsx")
	require.NoError(t, Write(path, wb))

	rows, err := ReadSheet(path, ReadOptions{SheetName: SummarySheet})
	require.NoError(t, err)
	assert.Equal(t, []string{"Company", "URBN"}, rows[1])
}
