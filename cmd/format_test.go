package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/pipeline"
	"github.com/sells-group/statements-cli/internal/statement"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Company:   model.Company{Ticker: "URBN", Name: "Urban Outfitters Inc"},
			StartYear: 2022,
			EndYear:   2024,
			Status:    model.RunStatusComplete,
			Result:    &model.RunResult{FilingsTotal: 10, FilingsExtracted: 9},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Company:   model.Company{Ticker: "WMT"},
			StartYear: 2023,
			EndYear:   2023,
			Status:    model.RunStatusFetching,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "TICKER")
	assert.Contains(t, output, "URBN")
	assert.Contains(t, output, "2022-2024")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "9/10")
	assert.Contains(t, output, "fetching")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "2m0s")
}

func TestFormatRun_Failed(t *testing.T) {
	r := &model.Run{
		ID:      "run-1",
		Company: model.Company{Ticker: "URBN", CIK: "0000912615"},
		Status:  model.RunStatusFailed,
		Result: &model.RunResult{
			FilingsTotal: 1,
			Periods:      map[string]int{"balance": 2, "income": 3},
			Error:        "export: no statements to write",
		},
	}

	var buf bytes.Buffer
	formatRun(&buf, r)

	output := buf.String()
	assert.Contains(t, output, "URBN (URBN, CIK 0000912615)")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "no statements to write")
	assert.Less(t, strings.Index(output, "Income Statement"), strings.Index(output, "Balance Sheet"))
}

func TestFormatOutcomes(t *testing.T) {
	var buf bytes.Buffer
	formatOutcomes(&buf, []model.FilingOutcome{
		{AccessionNumber: "acc-1", FormType: "10-Q", ReportDate: "2022-04-30", Period: "1Q22", Statements: []string{"income", "balance"}},
		{AccessionNumber: "acc-2", FormType: "10-Q", ReportDate: "2022-07-31", SkipReason: model.SkipNotRetrievable},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[2], "income,balance")
	assert.Contains(t, lines[3], "not_retrievable")
}

func TestFormatFilings(t *testing.T) {
	var buf bytes.Buffer
	formatFilings(&buf, statement.DefaultCalendar(), []model.Filing{
		{FormType: "10-Q", ReportDate: "2023-01-28", FilingDate: "2023-03-01", AccessionNumber: "acc-1"},
		{FormType: "10-Q", ReportDate: "garbage", FilingDate: "2023-06-01", AccessionNumber: "acc-2"},
	})

	output := buf.String()
	assert.Contains(t, output, "4Q22")
	assert.Contains(t, output, "?")
	assert.Contains(t, output, "acc-2")
}

func TestFormatRunSummary(t *testing.T) {
	var buf bytes.Buffer
	formatRunSummary(&buf, &pipeline.Result{
		RunID:   "run-1",
		Company: model.Company{Ticker: "URBN", CIK: "0000912615", Name: "Urban Outfitters Inc"},
		Summary: model.RunResult{
			FilingsTotal:     4,
			FilingsExtracted: 3,
			FilingsSkipped:   1,
			Periods:          map[string]int{"income": 3, "cashflow": 2},
			OutputPath:       "urbn_quarterly_2022_2022.xlsx",
		},
	})

	output := buf.String()
	assert.Contains(t, output, "Urban Outfitters Inc (URBN, CIK 0000912615)")
	assert.Contains(t, output, "4 found, 3 extracted, 1 skipped")
	assert.Contains(t, output, "Income Statement:")
	assert.Contains(t, output, "Cash Flow Statement:")
	assert.NotContains(t, output, "Balance Sheet")
	assert.Contains(t, output, "urbn_quarterly_2022_2022.xlsx")
}

func TestFormatSheet(t *testing.T) {
	var buf bytes.Buffer
	formatSheet(&buf, [][]string{
		{"Line Item", "1Q22 (2022-04-30)"},
		{"Net sales", "1000"},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Net sales")
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[1], " "), "1000"))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
