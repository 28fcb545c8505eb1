// Package export writes merged statements to an xlsx workbook and reads
// workbook sheets back.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/statement"
)

// ErrNoStatements is returned when there is nothing to write.
var ErrNoStatements = eris.New("export: no statements to write")

// Summary sheet fields.
const (
	SummarySheet   = "Summary"
	LineItemHeader = "Line Item"
	dataSource     = "SEC EDGAR API"
	currency       = "USD"
	layout         = "Quarters as columns (e.g., 1Q22, 2Q22, 3Q22, etc.)"
	extractDateFmt = "2006-01-02 15:04:05"
)

// Workbook is the content of one output file.
type Workbook struct {
	Company     model.Company
	Statements  map[statement.Type]*statement.MergedStatement
	ExtractedAt time.Time
}

// DefaultFilename returns "<ticker>_quarterly_<start>_<end>.xlsx".
func DefaultFilename(ticker string, startYear, endYear int) string {
	return fmt.Sprintf("%s_quarterly_%d_%d.xlsx", strings.ToLower(ticker), startYear, endYear)
}

// Build lays out one sheet per statement type present, in statement order,
// followed by the Summary sheet.
func Build(wb Workbook) (*xlsx.File, error) {
	f := xlsx.NewFile()
	written := 0
	for _, t := range statement.Types {
		m, ok := wb.Statements[t]
		if !ok || m == nil || len(m.Periods) == 0 {
			continue
		}
		if err := addStatementSheet(f, t, m); err != nil {
			return nil, err
		}
		written++
	}
	if written == 0 {
		return nil, ErrNoStatements
	}
	if err := addSummarySheet(f, wb); err != nil {
		return nil, err
	}
	return f, nil
}

// Write builds the workbook and saves it to path, creating parent
// directories as needed.
func Write(path string, wb Workbook) error {
	f, err := Build(wb)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: create dir %s", dir)
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	zap.L().Info("export: workbook written",
		zap.String("path", path),
		zap.Int("sheets", len(f.Sheets)),
	)
	return nil
}

// WriteTo streams the workbook to w.
func WriteTo(w io.Writer, wb Workbook) error {
	f, err := Build(wb)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

func addStatementSheet(f *xlsx.File, t statement.Type, m *statement.MergedStatement) error {
	sheet, err := f.AddSheet(t.Title())
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", t.Title())
	}

	header := sheet.AddRow()
	header.AddCell().SetString(LineItemHeader)
	for _, p := range m.Periods {
		header.AddCell().SetString(statement.ColumnHeader(p, m.PeriodDates[p]))
	}

	for _, r := range m.Rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Label)
		for _, p := range m.Periods {
			cell := row.AddCell()
			if v, ok := r.Values[p]; ok {
				setDecimal(cell, v)
			}
		}
	}

	zap.L().Debug("export: statement sheet",
		zap.String("sheet", t.Title()),
		zap.Int("periods", len(m.Periods)),
		zap.Int("rows", len(m.Rows)),
	)
	return nil
}

func addSummarySheet(f *xlsx.File, wb Workbook) error {
	sheet, err := f.AddSheet(SummarySheet)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	extracted := wb.ExtractedAt
	if extracted.IsZero() {
		extracted = time.Now()
	}
	fields := [][2]string{
		{"Field", "Value"},
		{"Company", wb.Company.DisplayName()},
		{"Ticker", wb.Company.Ticker},
		{"CIK", wb.Company.CIK},
		{"Data Source", dataSource},
		{"Extract Date", extracted.Format(extractDateFmt)},
		{"Currency", currency},
		{"Format", layout},
	}
	for _, kv := range fields {
		row := sheet.AddRow()
		row.AddCell().SetString(kv[0])
		row.AddCell().SetString(kv[1])
	}
	return nil
}

// setDecimal writes whole numbers as integers so they read back exactly.
func setDecimal(cell *xlsx.Cell, v decimal.Decimal) {
	if v.IsInteger() && v.Abs().LessThan(decimal.New(1, 15)) {
		cell.SetInt64(v.IntPart())
		return
	}
	cell.SetFloat(v.InexactFloat64())
}
