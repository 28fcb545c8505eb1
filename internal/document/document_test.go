package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/statement"
)

const quarterlyReport = `<html><body>
<p>PART I. FINANCIAL INFORMATION</p>
<div><table><tr><td>Item 1.</td><td>Financial Statements</td><td>3</td></tr></table></div>

<p style="font-weight:bold">Walmart Inc.<br/>Condensed Consolidated Statements of Income<br/>(Unaudited)</p>
<div>
<table>
  <tr><td></td><td colspan="3">Three Months Ended April 30,</td></tr>
  <tr><td>(Amounts in millions)</td><td>2022</td><td></td><td>2021</td></tr>
  <tr><td>&nbsp;</td><td></td><td></td><td></td></tr>
  <tr><td>Total&nbsp;revenues</td><td>$&nbsp;141,569</td><td></td><td>$ 138,310</td></tr>
  <tr><td>Cost of sales</td><td>(106,563</td><td>)</td><td>(100,887)</td></tr>
  <tr><td>Consolidated net income</td><td>2,103</td><td></td><td>2,730</td></tr>
</table>
</div>

<div><p>Condensed Consolidated Balance Sheets</p></div>
<div><table>
  <caption>  Condensed Consolidated   Balance Sheets </caption>
  <tr><td>Cash and cash equivalents</td><td>$</td><td>11,817</td></tr>
  <tr><td>Total assets</td><td>$</td><td>244,923</td></tr>
</table></div>
</body></html>`

func TestParseReader_DocumentOrder(t *testing.T) {
	tables, err := ParseReader(strings.NewReader(quarterlyReport))
	require.NoError(t, err)
	require.Len(t, tables, 3)

	assert.Equal(t, "PART I. FINANCIAL INFORMATION", tables[0].Caption)
	assert.Equal(t, "Walmart Inc.Condensed Consolidated Statements of Income(Unaudited)", tables[1].Caption)
	assert.Equal(t, "Condensed Consolidated Balance Sheets", tables[2].Caption)
}

func TestParseReader_GridLayout(t *testing.T) {
	tables, err := ParseReader(strings.NewReader(quarterlyReport))
	require.NoError(t, err)
	income := tables[1]

	require.Len(t, income.Rows, 5, "whitespace-only row dropped")
	assert.Equal(t, []string{"", "Three Months Ended April 30,", "", ""}, income.Rows[0])
	assert.Equal(t, []string{"Total revenues", "$ 141,569", "", "$ 138,310"}, income.Rows[2])
	assert.Equal(t, []string{"Cost of sales", "(106,563", ")", "(100,887)"}, income.Rows[3])
}

func TestParseReader_Rowspan(t *testing.T) {
	html := `<table>
<tr><td rowspan="2">Assets</td><td>Current</td><td>10</td></tr>
<tr><td>Noncurrent</td><td>20</td></tr>
<tr><td>Total</td><td colspan="2">30</td></tr>
</table>`
	tables, err := ParseReader(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"Assets", "Current", "10"},
		{"", "Noncurrent", "20"},
		{"Total", "30", ""},
	}, tables[0].Rows)
}

func TestParseReader_RowspanPastShortRow(t *testing.T) {
	html := `<table>
<tr><td>A</td><td>1</td><td>x</td><td rowspan="2">R</td></tr>
<tr><td>B</td></tr>
<tr><td>C</td><td>3</td><td>y</td><td>z</td></tr>
</table>`
	tables, err := ParseReader(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"A", "1", "x", "R"},
		{"B", "", "", ""},
		{"C", "3", "y", "z"},
	}, tables[0].Rows)
}

func TestParseReader_NestedTables(t *testing.T) {
	html := `<table>
<tr><td>Outer</td><td><table><tr><td>Inner</td><td>1</td></tr></table></td></tr>
</table>`
	tables, err := ParseReader(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].Rows, 1, "outer table does not absorb inner rows")
	assert.Equal(t, []string{"Inner", "1"}, tables[1].Rows[0])
}

func TestParseReader_SkipsEmptyTables(t *testing.T) {
	tables, err := ParseReader(strings.NewReader(`<table><tr><td> </td></tr></table><table></table>`))
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestParse_Charset(t *testing.T) {
	latin := []byte("<html><head><meta charset=\"windows-1252\"></head><body><table><tr><td>Caf\xe9</td><td>\x97</td></tr></table></body></html>")

	tables, err := Parse(latin, "")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Café", "—"}, tables[0].Rows[0])

	noMeta := []byte("<table><tr><td>Caf\xe9</td></tr></table>")
	tables, err = Parse(noMeta, "text/html; charset=ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "Café", tables[0].Rows[0][0])

	tables, err = Parse([]byte("<table><tr><td>Café</td></tr></table>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "Café", tables[0].Rows[0][0])
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("  \n"), "text/html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseable))
}

func TestDeclaredCharset(t *testing.T) {
	assert.Equal(t, "utf-8", declaredCharset("text/html; charset=utf-8"))
	assert.Equal(t, "", declaredCharset("text/html"))
	assert.Equal(t, "", declaredCharset(""))
	assert.Equal(t, "", declaredCharset(";;;"))
}

func TestClip(t *testing.T) {
	long := strings.Repeat("é", maxCaptionLen)
	got := clip(long)
	assert.LessOrEqual(t, len(got), maxCaptionLen)
	assert.True(t, strings.HasPrefix(long, got))
	assert.Equal(t, "short", clip("short"))
}

func TestParse_FeedsStatementEngine(t *testing.T) {
	tables, err := Parse([]byte(quarterlyReport), "text/html; charset=utf-8")
	require.NoError(t, err)

	c := statement.NewKeywordClassifier(nil)
	c.UseCaption = true
	e := statement.NewEngine(c, nil)

	x, err := e.Extract(statement.DefaultCalendar(), model.Filing{
		FormType:        "10-Q",
		FilingDate:      "2022-06-03",
		ReportDate:      "2022-04-30",
		AccessionNumber: "0000104169-22-000089",
		PrimaryDocument: "wmt-20220430.htm",
	}, tables)
	require.NoError(t, err)

	assert.Equal(t, statement.PeriodLabel("1Q22"), x.Label)
	assert.Equal(t, []statement.Type{statement.Income, statement.Balance}, x.Found())

	rev, ok := x.Tables[statement.Income].Value("total revenues")
	require.True(t, ok)
	assert.Equal(t, "141569", rev.String())

	cogs, ok := x.Tables[statement.Income].Value("Cost of sales")
	require.True(t, ok)
	assert.Equal(t, "-106563", cogs.String())

	cash, ok := x.Tables[statement.Balance].Value("Cash and cash equivalents")
	require.True(t, ok)
	assert.Equal(t, "11817", cash.String())
}
