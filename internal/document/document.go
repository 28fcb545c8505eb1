// Package document turns filing HTML into the ordered list of tables the
// statement engine classifies.
package document

import (
	"bytes"
	"io"
	"mime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/statements-cli/internal/statement"
)

// ErrUnparseable marks a document that is not usable HTML.
var ErrUnparseable = eris.New("document: unparseable")

// maxCaptionLen bounds heading text taken from around a table.
const maxCaptionLen = 300

// maxSpan guards against absurd colspan/rowspan attributes.
const maxSpan = 64

// Parse decodes body using the charset from contentType, a <meta> tag or a
// BOM (in that order, defaulting to windows-1252 as browsers do) and
// returns its tables in document order.
func Parse(body []byte, contentType string) ([]statement.RawTable, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, eris.Wrap(ErrUnparseable, "empty document")
	}
	r, err := decode(body, contentType)
	if err != nil {
		return nil, err
	}
	return ParseReader(r)
}

// ParseReader parses UTF-8 HTML from r.
func ParseReader(r io.Reader) ([]statement.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrapf(ErrUnparseable, "%v", err)
	}

	var tables []statement.RawTable
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := tableRows(table)
		if len(rows) == 0 {
			return
		}
		tables = append(tables, statement.RawTable{
			Caption: findCaption(table),
			Rows:    rows,
		})
	})
	return tables, nil
}

func decode(body []byte, contentType string) (io.Reader, error) {
	if name := declaredCharset(contentType); name != "" {
		if enc, err := htmlindex.Get(name); err == nil {
			return newDecoder(body, enc), nil
		}
	}
	enc, _, _ := charset.DetermineEncoding(body, "")
	return newDecoder(body, enc), nil
}

func newDecoder(body []byte, enc encoding.Encoding) io.Reader {
	return enc.NewDecoder().Reader(bytes.NewReader(body))
}

// declaredCharset returns the charset parameter of a Content-Type header.
func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

// tableRows lays the table's own rows (not those of nested tables) onto a
// grid, expanding colspan and rowspan so values stay under their headers.
// Spanned slots are blank. Rows with no text are dropped.
func tableRows(table *goquery.Selection) [][]string {
	trs := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})

	var grid [][]string
	// pending[col] counts rows still covered by a rowspan from above.
	pending := map[int]int{}

	trs.Each(func(_ int, tr *goquery.Selection) {
		var row []string
		col := 0
		skipCovered := func() {
			for pending[col] > 0 {
				pending[col]--
				row = append(row, "")
				col++
			}
		}

		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			skipCovered()
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")

			row = append(row, cellText(cell))
			for range colspan - 1 {
				row = append(row, "")
			}
			if rowspan > 1 {
				for c := col; c < col+colspan; c++ {
					pending[c] = rowspan - 1
				}
			}
			col += colspan
		})

		// Rowspans to the right of the row's last cell still cover this row.
		last := -1
		for c, n := range pending {
			if n > 0 && c > last {
				last = c
			}
		}
		for ; col <= last; col++ {
			if pending[col] > 0 {
				pending[col]--
			}
			row = append(row, "")
		}

		grid = append(grid, row)
	})

	out := grid[:0]
	for _, row := range grid {
		if hasText(row) {
			out = append(out, row)
		}
	}
	return out
}

func spanAttr(cell *goquery.Selection, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell.AttrOr(name, "1")))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxSpan)
}

// cellText flattens a cell's text, collapsing runs of whitespace (including
// non-breaking spaces) to single spaces.
func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

func hasText(row []string) bool {
	for _, c := range row {
		if c != "" {
			return true
		}
	}
	return false
}

// findCaption returns the table's <caption>, or the text of the nearest
// preceding element. Filings often wrap each table in its own <div>, so the
// search climbs one level when the table has no previous sibling.
func findCaption(table *goquery.Selection) string {
	if c := table.ChildrenFiltered("caption"); c.Length() > 0 {
		return clip(strings.Join(strings.Fields(c.Text()), " "))
	}
	for node, depth := table, 0; depth < 2 && node.Length() > 0; node, depth = node.Parent(), depth+1 {
		prev := node.Prev()
		for prev.Length() > 0 {
			if prev.Is("table") || prev.Find("table").Length() > 0 {
				return ""
			}
			if text := strings.Join(strings.Fields(prev.Text()), " "); text != "" {
				return clip(text)
			}
			prev = prev.Prev()
		}
	}
	return ""
}

func clip(s string) string {
	if len(s) <= maxCaptionLen {
		return s
	}
	cut := maxCaptionLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
