package statement

import (
	"strings"
)

// Classifier picks the table in a document that holds a statement type.
type Classifier interface {
	Classify(tables []RawTable, t Type) (RawTable, bool)
}

// DefaultKeywords are the heading phrases that identify each statement, in
// precedence order. Matching is done on normalized (case-folded,
// whitespace-collapsed) table text.
var DefaultKeywords = map[Type][]string{
	Income: {
		"consolidated statements of income",
		"consolidated statements of operations",
		"consolidated statements of earnings",
		"condensed consolidated statements of income",
		"condensed consolidated statements of operations",
		"condensed consolidated statements of earnings",
	},
	Balance: {
		"consolidated balance sheets",
		"condensed consolidated balance sheets",
		"consolidated statements of financial position",
		"consolidated balance sheet",
	},
	CashFlow: {
		"consolidated statements of cash flows",
		"condensed consolidated statements of cash flows",
		"consolidated statement of cash flows",
	},
}

// MinColumns is the narrowest table accepted as a statement: labels plus at
// least one value column.
const MinColumns = 2

// KeywordClassifier returns the first table in document order whose text
// contains any keyword for the requested type. A filing's primary statement
// precedes any notes-section table that reuses the heading.
type KeywordClassifier struct {
	keywords map[Type][]string

	// UseCaption also matches against the heading text found just before
	// each table, for filings that keep the statement title outside it.
	UseCaption bool
}

// NewKeywordClassifier builds a classifier. Types missing from keywords use
// DefaultKeywords.
func NewKeywordClassifier(keywords map[Type][]string) *KeywordClassifier {
	merged := make(map[Type][]string, len(DefaultKeywords))
	for t, kws := range DefaultKeywords {
		merged[t] = kws
	}
	for t, kws := range keywords {
		if len(kws) == 0 {
			continue
		}
		norm := make([]string, 0, len(kws))
		for _, kw := range kws {
			if kw = NormalizeLabel(kw); kw != "" {
				norm = append(norm, kw)
			}
		}
		merged[t] = norm
	}
	return &KeywordClassifier{keywords: merged}
}

// Keywords returns the phrases used for t.
func (c *KeywordClassifier) Keywords(t Type) []string {
	return c.keywords[t]
}

// Classify implements Classifier. Matching tables narrower than MinColumns
// are passed over.
func (c *KeywordClassifier) Classify(tables []RawTable, t Type) (RawTable, bool) {
	kws := c.keywords[t]
	if len(kws) == 0 {
		return RawTable{}, false
	}
	for _, table := range tables {
		text := flattenTable(table, c.UseCaption)
		if !containsAny(text, kws) {
			continue
		}
		if table.NumCols() < MinColumns {
			continue
		}
		return table, true
	}
	return RawTable{}, false
}

func flattenTable(table RawTable, withCaption bool) string {
	var b strings.Builder
	if withCaption && table.Caption != "" {
		b.WriteString(table.Caption)
		b.WriteByte(' ')
	}
	for _, row := range table.Rows {
		for _, cell := range row {
			b.WriteString(cell)
			b.WriteByte(' ')
		}
	}
	return NormalizeLabel(b.String())
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
