package statement

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel folds a line-item label or table text for matching:
// NFKC-normalized, case-folded, whitespace collapsed to single spaces.
// Non-breaking spaces (common in filing HTML) count as whitespace.
func NormalizeLabel(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}
