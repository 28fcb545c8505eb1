package statement

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type cellKind int

const (
	cellBlank cellKind = iota
	cellNumber
	cellText
)

// blankMarkers are cell values that mean "no value", not zero.
var blankMarkers = map[string]bool{
	"":    true,
	"-":   true,
	"—":   true,
	"–":   true,
	"n/a": true,
	"na":  true,
	"nm":  true,
}

var currencyStripper = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
)

var punctStripper = strings.NewReplacer(
	",", "",
	"(", "",
	")", "",
)

var (
	plainNumberRe   = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
	leadingGroupRe  = regexp.MustCompile(`^\d{1,3}$`)
	thousandGroupRe = regexp.MustCompile(`^\d{3}(\.\d*)?$`)
)

// ParseAmount coerces a statement cell into a signed decimal. Thousands
// separators and currency symbols are dropped and "(567)" becomes -567.
// Blank and dash cells are reported as missing (ok=false), never zero.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	v, kind := parseCell(raw)
	return v, kind == cellNumber
}

// IsBlankCell reports whether a cell carries no value at all.
func IsBlankCell(raw string) bool {
	_, kind := parseCell(raw)
	return kind == cellBlank
}

func parseCell(raw string) (decimal.Decimal, cellKind) {
	s := strings.TrimFunc(raw, unicode.IsSpace)
	if blankMarkers[strings.ToLower(s)] {
		return decimal.Decimal{}, cellBlank
	}

	// Filings often split "(1,234" and ")" across adjacent cells, so either
	// parenthesis alone marks the value negative once symbols are gone.
	s = strings.TrimFunc(currencyStripper.Replace(s), unicode.IsSpace)
	negative := strings.HasPrefix(s, "(") || strings.HasSuffix(s, ")")

	s = strings.TrimFunc(punctStripper.Replace(s), unicode.IsSpace)
	if blankMarkers[strings.ToLower(s)] {
		// "$ —", "(—)" and cells holding only symbols.
		return decimal.Decimal{}, cellBlank
	}

	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "−") {
		negative = true
		s = strings.TrimFunc(strings.TrimLeft(s, "-−"), unicode.IsSpace)
	}
	if s == "" {
		return decimal.Decimal{}, cellBlank
	}

	s, ok := joinThousands(s)
	if !ok || !plainNumberRe.MatchString(s) {
		return decimal.Decimal{}, cellText
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, cellText
	}
	if negative {
		v = v.Neg()
	}
	return v, cellNumber
}

// joinThousands accepts space-separated thousands groups ("1 000 000") and
// rejects any other spacing, so "2023 2022" stays text.
func joinThousands(s string) (string, bool) {
	groups := strings.FieldsFunc(s, unicode.IsSpace)
	if len(groups) == 1 {
		return groups[0], true
	}
	if !leadingGroupRe.MatchString(groups[0]) {
		return "", false
	}
	for i, g := range groups[1:] {
		if !thousandGroupRe.MatchString(g) {
			return "", false
		}
		if strings.Contains(g, ".") && i != len(groups)-2 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}
