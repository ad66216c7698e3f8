package costs

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ValueKeywords identify the amount column of an uploaded table.
var ValueKeywords = []string{"valor", "custo", "amount", "total", "r$"}

// DescriptionKeywords identify the optional description column.
var DescriptionKeywords = []string{"desc", "historico", "nome", "item"}

// totalMarker flags subtotal and grand-total rows by their description.
const totalMarker = "total"

// foldHeader lowercases s and strips diacritics so "Histórico" matches "historico".
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func matchesAny(header string, keywords []string) bool {
	h := foldHeader(header)
	return lo.ContainsBy(keywords, func(k string) bool {
		return strings.Contains(h, k)
	})
}

// DetectValueColumn returns the first column whose header contains a value keyword
// and whose cells are numeric-coercible.
func DetectValueColumn(t Table) (int, bool) {
	for idx, header := range t.Headers {
		if !matchesAny(header, ValueKeywords) {
			continue
		}
		if numericCoercible(t, idx) {
			return idx, true
		}
	}
	return -1, false
}

// DetectDescriptionColumn returns the first column whose header contains a
// description keyword, skipping the column at exclude.
func DetectDescriptionColumn(t Table, exclude int) (int, bool) {
	for idx, header := range t.Headers {
		if idx == exclude {
			continue
		}
		if matchesAny(header, DescriptionKeywords) {
			return idx, true
		}
	}
	return -1, false
}

// numericCoercible reports whether at least one non-blank cell in the column parses as
// an amount. A column with no content at all counts as coercible.
func numericCoercible(t Table, col int) bool {
	sawContent := false
	for row := range t.Rows {
		cell := t.Cell(row, col)
		if cell == "" {
			continue
		}
		if _, ok := ParseAmount(cell); ok {
			return true
		}
		sawContent = true
	}
	return !sawContent
}

func isTotalRow(description string) bool {
	return strings.Contains(foldHeader(description), totalMarker)
}
