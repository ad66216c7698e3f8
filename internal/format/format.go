// Package format renders amounts, fractions and dates the way the office writes them.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	brlPattern = "#.###,##"
	dateLayout = "02/01/2006"
)

var hundred = decimal.NewFromInt(100)

// BRL formats an amount as Brazilian reais, e.g. "R$ 46.118,73".
func BRL(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	s := humanize.FormatFloat(brlPattern, rounded.Abs().InexactFloat64())
	if rounded.IsNegative() {
		return "-R$ " + s
	}
	return "R$ " + s
}

// Number formats an amount with Brazilian separators and two decimals, without currency.
func Number(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	s := humanize.FormatFloat(brlPattern, rounded.Abs().InexactFloat64())
	if rounded.IsNegative() {
		return "-" + s
	}
	return s
}

// Percent renders a fraction as a percentage with up to two decimals, e.g. 0.125 -> "12,5%".
func Percent(fraction decimal.Decimal) string {
	return PercentValue(fraction) + "%"
}

// PercentValue is Percent without the trailing sign.
func PercentValue(fraction decimal.Decimal) string {
	return strings.Replace(fraction.Mul(hundred).Round(2).String(), ".", ",", 1)
}

// Date formats t as dd/mm/yyyy in loc. A nil loc keeps t's own location.
func Date(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

// FractionFromPercent converts a percentage such as 40 into 0.40.
func FractionFromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// PercentFromFraction converts a fraction such as 0.40 into 40.
func PercentFromFraction(fraction decimal.Decimal) decimal.Decimal {
	return fraction.Mul(hundred)
}
