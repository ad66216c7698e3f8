// Package costs turns office expense data into a monthly fixed-cost total.
//
// Two sources are supported: a fixed set of manually entered expense fields and an
// uploaded spreadsheet whose value column is found heuristically.
package costs

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/honorarios/internal/validation"
)

// ManualCosts holds the named monthly expense fields entered by hand.
type ManualCosts struct {
	Rent          decimal.Decimal `validate:"gte=0"`
	Software      decimal.Decimal `validate:"gte=0"`
	Accounting    decimal.Decimal `validate:"gte=0"`
	Payroll       decimal.Decimal `validate:"gte=0"`
	PartnerDraw   decimal.Decimal `validate:"gte=0"`
	Miscellaneous decimal.Decimal `validate:"gte=0"`
}

// DefaultManualCosts returns the office's saved 2025 monthly figures.
func DefaultManualCosts() ManualCosts {
	return ManualCosts{
		Rent:          decimal.RequireFromString("2071.76"),
		Software:      decimal.RequireFromString("3602.94"),
		Accounting:    decimal.RequireFromString("1325.54"),
		Payroll:       decimal.RequireFromString("11281.60"),
		PartnerDraw:   decimal.RequireFromString("20000.00"),
		Miscellaneous: decimal.RequireFromString("7836.89"),
	}
}

// Total is the exact sum of every field.
func (m ManualCosts) Total() decimal.Decimal {
	return decimal.Sum(m.Rent, m.Software, m.Accounting, m.Payroll, m.PartnerDraw, m.Miscellaneous)
}

// Validate rejects negative fields.
func (m ManualCosts) Validate() error {
	return validation.Struct(m)
}
