package pricing

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidMarkup is returned when margin plus tax reaches 100% of the price.
var ErrInvalidMarkup = errors.New("margin plus tax at or above 100%")

// Markup prices a case from the hourly rate. When the divisor is not positive the
// result carries the operational cost and divisor, a zero price, and ErrInvalidMarkup.
func Markup(hourlyRate decimal.Decimal, req CaseRequest) (PricingResult, error) {
	hours := decimal.NewFromInt(int64(req.EstimatedHours))
	operational := hourlyRate.Mul(hours).Add(req.ExtraVariableCost)
	divisor := decimal.NewFromInt(1).Sub(req.MarginFraction.Add(req.TaxFraction))

	result := PricingResult{
		OperationalCost: operational,
		Divisor:         divisor,
		FinalPrice:      decimal.Zero,
		TaxAmount:       decimal.Zero,
		ProfitAmount:    decimal.Zero,
		PricePerHour:    decimal.Zero,
	}
	if !divisor.IsPositive() {
		return result, errors.WithHintf(ErrInvalidMarkup,
			"margin %s + tax %s leaves divisor %s", req.MarginFraction, req.TaxFraction, divisor)
	}

	final := operational.Div(divisor)
	result.FinalPrice = final
	result.TaxAmount = final.Mul(req.TaxFraction)
	result.ProfitAmount = final.Mul(req.MarginFraction)
	if hours.IsPositive() {
		result.PricePerHour = final.Div(hours)
	}
	return result, nil
}
