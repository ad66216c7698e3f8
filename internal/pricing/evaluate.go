package pricing

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/honorarios/internal/validation"
)

// ErrInvalidInput marks evaluations rejected before any arithmetic ran.
var ErrInvalidInput = validation.ErrInvalid

// Evaluation is one full pass of the pipeline for a set of inputs.
type Evaluation struct {
	FixedCost decimal.Decimal
	Rate      RateResult
	Pricing   PricingResult
	// Exportable is false when the markup was invalid or the price is zero.
	Exportable bool
}

// Evaluate validates the inputs and runs Rate then Markup.
// On ErrInvalidMarkup the returned Evaluation is still populated.
func Evaluate(fixedCost decimal.Decimal, profile CapacityProfile, req CaseRequest) (Evaluation, error) {
	if fixedCost.IsNegative() {
		return Evaluation{}, errors.Mark(errors.Newf("fixed cost %s is negative", fixedCost), ErrInvalidInput)
	}
	if err := profile.Validate(); err != nil {
		return Evaluation{}, errors.Wrap(err, "validate capacity profile")
	}
	if err := req.Validate(); err != nil {
		return Evaluation{}, errors.Wrap(err, "validate case request")
	}

	rate := Rate(fixedCost, profile)
	priced, err := Markup(rate.HourlyRate, req)

	eval := Evaluation{
		FixedCost:  fixedCost,
		Rate:       rate,
		Pricing:    priced,
		Exportable: err == nil && priced.FinalPrice.IsPositive(),
	}
	return eval, err
}
