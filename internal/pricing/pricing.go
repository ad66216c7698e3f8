// Package pricing derives a break-even hourly rate from office costs and marks a
// case up with the divisor formula price = cost / (1 - (margin + tax)).
//
// Every function is pure: the same inputs always yield bit-identical results.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/honorarios/internal/validation"
)

// CapacityProfile describes how many hours the office can bill in a month.
type CapacityProfile struct {
	AvailableHours     decimal.Decimal `validate:"gt=0"`
	EfficiencyFraction decimal.Decimal `validate:"gte=0.5,lte=1"`
	ExtraLaborCost     decimal.Decimal `validate:"gte=0"`
}

// CaseRequest is the proposed case being priced.
type CaseRequest struct {
	ClientName         string
	ServiceDescription string
	EstimatedHours     int             `validate:"gte=1,lte=1000"`
	ExtraVariableCost  decimal.Decimal `validate:"gte=0"`
	MarginFraction     decimal.Decimal `validate:"gte=0"`
	TaxFraction        decimal.Decimal `validate:"gte=0"`
}

// RateResult is the output of Rate.
type RateResult struct {
	BillableHours decimal.Decimal
	HourlyRate    decimal.Decimal
	// FixedShare and LaborShare split HourlyRate into its two sources.
	FixedShare decimal.Decimal
	LaborShare decimal.Decimal
	// ZeroCapacity is set when billable hours are not positive and the rate fell back to zero.
	ZeroCapacity bool
}

// PricingResult is the output of Markup. It is never mutated after computation.
type PricingResult struct {
	OperationalCost decimal.Decimal
	Divisor         decimal.Decimal
	FinalPrice      decimal.Decimal
	TaxAmount       decimal.Decimal
	ProfitAmount    decimal.Decimal
	PricePerHour    decimal.Decimal
}

// Validate checks the profile against its field constraints.
func (p CapacityProfile) Validate() error {
	return validation.Struct(p)
}

// Validate checks the request against its field constraints.
func (r CaseRequest) Validate() error {
	return validation.Struct(r)
}
