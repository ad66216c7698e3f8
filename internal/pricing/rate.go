package pricing

import "github.com/shopspring/decimal"

// BillableHours is available hours scaled by the efficiency fraction.
func BillableHours(p CapacityProfile) decimal.Decimal {
	return p.AvailableHours.Mul(p.EfficiencyFraction)
}

// Rate computes the break-even hourly rate: (fixed cost + extra labor) / billable hours.
// A non-positive capacity yields a zero rate rather than an error.
func Rate(fixedCost decimal.Decimal, p CapacityProfile) RateResult {
	billable := BillableHours(p)
	if !billable.IsPositive() {
		return RateResult{
			BillableHours: billable,
			HourlyRate:    decimal.Zero,
			FixedShare:    decimal.Zero,
			LaborShare:    decimal.Zero,
			ZeroCapacity:  true,
		}
	}

	fixedShare := fixedCost.Div(billable)
	laborShare := p.ExtraLaborCost.Div(billable)
	return RateResult{
		BillableHours: billable,
		HourlyRate:    fixedCost.Add(p.ExtraLaborCost).Div(billable),
		FixedShare:    fixedShare,
		LaborShare:    laborShare,
	}
}
