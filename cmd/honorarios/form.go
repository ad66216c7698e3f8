package main

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/honorarios/internal/costs"
	"github.com/Simplici0/honorarios/internal/defaults"
	"github.com/Simplici0/honorarios/internal/format"
	"github.com/Simplici0/honorarios/internal/pricing"
)

const (
	costSourceManual = "manual"
	costSourceUpload = "upload"
)

// quoteInput is one complete set of calculator inputs, as submitted.
type quoteInput struct {
	CostSource    string
	Manual        costs.ManualCosts
	UploadedTotal decimal.Decimal
	UploadedName  string
	Profile       pricing.CapacityProfile
	Case          pricing.CaseRequest
}

// fieldGetter returns the raw value submitted for a form field.
type fieldGetter func(field string) string

func parseQuoteValues(get fieldGetter) (quoteInput, error) {
	in := quoteInput{
		CostSource:   strings.TrimSpace(get("cost_source")),
		UploadedName: strings.TrimSpace(get("uploaded_name")),
	}
	if in.CostSource == "" {
		in.CostSource = costSourceManual
	}
	if in.CostSource != costSourceManual && in.CostSource != costSourceUpload {
		return in, errors.New("cost_source deve ser manual ou upload")
	}

	var err error
	money := []struct {
		field string
		dst   *decimal.Decimal
	}{
		{"rent", &in.Manual.Rent},
		{"software", &in.Manual.Software},
		{"accounting", &in.Manual.Accounting},
		{"payroll", &in.Manual.Payroll},
		{"partner_draw", &in.Manual.PartnerDraw},
		{"miscellaneous", &in.Manual.Miscellaneous},
		{"uploaded_total", &in.UploadedTotal},
		{"extra_labor_cost", &in.Profile.ExtraLaborCost},
		{"extra_variable_cost", &in.Case.ExtraVariableCost},
	}
	for _, m := range money {
		if *m.dst, err = parseNonNegativeDecimal(get(m.field), m.field); err != nil {
			return in, err
		}
	}

	if in.Profile.AvailableHours, err = parsePositiveDecimal(get("available_hours"), "available_hours"); err != nil {
		return in, err
	}
	efficiency, err := parsePercentBetween(get("efficiency_percent"), "efficiency_percent", 50, 100)
	if err != nil {
		return in, err
	}
	in.Profile.EfficiencyFraction = format.FractionFromPercent(efficiency)

	in.Case.ClientName = strings.TrimSpace(get("client_name"))
	in.Case.ServiceDescription = strings.TrimSpace(get("service_description"))
	if in.Case.EstimatedHours, err = parseIntBetween(get("estimated_hours"), "estimated_hours", 1, 1000); err != nil {
		return in, err
	}

	margin, err := parsePercentBetween(get("margin_percent"), "margin_percent", 0, 100)
	if err != nil {
		return in, err
	}
	tax, err := parsePercentBetween(get("tax_percent"), "tax_percent", 0, 100)
	if err != nil {
		return in, err
	}
	in.Case.MarginFraction = format.FractionFromPercent(margin)
	in.Case.TaxFraction = format.FractionFromPercent(tax)

	return in, nil
}

// officeDefaults keeps the parts of in that the office saves between sessions.
func (in quoteInput) officeDefaults() defaults.OfficeDefaults {
	return defaults.OfficeDefaults{
		Costs:             in.Manual,
		AvailableHours:    in.Profile.AvailableHours,
		EfficiencyPercent: format.PercentFromFraction(in.Profile.EfficiencyFraction),
		ExtraLaborCost:    in.Profile.ExtraLaborCost,
		EstimatedHours:    in.Case.EstimatedHours,
		MarginPercent:     format.PercentFromFraction(in.Case.MarginFraction),
		TaxPercent:        format.PercentFromFraction(in.Case.TaxFraction),
	}
}

// defaultsFormValues pre-fills the calculator and defaults forms.
func defaultsFormValues(d defaults.OfficeDefaults) url.Values {
	values := url.Values{}
	values.Set("cost_source", costSourceManual)
	values.Set("rent", d.Costs.Rent.String())
	values.Set("software", d.Costs.Software.String())
	values.Set("accounting", d.Costs.Accounting.String())
	values.Set("payroll", d.Costs.Payroll.String())
	values.Set("partner_draw", d.Costs.PartnerDraw.String())
	values.Set("miscellaneous", d.Costs.Miscellaneous.String())
	values.Set("available_hours", d.AvailableHours.String())
	values.Set("efficiency_percent", d.EfficiencyPercent.String())
	values.Set("extra_labor_cost", d.ExtraLaborCost.String())
	values.Set("estimated_hours", strconv.Itoa(d.EstimatedHours))
	values.Set("extra_variable_cost", "0")
	values.Set("margin_percent", d.MarginPercent.String())
	values.Set("tax_percent", d.TaxPercent.String())
	return values
}

// parseNonNegativeDecimal treats a blank value as zero.
func parseNonNegativeDecimal(raw, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	value, ok := costs.ParseAmount(raw)
	if !ok {
		return decimal.Zero, errors.Newf("%s deve ser numérico", field)
	}
	if value.IsNegative() {
		return decimal.Zero, errors.Newf("%s deve ser maior ou igual a 0", field)
	}
	return value, nil
}

func parsePositiveDecimal(raw, field string) (decimal.Decimal, error) {
	value, ok := costs.ParseAmount(raw)
	if !ok {
		return decimal.Zero, errors.Newf("%s deve ser numérico", field)
	}
	if !value.IsPositive() {
		return decimal.Zero, errors.Newf("%s deve ser maior que 0", field)
	}
	return value, nil
}

func parsePercentBetween(raw, field string, low, high int64) (decimal.Decimal, error) {
	value, ok := costs.ParseAmount(raw)
	if !ok {
		return decimal.Zero, errors.Newf("%s deve ser numérico", field)
	}
	if value.LessThan(decimal.NewFromInt(low)) || value.GreaterThan(decimal.NewFromInt(high)) {
		return decimal.Zero, errors.Newf("%s deve estar entre %d e %d", field, low, high)
	}
	return value, nil
}

func parseIntBetween(raw, field string, low, high int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Newf("%s deve ser um número inteiro", field)
	}
	if value < low || value > high {
		return 0, errors.Newf("%s deve estar entre %d e %d", field, low, high)
	}
	return value, nil
}
