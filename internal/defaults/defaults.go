// Package defaults stores the office's saved cost and pricing figures.
//
// Only configuration lives here. Case data entered in the calculator is never persisted.
package defaults

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/honorarios/internal/costs"
	"github.com/Simplici0/honorarios/internal/pricing"
	"github.com/Simplici0/honorarios/internal/validation"
)

var hundred = decimal.NewFromInt(100)

// OfficeDefaults pre-fills the calculator form. Percent fields are whole percents (40 = 40%).
type OfficeDefaults struct {
	Costs             costs.ManualCosts
	AvailableHours    decimal.Decimal `validate:"gt=0"`
	EfficiencyPercent decimal.Decimal `validate:"gte=50,lte=100"`
	ExtraLaborCost    decimal.Decimal `validate:"gte=0"`
	EstimatedHours    int             `validate:"gte=1,lte=1000"`
	MarginPercent     decimal.Decimal `validate:"gte=0"`
	TaxPercent        decimal.Decimal `validate:"gte=0"`
}

// Builtin returns the figures the office started 2025 with.
func Builtin() OfficeDefaults {
	return OfficeDefaults{
		Costs:             costs.DefaultManualCosts(),
		AvailableHours:    decimal.NewFromInt(320),
		EfficiencyPercent: decimal.NewFromInt(75),
		ExtraLaborCost:    decimal.Zero,
		EstimatedHours:    10,
		MarginPercent:     decimal.NewFromInt(40),
		TaxPercent:        decimal.NewFromInt(10),
	}
}

// Validate checks field ranges and that margin plus tax stays below 100%.
func (d OfficeDefaults) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if d.MarginPercent.Add(d.TaxPercent).GreaterThanOrEqual(hundred) {
		return errors.Mark(errors.New("MarginPercent plus TaxPercent must be < 100"), validation.ErrInvalid)
	}
	return nil
}

// Capacity converts the saved figures into a pricing profile.
func (d OfficeDefaults) Capacity() pricing.CapacityProfile {
	return pricing.CapacityProfile{
		AvailableHours:     d.AvailableHours,
		EfficiencyFraction: d.EfficiencyPercent.Div(hundred),
		ExtraLaborCost:     d.ExtraLaborCost,
	}
}

// Store reads and writes the office_defaults singleton row.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store backed by db. The office_defaults migration must have run.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the saved defaults, or Builtin when nothing has been saved yet.
func (s *Store) Get(ctx context.Context) (OfficeDefaults, error) {
	var d OfficeDefaults
	err := s.db.QueryRowContext(ctx, `
		SELECT
			rent,
			software,
			accounting,
			payroll,
			partner_draw,
			miscellaneous,
			available_hours,
			efficiency_percent,
			extra_labor_cost,
			estimated_hours,
			margin_percent,
			tax_percent
		FROM office_defaults
		WHERE id = 1
	`).Scan(
		&d.Costs.Rent,
		&d.Costs.Software,
		&d.Costs.Accounting,
		&d.Costs.Payroll,
		&d.Costs.PartnerDraw,
		&d.Costs.Miscellaneous,
		&d.AvailableHours,
		&d.EfficiencyPercent,
		&d.ExtraLaborCost,
		&d.EstimatedHours,
		&d.MarginPercent,
		&d.TaxPercent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Builtin(), nil
	}
	if err != nil {
		return OfficeDefaults{}, errors.Wrap(err, "query office defaults")
	}
	return d, nil
}

// Update validates d and replaces the saved row.
func (s *Store) Update(ctx context.Context, d OfficeDefaults) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, upsertSQL, args(d)...); err != nil {
		return errors.Wrap(err, "upsert office defaults")
	}
	return nil
}

// Insert writes d only when no row exists yet and reports whether it did.
func Insert(ctx context.Context, tx *sql.Tx, d OfficeDefaults) (bool, error) {
	res, err := tx.ExecContext(ctx, insertSQL, args(d)...)
	if err != nil {
		return false, errors.Wrap(err, "insert office defaults")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "read inserted rows")
	}
	return n > 0, nil
}

const columns = `
	id,
	rent,
	software,
	accounting,
	payroll,
	partner_draw,
	miscellaneous,
	available_hours,
	efficiency_percent,
	extra_labor_cost,
	estimated_hours,
	margin_percent,
	tax_percent
`

const insertSQL = `
	INSERT INTO office_defaults (` + columns + `)
	VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

const upsertSQL = `
	INSERT INTO office_defaults (` + columns + `)
	VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		rent = excluded.rent,
		software = excluded.software,
		accounting = excluded.accounting,
		payroll = excluded.payroll,
		partner_draw = excluded.partner_draw,
		miscellaneous = excluded.miscellaneous,
		available_hours = excluded.available_hours,
		efficiency_percent = excluded.efficiency_percent,
		extra_labor_cost = excluded.extra_labor_cost,
		estimated_hours = excluded.estimated_hours,
		margin_percent = excluded.margin_percent,
		tax_percent = excluded.tax_percent,
		updated_at = CURRENT_TIMESTAMP
`

// args stores decimals as their exact string form.
func args(d OfficeDefaults) []any {
	return []any{
		d.Costs.Rent.String(),
		d.Costs.Software.String(),
		d.Costs.Accounting.String(),
		d.Costs.Payroll.String(),
		d.Costs.PartnerDraw.String(),
		d.Costs.Miscellaneous.String(),
		d.AvailableHours.String(),
		d.EfficiencyPercent.String(),
		d.ExtraLaborCost.String(),
		d.EstimatedHours,
		d.MarginPercent.String(),
		d.TaxPercent.String(),
	}
}
