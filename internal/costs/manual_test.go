package costs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/honorarios/internal/validation"
)

func TestManualCosts_TotalIsExactSum(t *testing.T) {
	m := ManualCosts{
		Rent:          decimal.RequireFromString("0.10"),
		Software:      decimal.RequireFromString("0.20"),
		Accounting:    decimal.RequireFromString("1000"),
		Payroll:       decimal.Zero,
		PartnerDraw:   decimal.RequireFromString("2500.35"),
		Miscellaneous: decimal.RequireFromString("0.05"),
	}

	assert.Equal(t, "3500.7", m.Total().String())
}

func TestDefaultManualCosts_Total(t *testing.T) {
	assert.True(t, DefaultManualCosts().Total().Equal(decimal.RequireFromString("46118.73")))
	require.NoError(t, DefaultManualCosts().Validate())
}

func TestManualCosts_RejectsNegativeField(t *testing.T) {
	m := DefaultManualCosts()
	m.Software = decimal.NewFromInt(-1)

	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrInvalid))
}
