package costs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1234.56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"R$ 2.071,76", "2071.76", true},
		{"R$ -50,00", "-50", true},
		{"-R$ 50,00", "-50", true},
		{"(50,00)", "-50", true},
		{"50,00-", "-50", true},
		{" 1 000,00 ", "1000", true},
		{"1.000.000", "1000000", true},
		{"-100", "-100", true},
		{"+20", "20", true},
		{"", "0", false},
		{"abc", "0", false},
		{"R$", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}
