package extraction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,250,000", 1250000, true},
		{"1.250.000", 1250000, true},
		{"1.250,75", 1250.75, true},
		{"1,250.75", 1250.75, true},
		{"12,5", 12.5, true},
		{"1.250", 1250, true},
		{"1,250", 1250, true},
		{"0.125", 0.125, true},
		{"12.34", 12.34, true},
		{"(300)", -300, true},
		{"300-", -300, true},
		{"-€ 1.000", -1000, true},
		{"€1 250 000", 1250000, true},
		{"1'250'000", 1250000, true},
		{"EUR 42", 42, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, decimal.NewFromFloat(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestLastAmount(t *testing.T) {
	got, ok := lastAmount("Total assets 2024: 1,250")
	require.True(t, ok)
	assert.Equal(t, float64(1250), got.InexactFloat64())

	got, ok = lastAmount("Net result (1.500)")
	require.True(t, ok)
	assert.Equal(t, float64(-1500), got.InexactFloat64())

	_, ok = lastAmount("Balance sheet")
	assert.False(t, ok)
}

func TestDetectUnitMultiplier(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"english millions", "Amounts in millions", 1e6},
		{"euro million", "All figures in € million", 1e6},
		{"parenthesised", "Balance sheet (millions)", 1e6},
		{"french", "Chiffres en millions d'euros", 1e6},
		{"euro thousand", "(in € thousand)", 1e3},
		{"dutch thousands", "Bedragen in duizenden euro", 1e3},
		{"german thousands", "Angaben in Tausend EUR", 1e3},
		{"apostrophe thousands", "Revenue €'000", 1e3},
		{"millions win", "in thousands, except totals in millions", 1e6},
		{"none", "Revenue 1,000", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectUnitMultiplier(tt.text))
		})
	}
}
