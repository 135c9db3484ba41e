package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/bravix/internal/models"
)

func TestFactsFromMap(t *testing.T) {
	facts := FactsFromMap(map[string]any{
		" Assets ":          "1,000",
		"total_liabilities": 400,
		"net_income":        "(25)",
		"revenue":           "abc",
		"dividends":         5,
	})

	require.NotNil(t, facts.Assets)
	assert.Equal(t, 1000.0, *facts.Assets)
	require.NotNil(t, facts.Liabilities)
	assert.Equal(t, 400.0, *facts.Liabilities)
	require.NotNil(t, facts.Profit)
	assert.Equal(t, -25.0, *facts.Profit)
	assert.Nil(t, facts.Revenue)
	assert.Equal(t, 3, facts.Count())
}

func TestNormalize(t *testing.T) {
	t.Run("derives equity and gross profit", func(t *testing.T) {
		out := Normalize(models.FinancialFacts{
			Assets:      ptr(100.556),
			Liabilities: ptr(60),
			Revenue:     ptr(1000),
			CostOfSales: ptr(600),
		})
		require.NotNil(t, out.Equity)
		assert.Equal(t, 40.56, *out.Equity)
		require.NotNil(t, out.GrossProfit)
		assert.Equal(t, 400.0, *out.GrossProfit)
	})

	t.Run("keeps supplied figures", func(t *testing.T) {
		out := Normalize(models.FinancialFacts{
			Assets:      ptr(100),
			Liabilities: ptr(60),
			Equity:      ptr(55),
		})
		assert.Equal(t, 55.0, *out.Equity)
	})

	t.Run("nothing to derive", func(t *testing.T) {
		out := Normalize(models.FinancialFacts{Assets: ptr(100)})
		assert.Nil(t, out.Equity)
		assert.Nil(t, out.GrossProfit)
	})
}
