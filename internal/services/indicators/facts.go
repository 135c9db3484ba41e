package indicators

import (
	"strings"

	"github.com/ternarybob/bravix/internal/models"
)

// FactsFromMap builds FinancialFacts from a loose key/value map. Keys are
// matched case-insensitively against the vocabulary, unknown keys are
// ignored and values that cannot be parsed are left absent.
func FactsFromMap(data map[string]any) models.FinancialFacts {
	var facts models.FinancialFacts
	for key, raw := range data {
		name := strings.ToLower(strings.TrimSpace(key))
		if alias, ok := fieldAliases[name]; ok {
			name = alias
		}
		v, ok := ParseNumber(raw)
		if !ok {
			continue
		}
		facts.Set(name, v)
	}
	return facts
}

// fieldAliases maps keys used by earlier clients to vocabulary names.
var fieldAliases = map[string]string{
	"total_assets":        models.FieldAssets,
	"total_liabilities":   models.FieldLiabilities,
	"net_profit":          models.FieldProfit,
	"net_income":          models.FieldProfit,
	"net_sales":           models.FieldRevenue,
	"stocks":              models.FieldInventory,
	"accounts_receivable": models.FieldReceivables,
	"operating_income":    models.FieldEBIT,
	"investment_cost":     models.FieldInvestment,
	"investment_costs":    models.FieldInvestment,
	"price_per_share":     models.FieldSharePrice,
	"shares":              models.FieldSharesOutstanding,
}

// Normalize returns a copy of facts with derivable figures filled in:
// equity from assets and liabilities, and gross profit from revenue and
// cost of sales. Supplied figures are never overwritten.
func Normalize(facts models.FinancialFacts) models.FinancialFacts {
	out := facts

	if out.Equity == nil && out.Assets != nil && out.Liabilities != nil {
		out.Equity = models.Float64Ptr(Round(*out.Assets-*out.Liabilities, PercentPlaces))
	}
	if out.GrossProfit == nil && out.Revenue != nil && out.CostOfSales != nil {
		out.GrossProfit = models.Float64Ptr(*out.Revenue - *out.CostOfSales)
	}

	return out
}
