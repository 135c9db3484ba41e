package indicators

import (
	"github.com/ternarybob/bravix/internal/models"
)

// Indicator names in canonical report order.
const (
	CurrentRatio          = "current_ratio"
	QuickRatio            = "quick_ratio"
	CashRatio             = "cash_ratio"
	DebtToEquity          = "debt_to_equity"
	DebtRatio             = "debt_ratio"
	EquityRatio           = "equity_ratio"
	DebtToEBITDA          = "debt_to_ebitda"
	InterestCoverage      = "interest_coverage"
	GrossProfitMargin     = "gross_profit_margin"
	OperatingProfitMargin = "operating_profit_margin"
	NetProfitMargin       = "net_profit_margin"
	ReturnOnAssets        = "return_on_assets"
	ReturnOnEquity        = "return_on_equity"
	ReturnOnInvestment    = "return_on_investment"
	AssetTurnover         = "asset_turnover"
	InventoryTurnover     = "inventory_turnover"
	ReceivablesTurnover   = "receivables_turnover"
	EarningsPerShare      = "earnings_per_share"
	PriceToEarnings       = "price_to_earnings"
	AltmanZScore          = "altman_z_score"
)

// Altman Z-score coefficients and the EBIT proxy applied to net profit
// when EBIT is not reported.
const (
	altmanA         = 1.2
	altmanB         = 1.4
	altmanC         = 3.3
	altmanD         = 0.6
	altmanE         = 1.0
	ebitProxyFactor = 1.15
)

// Definition binds an indicator name to its category and formula.
type Definition struct {
	Name     string
	Category models.Category
	Compute  func(models.FinancialFacts) *float64
}

// Definitions lists every indicator in canonical order.
var Definitions = []Definition{
	{CurrentRatio, models.CategoryLiquidity, computeCurrentRatio},
	{QuickRatio, models.CategoryLiquidity, computeQuickRatio},
	{CashRatio, models.CategoryLiquidity, computeCashRatio},
	{DebtToEquity, models.CategoryLeverage, computeDebtToEquity},
	{DebtRatio, models.CategoryLeverage, computeDebtRatio},
	{EquityRatio, models.CategoryLeverage, computeEquityRatio},
	{DebtToEBITDA, models.CategoryLeverage, computeDebtToEBITDA},
	{InterestCoverage, models.CategoryLeverage, computeInterestCoverage},
	{GrossProfitMargin, models.CategoryProfitability, computeGrossProfitMargin},
	{OperatingProfitMargin, models.CategoryProfitability, computeOperatingProfitMargin},
	{NetProfitMargin, models.CategoryProfitability, computeNetProfitMargin},
	{ReturnOnAssets, models.CategoryProfitability, computeReturnOnAssets},
	{ReturnOnEquity, models.CategoryProfitability, computeReturnOnEquity},
	{ReturnOnInvestment, models.CategoryProfitability, computeReturnOnInvestment},
	{AssetTurnover, models.CategoryEfficiency, computeAssetTurnover},
	{InventoryTurnover, models.CategoryEfficiency, computeInventoryTurnover},
	{ReceivablesTurnover, models.CategoryEfficiency, computeReceivablesTurnover},
	{EarningsPerShare, models.CategoryStability, computeEarningsPerShare},
	{PriceToEarnings, models.CategoryStability, computePriceToEarnings},
	{AltmanZScore, models.CategoryStability, computeAltmanZScore},
}

// divide is SafeDivide over optional operands: either operand absent
// makes the result indeterminate.
func divide(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return SafeDivide(*a, *b)
}

// orZero reads an optional additive figure.
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func computeCurrentRatio(f models.FinancialFacts) *float64 {
	return divide(f.CurrentAssets, f.CurrentLiabilities)
}

func computeQuickRatio(f models.FinancialFacts) *float64 {
	if f.CurrentAssets == nil {
		return nil
	}
	quick := *f.CurrentAssets - orZero(f.Inventory)
	return divide(&quick, f.CurrentLiabilities)
}

func computeCashRatio(f models.FinancialFacts) *float64 {
	if f.Cash == nil {
		return nil
	}
	liquid := *f.Cash + orZero(f.ShortTermInvestments)
	return divide(&liquid, f.CurrentLiabilities)
}

func computeDebtToEquity(f models.FinancialFacts) *float64 {
	return divide(f.Liabilities, f.Equity)
}

func computeDebtRatio(f models.FinancialFacts) *float64 {
	return divide(f.Liabilities, f.Assets)
}

func computeEquityRatio(f models.FinancialFacts) *float64 {
	return divide(f.Equity, f.Assets)
}

func computeDebtToEBITDA(f models.FinancialFacts) *float64 {
	return divide(f.Liabilities, f.EBITDA)
}

func computeInterestCoverage(f models.FinancialFacts) *float64 {
	return divide(f.EBIT, f.InterestExpense)
}

func computeGrossProfitMargin(f models.FinancialFacts) *float64 {
	return Percent(divide(f.GrossProfit, f.Revenue))
}

func computeOperatingProfitMargin(f models.FinancialFacts) *float64 {
	return Percent(divide(f.EBIT, f.Revenue))
}

func computeNetProfitMargin(f models.FinancialFacts) *float64 {
	return Percent(divide(f.Profit, f.Revenue))
}

func computeReturnOnAssets(f models.FinancialFacts) *float64 {
	return Percent(divide(f.Profit, f.Assets))
}

func computeReturnOnEquity(f models.FinancialFacts) *float64 {
	return Percent(divide(f.Profit, f.Equity))
}

func computeReturnOnInvestment(f models.FinancialFacts) *float64 {
	return Percent(divide(f.Profit, f.Investment))
}

func computeAssetTurnover(f models.FinancialFacts) *float64 {
	return divide(f.Revenue, f.Assets)
}

func computeInventoryTurnover(f models.FinancialFacts) *float64 {
	return divide(f.CostOfSales, f.Inventory)
}

func computeReceivablesTurnover(f models.FinancialFacts) *float64 {
	return divide(f.Revenue, f.Receivables)
}

func computeEarningsPerShare(f models.FinancialFacts) *float64 {
	return divide(f.Profit, f.SharesOutstanding)
}

func computePriceToEarnings(f models.FinancialFacts) *float64 {
	return divide(f.SharePrice, computeEarningsPerShare(f))
}

// computeAltmanZScore uses the simplified five-factor proxy. EBIT is taken
// from the facts when reported, otherwise estimated from net profit.
func computeAltmanZScore(f models.FinancialFacts) *float64 {
	if f.Assets == nil || f.Liabilities == nil {
		return nil
	}

	var ebit *float64
	switch {
	case f.EBIT != nil:
		ebit = f.EBIT
	case f.Profit != nil:
		ebit = models.Float64Ptr(*f.Profit * ebitProxyFactor)
	}

	netAssets := *f.Assets - *f.Liabilities
	a := SafeDivide(netAssets, *f.Assets)
	b := divide(f.Equity, f.Assets)
	c := divide(ebit, f.Assets)
	d := divide(f.Revenue, f.Assets)
	e := divide(f.Equity, f.Liabilities)
	if a == nil || b == nil || c == nil || d == nil || e == nil {
		return nil
	}

	z := altmanA*(*a) + altmanB*(*b) + altmanC*(*c) + altmanD*(*d) + altmanE*(*e)
	z = Round(z, PercentPlaces)
	return &z
}
