package indicators

import "github.com/ternarybob/bravix/internal/models"

// Threshold is the (good, caution) band of one indicator. Bounds are
// inclusive: for higher-is-better indicators a value equal to Good is good,
// for lower-is-better indicators a value equal to Caution is caution.
// Negative values of a lower-is-better indicator come from negative equity,
// earnings or EBITDA and are always poor.
type Threshold struct {
	Good          float64
	Caution       float64
	LowerIsBetter bool
}

// Thresholds is the band table keyed by indicator name. Percentages are
// compared in percent units.
var Thresholds = map[string]Threshold{
	CurrentRatio:          {Good: 2.0, Caution: 1.5},
	QuickRatio:            {Good: 1.0, Caution: 0.8},
	CashRatio:             {Good: 0.2, Caution: 0.1},
	DebtToEquity:          {Good: 0.5, Caution: 1.0, LowerIsBetter: true},
	DebtRatio:             {Good: 0.4, Caution: 0.6, LowerIsBetter: true},
	EquityRatio:           {Good: 0.4, Caution: 0.3},
	DebtToEBITDA:          {Good: 3.5, Caution: 4.2, LowerIsBetter: true},
	InterestCoverage:      {Good: 3.0, Caution: 1.5},
	GrossProfitMargin:     {Good: 40, Caution: 20},
	OperatingProfitMargin: {Good: 20, Caution: 10},
	NetProfitMargin:       {Good: 10, Caution: 5},
	ReturnOnAssets:        {Good: 8, Caution: 4},
	ReturnOnEquity:        {Good: 15, Caution: 8},
	ReturnOnInvestment:    {Good: 10, Caution: 5},
	AssetTurnover:         {Good: 1.0, Caution: 0.5},
	InventoryTurnover:     {Good: 5, Caution: 2},
	ReceivablesTurnover:   {Good: 7, Caution: 3},
	EarningsPerShare:      {Good: 1.0, Caution: 0.5},
	PriceToEarnings:       {Good: 20, Caution: 40, LowerIsBetter: true},
	AltmanZScore:          {Good: 3.0, Caution: 1.8},
}

// EvaluateStatus classifies a computed value against the band table.
// A nil value is insufficient_data; a name without a band is unknown.
func EvaluateStatus(name string, value *float64) models.Status {
	if !finite(value) {
		return models.StatusInsufficientData
	}

	t, ok := Thresholds[name]
	if !ok {
		return models.StatusUnknown
	}

	return t.Evaluate(*value)
}

// Evaluate applies the band to v.
func (t Threshold) Evaluate(v float64) models.Status {
	if t.LowerIsBetter {
		switch {
		case v < 0:
			return models.StatusPoor
		case v <= t.Good:
			return models.StatusGood
		case v <= t.Caution:
			return models.StatusCaution
		default:
			return models.StatusPoor
		}
	}

	switch {
	case v >= t.Good:
		return models.StatusGood
	case v >= t.Caution:
		return models.StatusCaution
	default:
		return models.StatusPoor
	}
}
